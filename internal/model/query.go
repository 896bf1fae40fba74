package model

import (
	"time"
)

// Option types as stored in the options table
const (
	OptionTypeCall = "CE"
	OptionTypePut  = "PE"
)

// IndexQuery represents a query for index bars
type IndexQuery struct {
	Symbol    string    `json:"symbol" validate:"required"`
	StartDate time.Time `json:"start_date" validate:"required"`
	EndDate   time.Time `json:"end_date" validate:"required"`
}

// OptionQuery represents a query for 1-minute option bars
type OptionQuery struct {
	Symbol     string    `json:"symbol" validate:"required"`
	StartDate  time.Time `json:"start_date" validate:"required"`
	EndDate    time.Time `json:"end_date" validate:"required"`
	Strike     float64   `json:"strike" validate:"gt=0"`
	Expiry     time.Time `json:"expiry" validate:"required"`
	OptionType string    `json:"option_type" validate:"oneof=CE PE"`
}

// FuturesQuery represents a query for futures bars
type FuturesQuery struct {
	Symbol        string    `json:"symbol" validate:"required"`
	StartDate     time.Time `json:"start_date" validate:"required"`
	EndDate       time.Time `json:"end_date" validate:"required"`
	ContractMonth string    `json:"contract_month" validate:"required"`
}
