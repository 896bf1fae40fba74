package model

import (
	"time"
)

// IndexBar represents a price bar of an equity index
type IndexBar struct {
	Timestamp time.Time `json:"timestamp" db:"ts"`
	Open      float64   `json:"open" db:"open"`
	High      float64   `json:"high" db:"high"`
	Low       float64   `json:"low" db:"low"`
	Close     float64   `json:"close" db:"close"`
}

// OptionBar represents a 1-minute aggregated option price bar scoped to a
// (symbol, strike, expiry, option type) contract
type OptionBar struct {
	Timestamp  time.Time `json:"timestamp" db:"bucket"`
	OptionType string    `json:"option_type" db:"option_type"`
	Strike     float64   `json:"strike" db:"strike"`
	Expiry     time.Time `json:"expiry" db:"expiry"`
	Open       float64   `json:"open" db:"open"`
	High       float64   `json:"high" db:"high"`
	Low        float64   `json:"low" db:"low"`
	Close      float64   `json:"close" db:"close"`
	Volume     float64   `json:"volume" db:"volume"`
}

// FutureBar represents a price bar of a futures contract scoped to a
// (symbol, contract month) pair
type FutureBar struct {
	Timestamp time.Time `json:"timestamp" db:"ts"`
	Open      float64   `json:"open" db:"open"`
	High      float64   `json:"high" db:"high"`
	Low       float64   `json:"low" db:"low"`
	Close     float64   `json:"close" db:"close"`
	Volume    float64   `json:"volume" db:"volume"`
}
