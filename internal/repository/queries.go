package repository

import (
	"fmt"
	"strings"
	"time"

	"github.com/yourorg/market-data-service/internal/model"
	"github.com/yourorg/market-data-service/internal/utils"

	"github.com/lib/pq"
)

// QueryCatalog renders one query per retrieval operation. Values are always
// bound through $n placeholders; only the table name, which derives from the
// validated symbol, is substituted into the text, quoted as an identifier.
// Date parameters are normalized to YYYY-MM-DD text and the end date is
// exclusive-adjusted by one calendar day so a same-day range covers that
// day's full session.
type QueryCatalog struct{}

// NewQueryCatalog creates a query catalog
func NewQueryCatalog() *QueryCatalog {
	return &QueryCatalog{}
}

func indexTable(symbol string) string {
	return pq.QuoteIdentifier(strings.ToLower(symbol) + "_index")
}

func optionsTable(root string) string {
	return pq.QuoteIdentifier(strings.ToLower(root) + "_options_ohlcv")
}

func futuresTable(symbol string) string {
	return pq.QuoteIdentifier(strings.ToLower(symbol) + "_futures")
}

// dateRange renders the half-open [start, end+1d) bounds as date text
func dateRange(start, end time.Time) (string, string) {
	return utils.FormatDate(start), utils.FormatDate(utils.NextDay(end))
}

// TradingDays returns the query for distinct session dates of an index table
func (c *QueryCatalog) TradingDays(indexSymbol string) (string, []interface{}) {
	query := fmt.Sprintf(`
		SELECT DISTINCT date_trunc('day', datetime) AS day
		FROM %s
		ORDER BY day ASC
	`, indexTable(indexSymbol))
	return query, nil
}

// ExpiryDates returns the query for distinct option expiry dates
func (c *QueryCatalog) ExpiryDates(optionRoot string) (string, []interface{}) {
	query := fmt.Sprintf(`
		SELECT DISTINCT expiry
		FROM %s
		ORDER BY expiry ASC
	`, optionsTable(optionRoot))
	return query, nil
}

// IndexBars returns the query for index bars over a date range
func (c *QueryCatalog) IndexBars(q model.IndexQuery) (string, []interface{}) {
	start, end := dateRange(q.StartDate, q.EndDate)
	query := fmt.Sprintf(`
		SELECT datetime AS ts, open, high, low, close
		FROM %s
		WHERE datetime >= $1 AND datetime < $2
		ORDER BY datetime ASC
	`, indexTable(q.Symbol))
	return query, []interface{}{start, end}
}

// OptionBars returns the query that down-samples raw option prints into
// 1-minute bars with first/max/min/last/sum aggregates, scoped to one
// (strike, expiry, option type) contract
func (c *QueryCatalog) OptionBars(q model.OptionQuery) (string, []interface{}) {
	start, end := dateRange(q.StartDate, q.EndDate)
	query := fmt.Sprintf(`
		SELECT
			time_bucket('1 minute', datetime) AS bucket,
			first(open, datetime) AS open,
			max(high) AS high,
			min(low) AS low,
			last(close, datetime) AS close,
			sum(volume) AS volume
		FROM %s
		WHERE datetime >= $1 AND datetime < $2
			AND strike = $3
			AND expiry = $4
			AND option_type = $5
		GROUP BY bucket
		ORDER BY bucket ASC
	`, optionsTable(q.Symbol))
	return query, []interface{}{start, end, q.Strike, utils.FormatDate(q.Expiry), q.OptionType}
}

// ContractMonths returns the query for distinct futures contract months
func (c *QueryCatalog) ContractMonths(symbol string) (string, []interface{}) {
	query := fmt.Sprintf(`
		SELECT DISTINCT contract_month
		FROM %s
		ORDER BY contract_month ASC
	`, futuresTable(symbol))
	return query, nil
}

// FutureBars returns the query for futures bars scoped to one contract month
func (c *QueryCatalog) FutureBars(q model.FuturesQuery) (string, []interface{}) {
	start, end := dateRange(q.StartDate, q.EndDate)
	query := fmt.Sprintf(`
		SELECT datetime AS ts, open, high, low, close, volume
		FROM %s
		WHERE datetime >= $1 AND datetime < $2 AND contract_month = $3
		ORDER BY datetime ASC
	`, futuresTable(q.Symbol))
	return query, []interface{}{start, end, q.ContractMonth}
}
