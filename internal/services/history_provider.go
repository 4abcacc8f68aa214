package services

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/workshoperp/demandcast/internal/database"
)

// ConsumptionQuerier defines the database operations needed to load
// consumption history.
type ConsumptionQuerier interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
}

// ConsumptionHistoryProvider aggregates raw stock consumption records into
// monthly totals keyed "YYYY-MM".
type ConsumptionHistoryProvider struct {
	db ConsumptionQuerier
}

// NewConsumptionHistoryProvider creates a provider backed by the Postgres
// pool.
func NewConsumptionHistoryProvider(db *database.PostgresDB) *ConsumptionHistoryProvider {
	var querier ConsumptionQuerier
	if db != nil {
		querier = db.Pool
	}
	return &ConsumptionHistoryProvider{db: querier}
}

// NewConsumptionHistoryProviderWithQuerier creates a provider with a
// custom querier (for tests).
func NewConsumptionHistoryProviderWithQuerier(db ConsumptionQuerier) *ConsumptionHistoryProvider {
	return &ConsumptionHistoryProvider{db: db}
}

// MonthlyConsumption returns the summed consumed quantity per calendar
// month for an item within [from, to]. Months without consumption are
// absent from the map; the series builder zero-fills them. Quantities are
// stored as numeric and summed in the database to avoid float drift.
func (p *ConsumptionHistoryProvider) MonthlyConsumption(ctx context.Context, itemCode string, from, to time.Time) (map[string]float64, error) {
	query := `
		SELECT to_char(date_trunc('month', sc.consumed_at), 'YYYY-MM') AS period,
		       SUM(sc.qty) AS total_qty
		FROM stock_consumption sc
		WHERE sc.item_code = $1
		  AND sc.consumed_at >= $2
		  AND sc.consumed_at < $3
		GROUP BY period
		ORDER BY period
	`

	// The upper bound is exclusive of the month after `to` so the full
	// final month is included.
	upper := truncateToMonth(to).AddDate(0, 1, 0)

	rows, err := p.db.Query(ctx, query, itemCode, truncateToMonth(from), upper)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	totals := make(map[string]float64)
	for rows.Next() {
		var period string
		var qty decimal.Decimal
		if err := rows.Scan(&period, &qty); err != nil {
			return nil, err
		}
		totals[period] = qty.InexactFloat64()
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}

	return totals, nil
}
