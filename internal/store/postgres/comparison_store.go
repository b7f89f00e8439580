package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/marketlens/marketlens/internal/domain"
)

// ComparisonStore implements domain.ComparisonStore using PostgreSQL. Member
// markets and per-venue deltas are stored as JSONB; the scalar columns exist
// for indexing and ad hoc queries.
type ComparisonStore struct {
	pool *pgxpool.Pool
}

var _ domain.ComparisonStore = (*ComparisonStore)(nil)

// NewComparisonStore creates a ComparisonStore backed by the given pool.
func NewComparisonStore(pool *pgxpool.Pool) *ComparisonStore {
	return &ComparisonStore{pool: pool}
}

const insertComparisonSQL = `
	INSERT INTO comparisons (
		cycle_id, question, category, normalized_title,
		best_venue, best_outcome_name, best_price, best_odds,
		price_spread, arbitrage, arbitrage_percent, multi_outcome,
		markets, price_deltas, last_updated
	) VALUES (
		$1, $2, $3, $4,
		$5, $6, $7, $8,
		$9, $10, $11, $12,
		$13, $14, $15
	)`

// InsertBatch writes one cycle's comparisons in a single pgx batch.
func (s *ComparisonStore) InsertBatch(ctx context.Context, cycleID string, comps []domain.Comparison) error {
	if len(comps) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for i := range comps {
		c := &comps[i]

		markets, err := json.Marshal(c.Markets)
		if err != nil {
			return fmt.Errorf("postgres: marshal markets for %q: %w", c.Question, err)
		}
		deltas, err := json.Marshal(c.PriceDeltas)
		if err != nil {
			return fmt.Errorf("postgres: marshal deltas for %q: %w", c.Question, err)
		}

		batch.Queue(insertComparisonSQL,
			cycleID, c.Question, string(c.Category), c.NormalizedTitle,
			string(c.BestVenue), c.BestOutcomeName, c.BestPrice, c.BestOdds,
			c.PriceSpread, c.Arbitrage, c.ArbitragePercent, c.MultiOutcome,
			markets, deltas, c.LastUpdated,
		)
	}

	results := s.pool.SendBatch(ctx, batch)
	defer results.Close()

	for range comps {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("postgres: insert comparisons batch: %w", err)
		}
	}
	return nil
}

// Latest returns the most recent comparisons across all categories.
func (s *ComparisonStore) Latest(ctx context.Context, limit int) ([]domain.Comparison, error) {
	const query = `
		SELECT question, category, normalized_title,
		       best_venue, best_outcome_name, best_price, best_odds,
		       price_spread, arbitrage, arbitrage_percent, multi_outcome,
		       markets, price_deltas, last_updated
		FROM comparisons
		ORDER BY created_at DESC
		LIMIT $1`

	rows, err := s.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("postgres: query latest comparisons: %w", err)
	}
	defer rows.Close()

	return scanComparisons(rows)
}

// LatestByCategory returns the most recent comparisons for one category.
func (s *ComparisonStore) LatestByCategory(ctx context.Context, category domain.MarketCategory, limit int) ([]domain.Comparison, error) {
	const query = `
		SELECT question, category, normalized_title,
		       best_venue, best_outcome_name, best_price, best_odds,
		       price_spread, arbitrage, arbitrage_percent, multi_outcome,
		       markets, price_deltas, last_updated
		FROM comparisons
		WHERE category = $1
		ORDER BY created_at DESC
		LIMIT $2`

	rows, err := s.pool.Query(ctx, query, string(category), limit)
	if err != nil {
		return nil, fmt.Errorf("postgres: query comparisons by category: %w", err)
	}
	defer rows.Close()

	return scanComparisons(rows)
}

func scanComparisons(rows pgx.Rows) ([]domain.Comparison, error) {
	var comps []domain.Comparison
	for rows.Next() {
		var (
			c          domain.Comparison
			category   string
			bestVenue  string
			marketsRaw []byte
			deltasRaw  []byte
		)
		err := rows.Scan(
			&c.Question, &category, &c.NormalizedTitle,
			&bestVenue, &c.BestOutcomeName, &c.BestPrice, &c.BestOdds,
			&c.PriceSpread, &c.Arbitrage, &c.ArbitragePercent, &c.MultiOutcome,
			&marketsRaw, &deltasRaw, &c.LastUpdated,
		)
		if err != nil {
			return nil, fmt.Errorf("postgres: scan comparison: %w", err)
		}
		c.Category = domain.MarketCategory(category)
		c.BestVenue = domain.Venue(bestVenue)
		if err := json.Unmarshal(marketsRaw, &c.Markets); err != nil {
			return nil, fmt.Errorf("postgres: decode markets for %q: %w", c.Question, err)
		}
		if err := json.Unmarshal(deltasRaw, &c.PriceDeltas); err != nil {
			return nil, fmt.Errorf("postgres: decode deltas for %q: %w", c.Question, err)
		}
		comps = append(comps, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: iterate comparisons: %w", err)
	}
	return comps, nil
}
