package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/marketlens/marketlens/internal/domain"
)

// PriceHistoryStore implements domain.PriceHistoryStore using PostgreSQL.
type PriceHistoryStore struct {
	pool *pgxpool.Pool
}

var _ domain.PriceHistoryStore = (*PriceHistoryStore)(nil)

// NewPriceHistoryStore creates a PriceHistoryStore backed by the given pool.
func NewPriceHistoryStore(pool *pgxpool.Pool) *PriceHistoryStore {
	return &PriceHistoryStore{pool: pool}
}

// AppendBatch writes price observations in a single pgx batch.
func (s *PriceHistoryStore) AppendBatch(ctx context.Context, entries []domain.PriceHistoryEntry) error {
	if len(entries) == 0 {
		return nil
	}

	const query = `
		INSERT INTO price_history (venue, market_id, outcome_name, price, volume, observed_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	batch := &pgx.Batch{}
	for i := range entries {
		e := &entries[i]
		batch.Queue(query, string(e.Venue), e.MarketID, e.OutcomeName, e.Price, e.Volume, e.Timestamp)
	}

	results := s.pool.SendBatch(ctx, batch)
	defer results.Close()

	for range entries {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("postgres: insert price history batch: %w", err)
		}
	}
	return nil
}

// Recent returns the newest observations for one market, newest first.
func (s *PriceHistoryStore) Recent(ctx context.Context, venue domain.Venue, marketID string, limit int) ([]domain.PriceHistoryEntry, error) {
	const query = `
		SELECT venue, market_id, outcome_name, price, volume, observed_at
		FROM price_history
		WHERE venue = $1 AND market_id = $2
		ORDER BY observed_at DESC
		LIMIT $3`

	rows, err := s.pool.Query(ctx, query, string(venue), marketID, limit)
	if err != nil {
		return nil, fmt.Errorf("postgres: query price history: %w", err)
	}
	defer rows.Close()

	var entries []domain.PriceHistoryEntry
	for rows.Next() {
		var (
			e domain.PriceHistoryEntry
			v string
		)
		if err := rows.Scan(&v, &e.MarketID, &e.OutcomeName, &e.Price, &e.Volume, &e.Timestamp); err != nil {
			return nil, fmt.Errorf("postgres: scan price history: %w", err)
		}
		e.Venue = domain.Venue(v)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: iterate price history: %w", err)
	}
	return entries, nil
}
