package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/akave-ai/protokoll/internal/model"
)

// Postgres persists records in the records table. Positions come from a
// zero-based identity column, so they survive restarts unlike Memory.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres returns a Postgres store using the given pool.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

// Append inserts rec and returns its id.
func (p *Postgres) Append(ctx context.Context, rec model.Record) (int64, error) {
	data, err := json.Marshal(rec.Data)
	if err != nil {
		return 0, fmt.Errorf("encode data: %w", err)
	}
	query := `
		INSERT INTO records (level, ts, message, data)
		VALUES ($1, $2, $3, $4)
		RETURNING id`
	var id int64
	if err := p.pool.QueryRow(ctx, query, rec.Level, rec.Timestamp, rec.Message, data).Scan(&id); err != nil {
		return 0, fmt.Errorf("insert record: %w", err)
	}
	return id, nil
}

// List returns all records ordered by id.
func (p *Postgres) List(ctx context.Context) ([]model.Record, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT level, ts, message, data
		FROM records
		ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := []model.Record{}
	for rows.Next() {
		var (
			rec  model.Record
			data []byte
		)
		if err := rows.Scan(&rec.Level, &rec.Timestamp, &rec.Message, &data); err != nil {
			return nil, err
		}
		if len(data) > 0 {
			if err := json.Unmarshal(data, &rec.Data); err != nil {
				return nil, fmt.Errorf("decode data: %w", err)
			}
		}
		list = append(list, rec)
	}
	return list, rows.Err()
}
