package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"

	"listings-pipeline/models"
)

// PostgresWriter mirrors processed rows into a listings table.
type PostgresWriter struct {
	db *sql.DB
}

// NewPostgresWriter opens a connection to PostgreSQL, runs schema migrations,
// and returns a ready-to-use PostgresWriter.
func NewPostgresWriter(ctx context.Context, dsn string) (*PostgresWriter, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: ping: %w", err)
	}

	pw := &PostgresWriter{db: db}
	if err := pw.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: migrate: %w", err)
	}
	return pw, nil
}

func (pw *PostgresWriter) migrate(ctx context.Context) error {
	_, err := pw.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS listings (
			download_date    TEXT    NOT NULL,
			row_index        INTEGER NOT NULL,
			neighborhood     TEXT    NOT NULL,
			price            TEXT    NOT NULL,
			bedrooms         TEXT    NOT NULL,
			bathrooms        TEXT    NOT NULL,
			area_sqm         TEXT    NOT NULL,
			loaded_at        TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			PRIMARY KEY (download_date, row_index)
		);

		CREATE INDEX IF NOT EXISTS idx_listings_neighborhood ON listings(neighborhood);
	`)
	return err
}

// WriteRecords replaces the rows of every download date present in records,
// so a rerun on the same artifact overwrites instead of appending.
func (pw *PostgresWriter) WriteRecords(ctx context.Context, records []models.Record) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := pw.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("postgres: begin: %w", err)
	}
	defer tx.Rollback()

	dates := make(map[string]struct{})
	for _, r := range records {
		if _, ok := dates[r.DownloadDate]; ok {
			continue
		}
		dates[r.DownloadDate] = struct{}{}
		if _, err := tx.ExecContext(ctx, "DELETE FROM listings WHERE download_date = $1", r.DownloadDate); err != nil {
			return fmt.Errorf("postgres: clear %s: %w", r.DownloadDate, err)
		}
	}

	const batchSize = 50
	for i := 0; i < len(records); i += batchSize {
		end := i + batchSize
		if end > len(records) {
			end = len(records)
		}
		if err := insertBatch(ctx, tx, i, records[i:end]); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("postgres: commit: %w", err)
	}
	return nil
}

func insertBatch(ctx context.Context, tx *sql.Tx, offset int, batch []models.Record) error {
	const cols = 7
	valueStrings := make([]string, 0, len(batch))
	valueArgs := make([]interface{}, 0, len(batch)*cols)

	for idx, r := range batch {
		base := idx * cols
		valueStrings = append(valueStrings,
			fmt.Sprintf("($%d,$%d,$%d,$%d,$%d,$%d,$%d)",
				base+1, base+2, base+3, base+4, base+5, base+6, base+7))
		valueArgs = append(valueArgs,
			r.DownloadDate, offset+idx, r.Neighborhood, r.Price, r.Bedrooms, r.Bathrooms, r.Area)
	}

	query := fmt.Sprintf(`
		INSERT INTO listings (download_date, row_index, neighborhood, price, bedrooms, bathrooms, area_sqm)
		VALUES %s
	`, strings.Join(valueStrings, ","))

	if _, err := tx.ExecContext(ctx, query, valueArgs...); err != nil {
		return fmt.Errorf("postgres: insert batch: %w", err)
	}
	return nil
}

func (pw *PostgresWriter) Close() error {
	return pw.db.Close()
}
