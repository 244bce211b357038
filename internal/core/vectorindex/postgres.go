package vectorindex

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/pgvector/pgvector-go"
	"go.uber.org/zap"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/docuchat-ai/docuchat/internal/core"
	"github.com/docuchat-ai/docuchat/internal/models"
)

var _ core.VectorIndex = (*PostgresIndex)(nil)

// PostgresIndex stores vector records in Postgres with the pgvector
// extension. The (namespace, id) primary key makes the upsert
// last-write-wins per record id within a namespace.
type PostgresIndex struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewPostgresIndex(ctx context.Context, databaseURL string, dim int, logger *zap.Logger) (*PostgresIndex, error) {
	if databaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is empty")
	}
	if dim <= 0 {
		return nil, fmt.Errorf("embedding dimension must be positive, got %d", dim)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	// Pool settings for an API service; adjust as needed.
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)
	db.SetConnMaxIdleTime(10 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	if err := EnsureBootstrapped(ctx, db, dim); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("bootstrap: %w", err)
	}

	logger.Info("postgres vector index ready", zap.Int("dim", dim))
	return &PostgresIndex{db: db, logger: logger}, nil
}

func (p *PostgresIndex) Close() error {
	if p.db != nil {
		return p.db.Close()
	}
	return nil
}

// Upsert writes the batch in a single transaction so a failure leaves
// no partial namespace state behind.
func (p *PostgresIndex) Upsert(ctx context.Context, namespace string, records []models.VectorRecord) error {
	if len(records) == 0 {
		return nil
	}
	tx, err := p.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}

	const q = `
		INSERT INTO vector_records (namespace, id, embedding, meta_text, page_number, updated_at)
		VALUES ($1, $2, $3, $4, $5, now())
		ON CONFLICT (namespace, id) DO UPDATE
		SET embedding = EXCLUDED.embedding,
		    meta_text = EXCLUDED.meta_text,
		    page_number = EXCLUDED.page_number,
		    updated_at = now()
	`
	stmt, err := tx.PrepareContext(ctx, q)
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	defer stmt.Close()

	for i := range records {
		rec := &records[i]
		if _, err := stmt.ExecContext(ctx,
			namespace, rec.ID, pgvector.NewVector(rec.Values), rec.Metadata.Text, rec.Metadata.PageNumber,
		); err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

// Query returns the topK closest records in the namespace by cosine
// distance, reported as cosine similarity (higher is closer).
func (p *PostgresIndex) Query(ctx context.Context, namespace string, vector []float32, topK int) ([]models.SearchMatch, error) {
	const q = `
		SELECT id, 1 - (embedding <=> $2) AS similarity, meta_text, page_number
		FROM vector_records
		WHERE namespace = $1
		ORDER BY embedding <=> $2
		LIMIT $3
	`
	rows, err := p.db.QueryContext(ctx, q, namespace, pgvector.NewVector(vector), topK)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.SearchMatch
	for rows.Next() {
		var (
			m   models.SearchMatch
			sim float64
		)
		if err := rows.Scan(&m.ID, &sim, &m.Metadata.Text, &m.Metadata.PageNumber); err != nil {
			return nil, err
		}
		m.Score = float32(sim)
		out = append(out, m)
	}
	return out, rows.Err()
}
