package lead

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// ledgerKey is the single row the whole ledger lives under. The ledger is
// one serialized list; the database gives durability, not row-level access.
const ledgerKey = "leads"

// PostgresStore keeps the serialized ledger in one jsonb row.
type PostgresStore struct {
	db *sql.DB

	schemaOnce sync.Once
	schemaErr  error
}

func OpenPostgres(dsn string) (*PostgresStore, error) {
	db, err := sql.Open("pgx", strings.TrimSpace(dsn))
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &PostgresStore{db: db}, nil
}

func (ps *PostgresStore) ensureSchema(ctx context.Context) error {
	ps.schemaOnce.Do(func() {
		_, ps.schemaErr = ps.db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS lead_ledger (
  key TEXT PRIMARY KEY,
  payload JSONB NOT NULL,
  updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
);
`)
	})
	return ps.schemaErr
}

func (ps *PostgresStore) Load(ctx context.Context) ([]Lead, error) {
	if err := ps.ensureSchema(ctx); err != nil {
		return nil, fmt.Errorf("lead: ensure schema: %w", err)
	}
	var raw []byte
	err := ps.db.QueryRowContext(ctx,
		`SELECT payload FROM lead_ledger WHERE key = $1`, ledgerKey).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("lead: load ledger: %w", err)
	}
	var leads []Lead
	if err := json.Unmarshal(raw, &leads); err != nil {
		return nil, fmt.Errorf("lead: decode ledger: %w", err)
	}
	return leads, nil
}

func (ps *PostgresStore) Save(ctx context.Context, leads []Lead) error {
	if err := ps.ensureSchema(ctx); err != nil {
		return fmt.Errorf("lead: ensure schema: %w", err)
	}
	raw, err := json.Marshal(leads)
	if err != nil {
		return fmt.Errorf("lead: encode ledger: %w", err)
	}
	_, err = ps.db.ExecContext(ctx, `
INSERT INTO lead_ledger (key, payload, updated_at)
VALUES ($1, $2, NOW())
ON CONFLICT (key) DO UPDATE SET payload = EXCLUDED.payload, updated_at = NOW()
`, ledgerKey, raw)
	if err != nil {
		return fmt.Errorf("lead: save ledger: %w", err)
	}
	return nil
}

func (ps *PostgresStore) Close() error { return ps.db.Close() }
