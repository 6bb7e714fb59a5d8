package lead

import (
	"context"
	"log"
	"strings"
)

// Store persists the whole ledger as one serialized list. Load returns the
// full list; Save overwrites it. Backends only move bytes; triage rules live
// in the Ledger.
type Store interface {
	Load(ctx context.Context) ([]Lead, error)
	Save(ctx context.Context, leads []Lead) error
	Close() error
}

// Open picks the backend: Postgres when a DSN is configured, the local JSON
// file otherwise. A failing Postgres connection falls back to the file so a
// missing database never takes lead capture down.
func Open(path, dsn string) Store {
	if strings.TrimSpace(dsn) != "" {
		st, err := OpenPostgres(dsn)
		if err == nil {
			return st
		}
		log.Printf("lead: postgres unavailable, using file store: %v", err)
	}
	return OpenFile(path)
}
