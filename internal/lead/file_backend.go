package lead

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// FileStore keeps the ledger in one JSON file. Writes go through a flock
// sibling lock and a temp-file rename so concurrent processes never observe
// a partial ledger.
type FileStore struct {
	path string
	lock *flock.Flock
}

func OpenFile(path string) *FileStore {
	return &FileStore{
		path: path,
		lock: flock.New(path + ".lock"),
	}
}

func (fs *FileStore) Load(_ context.Context) ([]Lead, error) {
	raw, err := os.ReadFile(fs.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("lead: read ledger: %w", err)
	}
	var leads []Lead
	if err := json.Unmarshal(raw, &leads); err != nil {
		return nil, fmt.Errorf("lead: decode ledger: %w", err)
	}
	return leads, nil
}

func (fs *FileStore) Save(_ context.Context, leads []Lead) error {
	raw, err := json.MarshalIndent(leads, "", "  ")
	if err != nil {
		return fmt.Errorf("lead: encode ledger: %w", err)
	}
	if err := fs.lock.Lock(); err != nil {
		return fmt.Errorf("lead: lock ledger: %w", err)
	}
	defer fs.lock.Unlock()
	return atomicWrite(fs.path, raw)
}

func (fs *FileStore) Close() error { return nil }

// atomicWrite lands data via a temp file in the target directory plus a
// rename, which is atomic on the same filesystem.
func atomicWrite(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("lead: create ledger dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".leads-*")
	if err != nil {
		return fmt.Errorf("lead: create temp ledger: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		if tmp != nil {
			tmp.Close()
			os.Remove(tmpPath)
		}
	}()
	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("lead: write temp ledger: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("lead: sync temp ledger: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("lead: close temp ledger: %w", err)
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		return fmt.Errorf("lead: chmod ledger: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("lead: replace ledger: %w", err)
	}
	tmp = nil
	return nil
}
