package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
)

// FileStore keeps each collection in one pretty-printed JSON array file under
// a data directory (users.json, events.json). Saves replace the whole
// document via a temp file rename.
type FileStore struct {
	dir    string
	logger *zap.Logger
	locks  map[Collection]*sync.Mutex
}

// Open creates the data directory if needed, seeds an empty document for any
// absent collection, and returns the store. An uncreatable or unwritable
// data directory is a startup-fatal error for the caller.
func Open(dir string, logger *zap.Logger, collections ...Collection) (*FileStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir %s: %w", dir, err)
	}
	s := &FileStore{
		dir:    dir,
		logger: logger,
		locks:  make(map[Collection]*sync.Mutex, len(collections)),
	}
	for _, c := range collections {
		s.locks[c] = &sync.Mutex{}
		path := s.path(c)
		if _, err := os.Stat(path); os.IsNotExist(err) {
			if err := os.WriteFile(path, []byte("[]"), 0o644); err != nil {
				return nil, fmt.Errorf("seed collection %s: %w", c, err)
			}
			logger.Info("seeded empty collection", zap.String("collection", string(c)))
		} else if err != nil {
			return nil, fmt.Errorf("stat collection %s: %w", c, err)
		}
	}
	return s, nil
}

func (s *FileStore) path(c Collection) string {
	return filepath.Join(s.dir, string(c)+".json")
}

func (s *FileStore) lock(c Collection) (*sync.Mutex, error) {
	mu, ok := s.locks[c]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCollection, c)
	}
	return mu, nil
}

// Load reads the full collection into out under the collection lock.
func (s *FileStore) Load(ctx context.Context, c Collection, out any) error {
	mu, err := s.lock(c)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	mu.Lock()
	defer mu.Unlock()
	return s.read(c, out)
}

// Update runs fn with exclusive access to the collection, so the whole
// load-validate-mutate-save cycle sees and produces a consistent document.
func (s *FileStore) Update(ctx context.Context, c Collection, fn func(tx Txn) error) error {
	mu, err := s.lock(c)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	mu.Lock()
	defer mu.Unlock()
	return fn(&fileTxn{store: s, collection: c})
}

// read decodes the collection file. A missing file or invalid document
// decodes to an empty slice: the store was seeded at startup, so anything
// else here is runtime corruption we log and absorb.
func (s *FileStore) read(c Collection, out any) error {
	data, err := os.ReadFile(s.path(c))
	if os.IsNotExist(err) {
		s.logger.Warn("collection file missing, serving empty", zap.String("collection", string(c)))
		return json.Unmarshal([]byte("[]"), out)
	}
	if err != nil {
		return fmt.Errorf("read collection %s: %w", c, err)
	}
	if len(data) == 0 {
		data = []byte("[]")
	}
	if err := json.Unmarshal(data, out); err != nil {
		s.logger.Warn("collection file corrupt, serving empty",
			zap.String("collection", string(c)), zap.Error(err))
		return json.Unmarshal([]byte("[]"), out)
	}
	return nil
}

// write replaces the collection document. The temp-file rename keeps a crash
// mid-write from leaving a truncated document behind.
func (s *FileStore) write(c Collection, records any) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("encode collection %s: %w", c, err)
	}
	path := s.path(c)
	tmp, err := os.CreateTemp(s.dir, string(c)+"-*.tmp")
	if err != nil {
		return fmt.Errorf("write collection %s: %w", c, err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write collection %s: %w", c, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write collection %s: %w", c, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace collection %s: %w", c, err)
	}
	return nil
}

type fileTxn struct {
	store      *FileStore
	collection Collection
}

func (t *fileTxn) Load(out any) error {
	return t.store.read(t.collection, out)
}

func (t *fileTxn) Save(records any) error {
	return t.store.write(t.collection, records)
}
