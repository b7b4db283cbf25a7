package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"github.com/kardolus/jssdk/internal"
	"os"
	"path/filepath"
	"time"
)

var ErrNotFound = errors.New("cache: entry not found")

//go:generate mockgen -destination=../ticket/storemocks_test.go -package=ticket_test github.com/kardolus/jssdk/cache Store
type Store interface {
	Has(key string) (bool, error)
	// Get returns ErrNotFound when the key is absent or expired.
	Get(key string) (string, error)
	// Set stores nothing when ttl is not positive, and drops any previous value.
	Set(key, value string, ttl time.Duration) error
	Delete(key string) error
}

func NewFileStore(baseDir string, timer internal.Timer) *FileStore {
	return &FileStore{
		baseDir: baseDir,
		timer:   timer,
	}
}

// Ensure FileStore implements the Store interface
var _ Store = &FileStore{}

// FileStore keeps one JSON entry per key. Every process pointed at the same
// directory sees the same values.
type FileStore struct {
	baseDir string
	timer   internal.Timer
}

func (f *FileStore) Has(key string) (bool, error) {
	_, err := f.Get(key)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (f *FileStore) Get(key string) (string, error) {
	b, err := os.ReadFile(f.pathForKey(key))
	if errors.Is(err, os.ErrNotExist) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}

	var entry Entry
	if err := json.Unmarshal(b, &entry); err != nil {
		return "", fmt.Errorf("cache: corrupt entry for %q: %w", key, err)
	}

	if entry.Expired(f.timer.Now()) {
		// expired entries are removed lazily
		_ = f.Delete(key)
		return "", ErrNotFound
	}

	return entry.Value, nil
}

func (f *FileStore) Set(key, value string, ttl time.Duration) error {
	if ttl <= 0 {
		return f.Delete(key)
	}

	now := f.timer.Now()
	raw, err := json.Marshal(Entry{
		Key:       key,
		Value:     value,
		ExpiresAt: now.Add(ttl),
		UpdatedAt: now,
	})
	if err != nil {
		return err
	}

	return f.write(f.pathForKey(key), raw)
}

func (f *FileStore) Delete(key string) error {
	err := os.Remove(f.pathForKey(key))
	if err != nil && errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

func (f *FileStore) write(dst string, value []byte) error {
	if err := f.ensureBaseDir(); err != nil {
		return err
	}

	// Write to a temp file in the same directory so rename is atomic.
	tmp, err := os.CreateTemp(f.baseDir, fmt.Sprintf(".%s.*.tmp", filepath.Base(dst)))
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}()

	if _, err := tmp.Write(value); err != nil {
		return err
	}
	if err := tmp.Sync(); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	// Atomic replace on POSIX; on Windows, Rename may fail if dst exists.
	if err := os.Rename(tmpName, dst); err != nil {
		if errors.Is(err, os.ErrExist) || errors.Is(err, os.ErrPermission) {
			_ = os.Remove(dst)
			return os.Rename(tmpName, dst)
		}
		return err
	}

	return nil
}

func (f *FileStore) ensureBaseDir() error {
	// 0700: tickets are credentials
	return os.MkdirAll(f.baseDir, 0o700)
}

// Keys carry dots and arbitrary app ids, so the file name is their digest.
func (f *FileStore) pathForKey(key string) string {
	return filepath.Join(f.baseDir, hash(key)+".json")
}

func hash(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])
}
