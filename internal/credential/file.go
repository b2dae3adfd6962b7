package credential

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/oauth2"
)

// FileStore keeps the credential in a JSON file in oauth2.Token format.
// The file is written with mode 0600 inside a 0700 directory.
type FileStore struct {
	mu   sync.Mutex
	path string
}

// NewFileStore returns a FileStore backed by path. The file is created on Set.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the backing file path.
func (f *FileStore) Path() string { return f.path }

func (f *FileStore) Set(token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(f.path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(&oauth2.Token{
		AccessToken: token,
		TokenType:   KindBearer,
	}, "", "  ")
	if err != nil {
		return err
	}

	// Readers never see a partially written token.
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("failed to save credential: %w", err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		return fmt.Errorf("failed to save credential: %w", err)
	}
	return nil
}

func (f *FileStore) Get() (Credential, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return Credential{}, ErrAbsent
	}
	if err != nil {
		return Credential{}, fmt.Errorf("failed to read credential: %w", err)
	}

	var token oauth2.Token
	if err := json.Unmarshal(data, &token); err != nil {
		return Credential{}, fmt.Errorf("invalid credential file %s: %w", f.path, err)
	}
	return Credential{Value: token.AccessToken, Kind: NormalizeKind(token.TokenType)}, nil
}

func (f *FileStore) Clear() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	err := os.Remove(f.path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove credential: %w", err)
	}
	return nil
}

func (f *FileStore) IsAuthenticated() bool { return present(f) }
