// Package credential holds the session credential and the stores that persist it.
package credential

import (
	"errors"
	"fmt"
	"strings"

	"tasksession/internal/config"
)

// KindBearer is the only token kind the task server issues.
const KindBearer = "bearer"

// Key is the fixed slot under which key/value backends keep the token.
const Key = "access_token"

// ErrAbsent is returned by Store.Get when no credential is stored.
var ErrAbsent = errors.New("no credential stored")

// ErrUnknownStore is returned by Open for an unrecognized credential_store.
var ErrUnknownStore = errors.New("unknown credential store")

// Credential is an opaque bearer token.
type Credential struct {
	Value string
	Kind  string
}

// New returns a bearer Credential for token.
func New(token string) Credential {
	return Credential{Value: token, Kind: KindBearer}
}

// NormalizeKind lower-cases a token_type, defaulting to bearer.
func NormalizeKind(kind string) string {
	kind = strings.ToLower(strings.TrimSpace(kind))
	if kind == "" {
		return KindBearer
	}
	return kind
}

// Store is the single source of truth for whether a usable session exists.
// Implementations persist the token verbatim and never validate its shape.
type Store interface {
	// Set persists token, overwriting any existing one.
	Set(token string) error

	// Get returns the current credential or ErrAbsent.
	Get() (Credential, error)

	// Clear removes any stored token. Clearing an empty store is not an error.
	Clear() error

	// IsAuthenticated reports whether Get would return a credential.
	IsAuthenticated() bool
}

// Backend names accepted by Open.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

// Open returns the store selected by cfg.CredentialStore.
func Open(cfg *config.Config) (Store, error) {
	switch cfg.CredentialStore {
	case "", BackendFile:
		return NewFileStore(cfg.CredentialPath()), nil
	case BackendSQLite:
		return OpenSQLiteStore(cfg.CredentialDBPath())
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownStore, cfg.CredentialStore)
	}
}

// present implements IsAuthenticated on top of Get.
func present(s Store) bool {
	_, err := s.Get()
	return err == nil
}
