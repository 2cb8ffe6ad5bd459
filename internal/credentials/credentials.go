// Package credentials keeps storage secrets in the OS credential store
// (macOS Keychain, Windows Credential Manager, Linux Secret Service) so they
// never have to live in the config file.
package credentials

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/zalando/go-keyring"
)

const (
	// Service name for the OS credential store
	credentialService = "todo-mcp"

	databaseURLKey = "database_url"
	s3SecretKey    = "s3_secret_access_key"
)

// ErrNotStored is returned when a secret has never been stored.
var ErrNotStored = errors.New("credential not stored")

// Manager reads and writes the storage secrets.
type Manager struct {
	service string
}

// NewManager returns a manager for the todo-mcp keyring service.
func NewManager() *Manager {
	return &Manager{service: credentialService}
}

// StoreDatabaseURL stores the Postgres connection string after a format check.
func (m *Manager) StoreDatabaseURL(dsn string) error {
	dsn = strings.TrimSpace(dsn)
	if err := validateDSN(dsn); err != nil {
		return fmt.Errorf("invalid database URL: %w", err)
	}
	return m.set(databaseURLKey, dsn)
}

// DatabaseURL returns the stored connection string or ErrNotStored.
func (m *Manager) DatabaseURL() (string, error) {
	return m.get(databaseURLKey)
}

// DeleteDatabaseURL removes the stored connection string. Missing is not an error.
func (m *Manager) DeleteDatabaseURL() error {
	return m.delete(databaseURLKey)
}

// StoreS3Secret stores the S3 secret access key.
func (m *Manager) StoreS3Secret(secret string) error {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return fmt.Errorf("secret cannot be empty")
	}
	return m.set(s3SecretKey, secret)
}

// S3Secret returns the stored S3 secret access key or ErrNotStored.
func (m *Manager) S3Secret() (string, error) {
	return m.get(s3SecretKey)
}

// DeleteS3Secret removes the stored S3 secret. Missing is not an error.
func (m *Manager) DeleteS3Secret() error {
	return m.delete(s3SecretKey)
}

func (m *Manager) set(key, value string) error {
	if err := keyring.Set(m.service, key, value); err != nil {
		return fmt.Errorf("failed to store %s in credential store: %w", key, err)
	}
	return nil
}

func (m *Manager) get(key string) (string, error) {
	value, err := keyring.Get(m.service, key)
	if errors.Is(err, keyring.ErrNotFound) {
		return "", fmt.Errorf("%s: %w", key, ErrNotStored)
	}
	if err != nil {
		return "", fmt.Errorf("failed to retrieve %s from credential store: %w", key, err)
	}
	if strings.TrimSpace(value) == "" {
		return "", fmt.Errorf("%s: stored value is empty: %w", key, ErrNotStored)
	}
	return value, nil
}

func (m *Manager) delete(key string) error {
	err := keyring.Delete(m.service, key)
	if err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("failed to delete %s from credential store: %w", key, err)
	}
	return nil
}

// Status describes the credential store for the `credentials status` command.
type Status struct {
	Available      bool   `json:"available"`
	Error          string `json:"error,omitempty"`
	Warning        string `json:"warning,omitempty"`
	HasDatabaseURL bool   `json:"hasDatabaseUrl"`
	HasS3Secret    bool   `json:"hasS3Secret"`
}

// Status probes the credential store with a throwaway key and reports which
// secrets are present.
func (m *Manager) Status() Status {
	const probeKey, probeValue = "todo-mcp_probe", "probe"

	if err := keyring.Set(m.service, probeKey, probeValue); err != nil {
		return Status{Error: err.Error()}
	}
	got, err := keyring.Get(m.service, probeKey)
	if err != nil || got != probeValue {
		_ = keyring.Delete(m.service, probeKey)
		if err == nil {
			return Status{Error: "credential store corrupted - values don't match"}
		}
		return Status{Error: err.Error()}
	}

	st := Status{Available: true}
	if err := keyring.Delete(m.service, probeKey); err != nil {
		st.Warning = "credential store works but cleanup failed: " + err.Error()
	}
	_, dbErr := m.DatabaseURL()
	st.HasDatabaseURL = dbErr == nil
	_, s3Err := m.S3Secret()
	st.HasS3Secret = s3Err == nil
	return st
}

// validateDSN accepts postgres:// URLs and libpq key=value strings.
func validateDSN(dsn string) error {
	if dsn == "" {
		return fmt.Errorf("cannot be empty")
	}
	if strings.Contains(dsn, "://") {
		u, err := url.Parse(dsn)
		if err != nil {
			return err
		}
		if u.Scheme != "postgres" && u.Scheme != "postgresql" {
			return fmt.Errorf("unsupported scheme %q (want postgres or postgresql)", u.Scheme)
		}
		if u.Host == "" {
			return fmt.Errorf("missing host")
		}
		return nil
	}
	if !strings.Contains(dsn, "=") {
		return fmt.Errorf("expected a postgres:// URL or key=value pairs")
	}
	return nil
}
