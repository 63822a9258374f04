package keyring

import (
	"errors"
	"fmt"
	"strings"

	"github.com/zalando/go-keyring"

	"github.com/julianstephens/streakly/internal/constants"
)

var (
	// ErrNotFound is returned when no credentials are found in the keyring
	ErrNotFound = errors.New("credentials not found in keyring")
	// ErrKeyringUnavailable is returned when the OS keyring is not available
	ErrKeyringUnavailable = errors.New("OS keyring is not available")
)

// Entry is one secret stored under the application's keyring service.
type Entry struct {
	Service string
	User    string
}

// ConnectionString is the entry holding the PostgreSQL connection string.
var ConnectionString = Entry{Service: constants.AppName, User: constants.DefaultKeyringUser}

func (e Entry) Get() (string, error) {
	value, err := keyring.Get(e.Service, e.User)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("%w: %v", ErrKeyringUnavailable, err)
	}
	return value, nil
}

func (e Entry) Set(value string) error {
	if strings.TrimSpace(value) == "" {
		return errors.New("secret cannot be empty")
	}
	if err := keyring.Set(e.Service, e.User, value); err != nil {
		return fmt.Errorf("failed to store credentials in keyring: %w", err)
	}
	return nil
}

func (e Entry) Delete() error {
	if err := keyring.Delete(e.Service, e.User); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete credentials from keyring: %w", err)
	}
	return nil
}

// Exists reports whether a value is stored, treating lookup errors as absent.
func (e Entry) Exists() bool {
	_, err := e.Get()
	return err == nil
}

// GetConnectionString retrieves the database connection string from the OS keyring.
func GetConnectionString() (string, error) {
	return ConnectionString.Get()
}

// SetConnectionString stores the database connection string in the OS keyring.
func SetConnectionString(connStr string) error {
	return ConnectionString.Set(connStr)
}

// DeleteConnectionString removes the database connection string from the OS keyring.
func DeleteConnectionString() error {
	return ConnectionString.Delete()
}

// IsAvailable checks if the OS keyring is available on the current system.
// This is a best-effort check and may not catch all failure scenarios.
func IsAvailable() bool {
	_, err := keyring.Get(constants.AppName, "test-availability")
	return err == nil || errors.Is(err, keyring.ErrNotFound)
}

// Mask hides everything but the scheme and host of a connection string for display.
func Mask(connStr string) string {
	if i := strings.Index(connStr, "://"); i >= 0 {
		rest := connStr[i+3:]
		if at := strings.LastIndex(rest, "@"); at >= 0 {
			rest = rest[at+1:]
		}
		if slash := strings.IndexAny(rest, "/?"); slash >= 0 {
			rest = rest[:slash]
		}
		return connStr[:i+3] + "***@" + rest + "/***"
	}
	if connStr == "" {
		return ""
	}
	return "***"
}
