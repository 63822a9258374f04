package cli

import (
	stderrors "errors"
	"fmt"
	"io"

	"github.com/julianstephens/streakly/internal/config"
	"github.com/julianstephens/streakly/internal/errors"
	"github.com/julianstephens/streakly/internal/notifier"
	"github.com/julianstephens/streakly/internal/storage"
	"github.com/julianstephens/streakly/internal/storage/postgres"
	"github.com/julianstephens/streakly/internal/storage/sqlite"
)

// OpenProvider returns the storage backend for a path or connection string.
// PostgreSQL connection strings with an embedded password are refused.
func OpenProvider(ref string, kind config.StorageKind) (storage.Provider, error) {
	switch kind {
	case config.StoragePostgres:
		if valid, err := postgres.ValidateConnString(ref); !valid {
			if stderrors.Is(err, postgres.ErrEmbeddedCredentials) {
				return nil, errors.WithHint(err,
					"store the connection string with 'streakly keyring set', export STREAKLY_DB_CONNECTION, or use a .pgpass file")
			}
			return nil, err
		}
		return postgres.New(ref), nil
	case config.StorageJSON:
		return storage.NewJSONStore(ref), nil
	case config.StorageSQLite:
		return sqlite.NewStore(ref), nil
	default:
		return nil, fmt.Errorf("unsupported storage kind: %v", kind)
	}
}

// NewNotifier builds the notification sinks enabled in cfg. Console output goes to w.
func NewNotifier(cfg *config.Config, w io.Writer) notifier.Notifier {
	var sinks notifier.Multi
	if cfg.Notifications.Console {
		sinks = append(sinks, notifier.NewConsole(w))
	}
	if tray := TrayNotifier(cfg); tray != nil {
		sinks = append(sinks, tray)
	}
	if len(sinks) == 0 {
		return notifier.Nop{}
	}
	return sinks
}

// TrayNotifier returns the tray sink if it is enabled, otherwise nil.
func TrayNotifier(cfg *config.Config) notifier.Notifier {
	if cfg == nil || !cfg.Notifications.Tray {
		return nil
	}
	return notifier.NewTray()
}
