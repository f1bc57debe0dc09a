package di

import (
	"langpal/internal/chat"
	"langpal/internal/config"
	"langpal/internal/directory"
	"langpal/internal/partner"
	"langpal/internal/store"
)

// App aggregates the wired components handed to cmd/langpal.
type App struct {
	Config    *config.Config
	Store     store.KVStore
	Directory *directory.Directory
	Roster    *partner.Roster
	Chat      *chat.Service
}

// ProvideStore opens the device-local key-value database. The returned
// cleanup closes the SQLite handle.
func ProvideStore(cfg *config.Config) (*store.GormStore, func(), error) {
	kv, err := store.OpenGorm(cfg.Storage.Path)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		_ = kv.Close()
	}
	return kv, cleanup, nil
}
