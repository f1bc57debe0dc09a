//go:build wireinject
// +build wireinject

package di

import (
	"context"

	"github.com/google/wire"

	"langpal/internal/chat"
	"langpal/internal/config"
	"langpal/internal/directory"
	"langpal/internal/partner"
	"langpal/internal/store"
)

// InitializeApp builds the full component graph. Wire generates the real
// body in wire_gen.go.
func InitializeApp(ctx context.Context) (*App, func(), error) {
	wire.Build(
		config.LoadConfig,
		ProvideStore,
		wire.Bind(new(store.KVStore), new(*store.GormStore)),
		directory.New,
		partner.NewRoster,
		wire.Bind(new(chat.PartnerResolver), new(*partner.Roster)),
		chat.NewService,
		wire.Struct(new(App), "*"),
	)
	return &App{}, nil, nil
}
