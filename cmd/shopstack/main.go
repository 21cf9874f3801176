package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/shopstack/shopstack/internal/clock"
	"github.com/shopstack/shopstack/internal/config"
	"github.com/shopstack/shopstack/internal/migration"
	"github.com/shopstack/shopstack/internal/observability"
	"github.com/shopstack/shopstack/internal/server"
	"github.com/shopstack/shopstack/internal/sweeper"
	"github.com/shopstack/shopstack/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		migration.Module,

		server.Module,
		sweeper.Module,
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
