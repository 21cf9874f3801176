package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/shopstack/shopstack/internal/clock"
	"github.com/shopstack/shopstack/internal/config"
	"github.com/shopstack/shopstack/internal/observability"
	"github.com/shopstack/shopstack/internal/order"
	"github.com/shopstack/shopstack/internal/plan"
	"github.com/shopstack/shopstack/internal/plantracker"
	"github.com/shopstack/shopstack/internal/sequence"
	"github.com/shopstack/shopstack/internal/shopkeeper"
	"github.com/shopstack/shopstack/internal/sweeper"
	"github.com/shopstack/shopstack/pkg/db"
	"go.uber.org/fx"
)

// Standalone sweeper process for deployments that split background work
// from the API. The redis lock in sweeper.Config keeps replicas from
// double-running a job.
func main() {
	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,

		sequence.Module,
		shopkeeper.Module,
		plan.Module,
		plantracker.Module,
		order.Module,

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
