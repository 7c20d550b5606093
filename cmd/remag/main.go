package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/remag/internal/clock"
	"github.com/smallbiznis/remag/internal/commission"
	"github.com/smallbiznis/remag/internal/config"
	"github.com/smallbiznis/remag/internal/migration"
	"github.com/smallbiznis/remag/internal/observability"
	"github.com/smallbiznis/remag/internal/ratelimit"
	"github.com/smallbiznis/remag/internal/server"
	"github.com/smallbiznis/remag/internal/settlement"
	"github.com/smallbiznis/remag/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		// Core Infrastructure
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		migration.Module,
		clock.Module,
		ratelimit.Module,

		// Functional Domains
		commission.Module,
		settlement.Module,

		server.Module,
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
