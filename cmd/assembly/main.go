package main

import (
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"

	"github.com/opendao/assembly/internal/clock"
	"github.com/opendao/assembly/internal/config"
	"github.com/opendao/assembly/internal/migration"
	"github.com/opendao/assembly/internal/observability"
	"github.com/opendao/assembly/internal/server"
	"github.com/opendao/assembly/pkg/db"
)

func main() {
	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(registerSnowflake),
		db.Module,
		clock.Module,
		migration.Module,
		server.Module,
	)
	app.Run()
}

func registerSnowflake(cfg config.Config) *snowflake.Node {
	node, err := snowflake.NewNode(cfg.SnowflakeNode)
	if err != nil {
		panic(err)
	}
	return node
}
