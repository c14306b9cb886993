package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/branchdesk/internal/clock"
	"github.com/smallbiznis/branchdesk/internal/config"
	"github.com/smallbiznis/branchdesk/internal/migration"
	"github.com/smallbiznis/branchdesk/internal/observability"
	"github.com/smallbiznis/branchdesk/internal/server"
	"github.com/smallbiznis/branchdesk/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		server.Module,
		migration.Module,
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
