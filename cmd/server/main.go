package main

import (
	"github.com/astrea-space/astrea/backend/internal/server"
	"github.com/astrea-space/astrea/backend/internal/util"
	"github.com/astrea-space/astrea/backend/pkg/logger"
	"github.com/astrea-space/astrea/backend/pkg/logger/console"

	_ "github.com/lib/pq"
)

func main() {
	util.LoadEnv()

	debug := util.GetEnvBool("DEBUG", false)

	consoleLogger := console.NewConsoleLogger(console.ConsoleLoggerParams{
		Debug: debug,
	})
	logger.Init(consoleLogger)

	server.Init()
}
