package main

import (
	stdLog "log"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap/zapcore"

	"github.com/abakhtin/library-api/app"
	"github.com/abakhtin/library-api/config"
)

//	@title			Library API
//	@version		1.0
//	@description	Catalog and lending service: books by isbn, loans with a single-active-loan rule, overdue sweep.
//	@BasePath		/api

func main() {
	if err := godotenv.Load(); err != nil {
		stdLog.Println("no .env file, reading config from environment")
	}
	cfg := config.NewConfig(
		config.WithLogLevel(zapcore.DebugLevel),
		config.WithWriteTimeout(time.Minute),
	)

	app.Run(cfg)
}
