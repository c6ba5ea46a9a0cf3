package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"phoneempire/internal/config"
	"phoneempire/internal/http/handlers"
	applog "phoneempire/internal/log"
	"phoneempire/internal/repos"
)

func main() {
	cfg := config.Load()
	logger := applog.Init(cfg.LogMode, cfg.LogFile)
	defer func() { _ = logger.Sync() }()

	db, err := repos.OpenDB(cfg.DBDriver, cfg.DBDSN, repos.Seed{
		AdminEmail:    cfg.AdminEmail,
		AdminPassword: cfg.AdminPassword,
	})
	if err != nil {
		logger.Fatal("db.open", zap.Error(err))
	}
	defer db.Close()

	app := handlers.NewApp(cfg, handlers.NewDeps(db, cfg))

	// Stop accepting on SIGINT/SIGTERM and let in-flight requests finish.
	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		<-sig
		logger.Info("server.shutdown")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			logger.Error("server.shutdown", zap.Error(err))
		}
	}()

	logger.Info("server.start", zap.String("addr", ":"+cfg.Port), zap.String("db", cfg.DBDriver))
	if err := app.Listen(":" + cfg.Port); err != nil {
		logger.Fatal("server.listen", zap.Error(err))
	}
}
