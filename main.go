package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"auction-engine/internal/bidding"
	"auction-engine/internal/config"
	"auction-engine/internal/finalizer"
	"auction-engine/internal/lifecycle"
	"auction-engine/internal/orders"
	"auction-engine/internal/repository"
	"auction-engine/internal/scheduler"
	"auction-engine/internal/server"
	"auction-engine/internal/store"
	"auction-engine/utils"
)

func main() {
	path := flag.String("config", envOr("CONFIG_FILE", "config.toml"), "path to config")
	flag.Parse()

	cfg, err := config.Load(*path)
	if err != nil {
		utils.Fatal("Failed to load config", map[string]any{"path": *path, "error": err.Error()})
	}
	utils.SetLevel(cfg.Log.Level)

	db, err := store.Open(cfg.Store.Options())
	if err != nil {
		utils.Fatal("Failed to open store", map[string]any{"driver": cfg.Store.Driver, "error": err.Error()})
	}
	defer db.Close()

	repo := repository.NewDocRepo(db)
	if cfg.Store.SeedFile != "" {
		seedStore(repo, cfg.Store.SeedFile)
	}

	engine := bidding.NewEngine(repo, bidding.WithDefaultMinIncrement(cfg.Bidding.DefaultMinIncrement))
	botCycle := bidding.NewBotCycle(repo, engine, cfg.Bidding.MaxConcurrency)

	emitter := orders.NewEmitter(
		orders.WithTTL(cfg.Finalizer.OrderTTL.Std()),
		orders.WithLink(cfg.Finalizer.NotificationLink),
	)
	fin := finalizer.New(repo, emitter,
		finalizer.WithMaxConcurrency(cfg.Finalizer.MaxConcurrency),
		finalizer.WithRepairGrace(cfg.Finalizer.RepairGrace.Std()),
	)

	svc := lifecycle.NewService(repo, botCycle, fin)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sched := scheduler.New(cfg.Scheduler.StoreTimeout.Std(), cfg.Scheduler.RunOnStart,
		svc.Tasks(cfg.Scheduler.BotInterval.Std(), cfg.Scheduler.FinalizeInterval.Std())...)
	if err := sched.Start(ctx); err != nil {
		utils.Fatal("Failed to start scheduler", map[string]any{"error": err.Error()})
	}

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: server.SetupRouter(svc),
	}
	go func() {
		utils.Info("Starting auction engine", map[string]any{
			"addr":   srv.Addr,
			"driver": cfg.Store.Driver,
		})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			utils.Fatal("Failed to start server", map[string]any{"error": err.Error()})
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	utils.Info("Shutting down", nil)

	sched.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		utils.Error("Server shutdown failed", map[string]any{"error": err.Error()})
	}
}

// seedStore loads bots and auctions from a JSON seed file
func seedStore(repo *repository.DocRepo, path string) {
	f, err := os.Open(path)
	if err != nil {
		utils.Fatal("Failed to open seed file", map[string]any{"path": path, "error": err.Error()})
	}
	defer f.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	n, err := repo.Seed(ctx, f)
	if err != nil {
		utils.Fatal("Failed to seed store", map[string]any{"path": path, "error": err.Error()})
	}
	utils.Info("Store seeded", map[string]any{"path": path, "records": n})
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
