package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"feedbox/backend/internal/config"
	"feedbox/backend/internal/fetch"
	"feedbox/backend/internal/handler"
	feedboxhttp "feedbox/backend/internal/http"
	"feedbox/backend/internal/kv"
	"feedbox/backend/internal/scheduler"
	"feedbox/backend/internal/service"
	"feedbox/backend/internal/store"
	"feedbox/backend/pkg/logger"
	"feedbox/backend/pkg/snowflake"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Error("load config", "error", err)
		os.Exit(1)
	}
	logger.Init(logger.ParseLevel(cfg.LogLevel))

	if err := snowflake.Init(cfg.NodeID); err != nil {
		logger.Error("init id node", "error", err)
		os.Exit(1)
	}

	db, err := kv.OpenSQLite(cfg.DBPath)
	if err != nil {
		logger.Error("open database", "path", cfg.DBPath, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	articles := store.New(db)
	fetcher := fetch.New(fetch.WithTimeout(cfg.FetchTimeout))

	feedService := service.NewFeedService(articles, fetcher)
	refreshService := service.NewRefreshService(articles, fetcher)
	articleService := service.NewArticleService(articles)
	flagService := service.NewFlagService(articles)

	router := feedboxhttp.NewRouter(
		handler.NewFeedHandler(feedService, refreshService),
		handler.NewArticleHandler(articleService, flagService),
	)

	refreshScheduler := scheduler.New(refreshService, cfg.RefreshInterval)
	refreshScheduler.Start()
	defer refreshScheduler.Stop()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		logger.Info("server listening", "addr", cfg.Addr)
		if err := router.Start(cfg.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return router.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
	logger.Info("server stopped")
}
