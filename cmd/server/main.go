package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pwnholic/taskcard/internal"
	"github.com/pwnholic/taskcard/internal/config"
	"github.com/pwnholic/taskcard/internal/delivery"
	"github.com/pwnholic/taskcard/internal/exports"
	"github.com/pwnholic/taskcard/internal/form"
	"github.com/pwnholic/taskcard/internal/render"
	"github.com/pwnholic/taskcard/internal/server"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		internal.InitDefaultLogger(internal.INFO)
		internal.Error("Invalid configuration: %v", err)
		os.Exit(1)
	}
	level := internal.ParseLevel(cfg.Log.Level)
	internal.InitDefaultLogger(level)
	internal.GetDefaultLogger().SetLevel(level)
	if level != internal.DEBUG {
		gin.SetMode(gin.ReleaseMode)
	}

	sink, closeSinks, err := delivery.Build(context.Background(), cfg)
	if err != nil {
		internal.Error("Failed to set up delivery: %v", err)
		os.Exit(1)
	}
	defer closeSinks()

	var cardOpts []render.CardOption
	if cfg.Export.LogoPath != "" {
		logo, err := render.LoadLogo(cfg.Export.LogoPath)
		if err != nil {
			internal.Error("Failed to load logo: %v", err)
			os.Exit(1)
		}
		cardOpts = append(cardOpts, render.WithLogo(logo))
	}

	ws := server.NewWorkspace(
		form.New(form.WithDelay(cfg.Export.SubmitDelay)),
		render.NewCard(cardOpts...),
	)
	pipeline := exports.NewPipeline(sink,
		exports.WithSettleDelay(cfg.Export.SettleDelay),
		exports.WithTimeout(cfg.Export.Timeout),
	)
	router := server.New(server.NewHandlers(ws, pipeline))

	srv := &http.Server{
		Addr:    cfg.Server.Addr(),
		Handler: router,
	}

	go func() {
		internal.Info("Listening on %s, writing artifacts to %s", srv.Addr, cfg.Export.OutputDir)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			internal.Error("Server failed: %v", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(stop)

	<-stop
	internal.Info("Shut down signal received...")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		internal.Error("Shutdown failed: %v", err)
		return
	}
	internal.Success("Shut down gracefully")
}
