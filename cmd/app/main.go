package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"os"
	"os/signal"
	"time"

	"github.com/pwnholic/taskcard/internal"
	"github.com/pwnholic/taskcard/internal/config"
	"github.com/pwnholic/taskcard/internal/delivery"
	"github.com/pwnholic/taskcard/internal/exports"
	"github.com/pwnholic/taskcard/internal/render"
)

func main() {
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: taskcard -p <phone> -j <job> -r <price>")
		fmt.Fprintln(os.Stderr, "Options:")
		flag.PrintDefaults()
	}

	startTime := time.Now()

	cfg, err := config.LoadConfig()
	if err != nil {
		internal.InitDefaultLogger(internal.INFO)
		internal.Error("Invalid configuration: %v", err)
		os.Exit(1)
	}

	customFlag := parseFlag(cfg.Export.OutputDir)
	level := internal.ParseLevel(cfg.Log.Level)
	if customFlag.Verbose {
		level = internal.DEBUG
	}
	internal.InitDefaultLogger(level)
	internal.GetDefaultLogger().SetLevel(level)
	cfg.Export.OutputDir = customFlag.OutputDir

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	sink, closeSinks, err := delivery.Build(ctx, cfg)
	if err != nil {
		internal.Error("Failed to set up delivery: %v", err)
		os.Exit(1)
	}
	defer closeSinks()

	var logo image.Image
	if cfg.Export.LogoPath != "" {
		logo, err = render.LoadLogo(cfg.Export.LogoPath)
		if err != nil {
			internal.Error("Failed to load logo: %v", err)
			os.Exit(1)
		}
	}

	pipeline := exports.NewPipeline(sink,
		exports.WithSettleDelay(cfg.Export.SettleDelay),
		exports.WithTimeout(cfg.Export.Timeout),
	)

	process := newGenerateCard(pipeline, cfg.Export.SubmitDelay, logo)
	if err := process.processGenerate(ctx, customFlag); err != nil {
		internal.Error("Something went wrong : %s", err.Error())
		os.Exit(1)
	}
	internal.Success("Program completed in %v", time.Since(startTime))
}
