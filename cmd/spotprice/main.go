package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"SpotPrice/internal/clock"
	"SpotPrice/internal/collector"
	"SpotPrice/internal/config"
	"SpotPrice/internal/device"
	"SpotPrice/internal/display"
	"SpotPrice/internal/radio"
	"SpotPrice/internal/recorder"
	"SpotPrice/internal/render"
	"SpotPrice/internal/scheduler"
	"SpotPrice/internal/surface"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("[INFO] SpotPrice starting...")

	// Load config
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("[FATAL] load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[FATAL] config validation: %v", err)
	}
	loc, err := cfg.Location()
	if err != nil {
		log.Fatalf("[FATAL] display timezone: %v", err)
	}

	// Credentials are read once; missing ones put the device in the
	// "not configured" state instead of exiting.
	envPath := ".env"
	if v := os.Getenv("ENV_PATH"); v != "" {
		envPath = v
	}
	creds, err := config.LoadCredentials(envPath)
	if err != nil {
		log.Fatalf("[FATAL] load credentials: %v", err)
	}
	configErr := creds.Validate()
	if configErr != nil {
		log.Printf("[WARN] %v, fetching disabled", configErr)
	}

	anchors, err := scheduler.ParseAnchors(cfg.Schedule.Anchors)
	if err != nil {
		log.Fatalf("[FATAL] schedule anchors: %v", err)
	}

	// Init fetcher
	fetcher := collector.NewFeedFetcher(cfg.Feed.URL, cfg.Feed.Timeout, cfg.Proxy)
	log.Printf("[INFO] data source: %s (%s)", fetcher.Name(), cfg.Feed.URL)

	// Init radio
	var rd radio.Radio = radio.Noop{}
	if cfg.Radio.Up != "" || cfg.Radio.Down != "" {
		rd = &radio.Command{
			Up:       cfg.Radio.Up,
			Down:     cfg.Radio.Down,
			SSID:     creds.SSID,
			Password: creds.Password,
			Timeout:  cfg.Radio.Timeout,
		}
	}

	// Init recorder
	var rec recorder.Recorder
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err != nil {
			log.Printf("[WARN] init sqlite recorder failed, using noop: %v", err)
			rec = recorder.NewNoopRecorder()
		} else {
			rec = sr
			defer sr.Close()
		}
	} else {
		rec = recorder.NewNoopRecorder()
	}

	// Init drawing surface
	var surf display.Surface
	switch cfg.Display.Surface {
	case "console":
		surf = surface.NewConsole(os.Stdout, true)
	default:
		surf = surface.NewPNG(cfg.Display.Output, cfg.Display.Width, cfg.Display.Height)
	}
	log.Printf("[INFO] drawing surface: %s", cfg.Display.Surface)

	layout := render.Layout{
		Width:        cfg.Display.Width,
		Height:       cfg.Display.Height,
		PastSlots8h:  *cfg.Graph.PastSlots8h,
		PastSlots24h: *cfg.Graph.PastSlots24h,
		Subdivisions: render.DefaultLayout.Subdivisions,
		Location:     loc,
	}
	renderer := render.NewRenderer(layout, cfg.ColorThresholds(), cfg.GraphThresholds(), surf.Capabilities())

	sched := scheduler.NewScheduler(fetcher, rd, rec, anchors, cfg.Schedule.RetryInterval, configErr)
	log.Printf("[INFO] %s", sched)

	machine := display.NewMachine(renderer, surf, sched, cfg.Cache.StaleAfter)
	if configErr != nil {
		machine.SetConfigError(configErr)
	}

	// SIGUSR1 is the cycle button
	button := make(chan struct{}, 8)
	usr1 := make(chan os.Signal, 1)
	signal.Notify(usr1, syscall.SIGUSR1)
	go func() {
		for range usr1 {
			select {
			case button <- struct{}{}:
			default:
			}
		}
	}()

	// Context for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	loop := device.NewLoop(clock.System{}, sched, machine, button, cfg.Display.Refresh)
	log.Println("[INFO] SpotPrice is running. Send SIGUSR1 to cycle views, Ctrl+C to stop.")

	if err := loop.Run(ctx, device.DefaultPollInterval); err != nil && !errors.Is(err, context.Canceled) {
		log.Printf("[ERROR] control loop: %v", err)
	}
	log.Println("[INFO] SpotPrice stopped")
}
