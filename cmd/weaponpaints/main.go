package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/weaponpaints/extension/internal/catalog"
	"github.com/weaponpaints/extension/internal/config"
	"github.com/weaponpaints/extension/internal/cooldown"
	"github.com/weaponpaints/extension/internal/database"
	"github.com/weaponpaints/extension/internal/dispatcher"
	"github.com/weaponpaints/extension/internal/loadout"
	"github.com/weaponpaints/extension/internal/logging"
	"github.com/weaponpaints/extension/internal/metrics"
	"github.com/weaponpaints/extension/internal/monitor"
	"github.com/weaponpaints/extension/internal/pipeline"
	"github.com/weaponpaints/extension/internal/preview"
	"github.com/weaponpaints/extension/internal/storage"
	_ "github.com/weaponpaints/extension/internal/storage/gormdb"
	"github.com/weaponpaints/extension/internal/syncer"
)

func main() {
	configDir := os.Getenv("WEAPONPAINTS_CONFIG_DIR")
	if configDir == "" {
		configDir = "."
	}

	if err := config.Load(configDir); err != nil {
		fmt.Fprintf(os.Stderr, "error loading config: %v\n", err)
		os.Exit(1)
	}
	if err := config.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
		os.Exit(1)
	}

	logsDir := config.GetString("logsDir")
	if err := os.MkdirAll(logsDir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "error creating logs dir: %v\n", err)
		os.Exit(1)
	}
	logPath := logging.LogFilePath(logsDir, "weaponpaints", time.Now().UTC())
	logFile, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error opening log file: %v\n", err)
		os.Exit(1)
	}
	defer logFile.Close()

	log := logging.Setup(logging.Options{
		Level:          config.GetString("logLevel"),
		File:           logFile,
		GraylogEnabled: config.GetBool("graylog.enabled"),
		GraylogAddress: config.GetString("graylog.address"),
	})

	dbm := database.NewManager(log)
	dbm.SqliteFilePath = config.GetString("db.sqlitePath")
	if err := dbm.Connect(); err != nil {
		log.Fatal().Err(err).Msg("Database connection failed")
	}
	defer dbm.Close()

	args := os.Args[1:]
	if len(args) > 0 && strings.ToLower(args[0]) == "setupdb" {
		if err := dbm.Setup(); err != nil {
			log.Fatal().Err(err).Msg("Schema setup failed")
		}
		return
	}

	backend, err := storage.NewBackend("gorm", dbm.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("Storage backend unavailable")
	}
	if err := backend.Init(); err != nil {
		log.Fatal().Err(err).Msg("Storage init failed")
	}
	defer backend.Close()

	var metricsMgr *metrics.Manager
	if config.GetBool("influx.enabled") {
		metricsMgr = metrics.NewManager(log, logging.LogFilePath(logsDir, "metrics_backup", time.Now().UTC())+".gz")
		if err := metricsMgr.Connect(); err != nil {
			log.Warn().Err(err).Msg("Metrics disabled")
			metricsMgr = nil
		} else {
			defer metricsMgr.Close()
		}
	}

	cats := catalog.Load(config.GetString("dataDir"), log)

	store := loadout.NewStore()
	gate := cooldown.NewGate(config.CommandCooldown(), config.SelectionCooldown())
	prev := preview.NewRegistry(config.PreviewTTL())

	engine, err := syncer.NewEngine(syncer.Dependencies{
		Backend:    backend,
		Store:      store,
		Logger:     log,
		MaxRetries: config.GetInt("syncer.maxRetries"),
		RetryDelay: time.Duration(config.GetInt("syncer.retryDelayMs")) * time.Millisecond,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Engine setup failed")
	}
	defer engine.Close()

	host := newDemoHost(log)

	pipe := pipeline.New(pipeline.Dependencies{
		Store:    store,
		Gate:     gate,
		Catalogs: cats,
		Host:     host,
		Preview:  prev,
		Engine:   engine,
		Logger:   log,
		Features: pipeline.Features{
			Skins:  config.GetBool("features.skins"),
			Knives: config.GetBool("features.knives"),
			Gloves: config.GetBool("features.gloves"),
			Agents: config.GetBool("features.agents"),
			Music:  config.GetBool("features.music"),
			Pins:   config.GetBool("features.pins"),
		},
		PreviewEnabled: config.GetBool("preview.enabled"),
	})

	disp, err := dispatcher.New(logging.NewDispatcherLogger(log))
	if err != nil {
		log.Fatal().Err(err).Msg("Dispatcher setup failed")
	}
	pipe.RegisterCommands(disp, newConsoleMenu(log))

	if metricsMgr != nil {
		mon := monitor.NewService(monitor.Dependencies{
			Engine:   engine,
			Metrics:  metricsMgr,
			Logger:   log,
			Interval: time.Second,
		})
		if err := mon.Start(); err != nil {
			log.Warn().Err(err).Msg("Monitor failed to start")
		}
		defer mon.Stop()
	}

	if len(args) > 0 && strings.ToLower(args[0]) == "demo" {
		runDemo(log, pipe, disp, host)
		return
	}

	log.Info().Strs("commands", disp.Commands()).Msg("Ready, waiting for session events")
	// The host integration drives the dispatcher from here; standalone runs
	// only make sense with the demo or setupdb subcommands.
	_, _ = fmt.Scanln()
}
