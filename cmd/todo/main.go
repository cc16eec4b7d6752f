package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"taskboard/internal/board"
	"taskboard/internal/config"
	"taskboard/internal/logging"
	"taskboard/internal/monitor"
	"taskboard/internal/script"
	"taskboard/internal/storage"
	"taskboard/internal/ui"
)

func main() {
	configFlag := flag.String("config", "", "config file (default $TODO_CONFIG or the user config dir)")
	scriptFlag := flag.String("script", "", "run commands from a file (- for stdin) and print JSON instead of the board")
	todayFlag := flag.String("today", "", "start date for -script, YYYY-MM-DD (default: now)")
	flag.Parse()

	configPath := *configFlag
	if configPath == "" {
		configPath = config.ResolveConfigPath()
	}
	firstLaunch := false
	if _, err := os.Stat(configPath); err != nil {
		firstLaunch = errors.Is(err, os.ErrNotExist)
	}
	cfg, err := config.LoadOrCreate(configPath)
	if err != nil {
		fmt.Printf("failed to load config: %v\n", err)
		os.Exit(1)
	}

	if *scriptFlag != "" {
		if err := runScript(cfg, *scriptFlag, *todayFlag); err != nil {
			fmt.Fprintf(os.Stderr, "script: %v\n", err)
			os.Exit(1)
		}
		return
	}

	os.Exit(runBoard(cfg, configPath, firstLaunch))
}

// runBoard returns the exit code so the log file is closed before exit.
func runBoard(cfg config.Config, configPath string, firstLaunch bool) int {
	logger, closeLog, err := logging.New(logging.Options{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
		File:   cfg.LogFile,
	})
	if err != nil {
		fmt.Printf("failed to set up logging: %v\n", err)
		return 1
	}
	defer closeLog()

	interval, err := cfg.Interval()
	if err != nil {
		fmt.Printf("invalid config: %v\n", err)
		return 1
	}
	b, err := board.New(board.WithLogger(logger), board.WithPageSize(cfg.PageSize))
	if err != nil {
		fmt.Printf("failed to create board: %v\n", err)
		return 1
	}

	if err := ui.Run(b, monitor.New(interval), cfg, logger, configPath, firstLaunch); err != nil {
		logger.WithError(err).Error("program exited")
		fmt.Printf("error running program: %v\n", err)
		return 1
	}
	return 0
}

func runScript(cfg config.Config, path, today string) error {
	logger, closeLog, err := logging.New(logging.Options{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
		Output: os.Stderr,
	})
	if err != nil {
		return err
	}
	defer closeLog()

	now := time.Now()
	if today != "" {
		now, err = time.ParseInLocation(storage.DateLayout, today, time.Local)
		if err != nil {
			return fmt.Errorf("-today: %w", err)
		}
	}

	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		r = f
	}

	in, err := script.New(os.Stdout, logger, now, cfg.PageSize)
	if err != nil {
		return err
	}
	return in.Run(r)
}
