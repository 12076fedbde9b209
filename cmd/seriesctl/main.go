// seriesctl replays recorded tick streams and explores series stores interactively.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	defaults "github.com/xtxerr/tickseries/config"
	"github.com/xtxerr/tickseries/internal/config"
	"github.com/xtxerr/tickseries/internal/errors"
	"github.com/xtxerr/tickseries/internal/logging"
	"github.com/xtxerr/tickseries/internal/replay"
	"github.com/xtxerr/tickseries/internal/series"
	"github.com/xtxerr/tickseries/internal/shell"
)

// Version is set at build time via ldflags
var Version = "dev"

func usage() {
	fmt.Fprintf(os.Stderr, `seriesctl %s

Usage:
  seriesctl replay -config <file>                       replay configured streams
  seriesctl shell -channels a,b [-window n] [-history]  interactive store shell
  seriesctl version
`, Version)
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "replay":
		err = runReplay(os.Args[2:])
	case "shell":
		err = runShell(os.Args[2:])
	case "version":
		fmt.Println(Version)
	case "-h", "--help", "help":
		usage()
	default:
		usage()
		os.Exit(2)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "seriesctl: %s: %v\n", errors.CodeName(errors.ErrorToCode(err)), err)
		os.Exit(exitCode(err))
	}
}

func exitCode(err error) int {
	if errors.IsValidation(err) {
		return 2
	}
	return 1
}

func runReplay(args []string) error {
	fs := flag.NewFlagSet("replay", flag.ExitOnError)
	cfgPath := fs.String("config", "config.yaml", "config file path")
	logLevel := fs.String("log-level", "", "log level (overrides config)")
	parallel := fs.Int("parallel", 0, "streams replayed at once (overrides config)")
	fs.Parse(args)

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		return err
	}

	// CLI overrides
	if *logLevel != "" {
		cfg.Log.Level = *logLevel
	}
	if *parallel > 0 {
		cfg.Replay.Parallelism = *parallel
	}

	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return err
	}
	logging.Init(level, cfg.Log.JSON)
	log := logging.Component("seriesctl")

	if len(cfg.Streams) == 0 {
		return errors.NewMissingField("streams")
	}

	streams, err := replay.StreamsFromConfig(cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info("replay starting", "version", Version, "streams", len(streams), "parallelism", cfg.Replay.Parallelism)

	results, err := replay.New(replay.OptionsFromConfig(cfg)).Run(ctx, streams)
	if err != nil {
		return err
	}

	for _, res := range results {
		fmt.Printf("%s: %d ticks, %d retained, %d rows exported (%s)\n",
			res.Stream, res.Ticks, res.Retained, res.RowsExported, res.Duration.Round(time.Millisecond))
		for _, sum := range res.Summaries {
			fmt.Printf("  %s\n", shell.FormatSummary(sum))
		}
	}
	return nil
}

func runShell(args []string) error {
	fs := flag.NewFlagSet("shell", flag.ExitOnError)
	channels := fs.String("channels", "", "comma-separated channel names")
	window := fs.Int("window", defaults.DefaultShellWindow, "ticks retained per channel")
	history := fs.Bool("history", false, "keep the full history log")
	script := fs.String("script", "", "read commands from file instead of the terminal")
	fs.Parse(args)

	logging.Init(slog.LevelWarn, false)

	var names []string
	for _, n := range strings.Split(*channels, ",") {
		if n = strings.TrimSpace(n); n != "" {
			names = append(names, n)
		}
	}

	store, err := series.New(names, *window, series.WithHistory(*history))
	if err != nil {
		return err
	}
	sh := shell.New(store)

	if *script != "" {
		f, err := os.Open(*script)
		if err != nil {
			return err
		}
		defer f.Close()
		return sh.Run(f, os.Stdout)
	}
	return sh.RunInteractive(os.Stdout)
}
