// Command farmctl talks to a running herdboard server.
//
// Usage:
//
//	farmctl [-server URL] [-timeout 30s] <animals|stats|export [-o DIR]|sheets|clear-cache>
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/herdboard/internal/service/dashboard"
	client "github.com/mamadbah2/herdboard/pkg/clients/dashboard"
	"github.com/mamadbah2/herdboard/pkg/logger"
)

func main() {
	server := flag.String("server", envOr("HERDBOARD_URL", "http://localhost:8080"), "herdboard base URL")
	timeout := flag.Duration("timeout", 30*time.Second, "request timeout")
	level := flag.String("log-level", "warn", "log level")
	flag.Parse()

	log := logger.Must(logger.New(*level))
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	c := client.NewClient(*server, *timeout)
	if err := run(ctx, flag.Args(), c, os.Stdout, log); err != nil {
		log.Error("command failed", zap.Error(err))
		fmt.Fprintln(os.Stderr, "farmctl:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, c client.Client, out io.Writer, log *zap.Logger) error {
	if len(args) == 0 {
		return fmt.Errorf("missing command (animals, stats, export, sheets, clear-cache)")
	}

	switch args[0] {
	case "animals":
		animals, err := c.ListAnimals(ctx)
		if err != nil {
			return err
		}
		for _, a := range animals {
			fmt.Fprintf(out, "%d\t%s\t%s\t%s\t%s\n", a.ID, a.Name, a.Type, a.HealthStatus, dashboard.FormatWeight(a.Weight))
		}
		return nil

	case "stats":
		stats, err := c.Stats(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Total animals:    %d\n", stats.TotalAnimals)
		fmt.Fprintf(out, "Healthy:          %d\n", stats.HealthyAnimals)
		fmt.Fprintf(out, "Sick/other:       %d\n", stats.SickAnimals)
		fmt.Fprintf(out, "Milk production:  %s\n", dashboard.FormatMilkProduction(stats.TotalMilkProduction))
		fmt.Fprintf(out, "Average weight:   %s\n", dashboard.FormatWeight(stats.AverageWeight))
		fmt.Fprintf(out, "Feed efficiency:  %s\n", dashboard.FormatPercentage(stats.FeedEfficiency))
		return nil

	case "export":
		fs := flag.NewFlagSet("export", flag.ContinueOnError)
		fs.SetOutput(out)
		dir := fs.String("o", ".", "output directory")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		exp, err := c.DownloadExport(ctx)
		if err != nil {
			return err
		}
		path := filepath.Join(*dir, exp.Filename)
		if err := os.WriteFile(path, exp.Body, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		log.Info("export saved", zap.String("path", path), zap.Int("bytes", len(exp.Body)))
		fmt.Fprintln(out, path)
		return nil

	case "sheets":
		rows, err := c.ExportToSheets(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%d rows written\n", rows)
		return nil

	case "clear-cache":
		if err := c.ClearCache(ctx); err != nil {
			return err
		}
		fmt.Fprintln(out, "cache cleared")
		return nil

	default:
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
