package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/goliatone/go-command/dispatcher"
	"github.com/goliatone/go-lookup"
	"github.com/goliatone/go-lookup/cmd/lookupd/internal/bootstrap"
	exportcmd "github.com/goliatone/go-lookup/internal/commands/export"
	optionscmd "github.com/goliatone/go-lookup/internal/commands/options"
	"github.com/goliatone/go-lookup/internal/migrations"
)

const usage = `usage: lookupd <command> [flags]

commands:
  serve    create tables, seed and serve the options API
  migrate  apply the SQL migrations (or create tables from models) and exit
  export   regenerate the country workbook once and exit
  purge    hard delete every record of one kind and exit
`

var moduleBuilder = bootstrap.BuildModule

func main() {
	if err := run(os.Args[1:]); err != nil {
		log.Fatalf("lookupd: %v", err)
	}
}

func run(args []string) error {
	if len(args) == 0 {
		fmt.Fprint(os.Stderr, usage)
		return errors.New("missing command")
	}
	switch args[0] {
	case "serve":
		return runServe(args[1:])
	case "migrate":
		return runMigrate(args[1:])
	case "export":
		return runExport(args[1:])
	case "purge":
		return runPurge(args[1:])
	case "help", "-h", "--help":
		fmt.Fprint(os.Stdout, usage)
		return nil
	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func commonFlags(fs *flag.FlagSet) *bootstrap.Options {
	opts := &bootstrap.Options{}
	fs.StringVar(&opts.Driver, "driver", bootstrap.EnvOr("LOOKUP_DB_DRIVER", "sqlite"), "Database driver: sqlite, postgres or memory")
	fs.StringVar(&opts.DSN, "dsn", bootstrap.EnvOr("LOOKUP_DB_DSN", "file:lookup.db?cache=shared"), "Database connection string")
	fs.BoolVar(&opts.Cache, "cache", false, "Cache reads in front of the database")
	fs.StringVar(&opts.LogProvider, "log-provider", bootstrap.EnvOr("LOOKUP_LOG_PROVIDER", "gologger"), "Logger provider: console or gologger")
	fs.StringVar(&opts.LogLevel, "log-level", bootstrap.EnvOr("LOOKUP_LOG_LEVEL", "info"), "Minimum log level")
	fs.StringVar(&opts.ExportSink, "export-sink", bootstrap.EnvOr("LOOKUP_EXPORT_SINK", "fs"), "Country workbook sink: fs or s3")
	fs.StringVar(&opts.ExportDir, "export-dir", bootstrap.EnvOr("LOOKUP_EXPORT_DIR", "exports"), "Directory for the fs sink")
	fs.StringVar(&opts.ExportBucket, "export-bucket", os.Getenv("LOOKUP_EXPORT_BUCKET"), "Bucket for the s3 sink")
	fs.StringVar(&opts.ExportRegion, "export-region", os.Getenv("AWS_REGION"), "Region for the s3 sink")
	fs.StringVar(&opts.ExportEndpoint, "export-endpoint", os.Getenv("LOOKUP_EXPORT_ENDPOINT"), "Custom S3 endpoint, enables path style addressing")
	return opts
}

func runServe(args []string) error {
	fs := flag.NewFlagSet("lookupd-serve", flag.ExitOnError)
	opts := commonFlags(fs)
	addr := fs.String("addr", bootstrap.EnvOr("LOOKUP_HTTP_ADDR", ":8080"), "HTTP listen address")
	fs.StringVar(&opts.BasePath, "base-path", bootstrap.EnvOr("LOOKUP_HTTP_BASE_PATH", "/api/lookups"), "Mount point of the options API")
	fs.DurationVar(&opts.ExportDebounce, "export-debounce", 500*time.Millisecond, "Quiet period before the workbook is rebuilt")
	fs.BoolVar(&opts.DisableExport, "no-export", false, "Disable the country workbook export")
	fs.BoolVar(&opts.Metrics, "metrics", true, "Serve Prometheus metrics on GET /metrics")
	if err := fs.Parse(args); err != nil {
		return err
	}

	module, err := moduleBuilder(*opts)
	if err != nil {
		return fmt.Errorf("bootstrap module: %w", err)
	}
	defer module.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := module.Module.Start(ctx); err != nil {
		return err
	}

	mux := http.NewServeMux()
	if err := module.Module.RegisterRoutes(mux); err != nil {
		return err
	}
	server := &http.Server{
		Addr:              *addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()
	fmt.Fprintf(os.Stdout, "lookupd listening on %s\n", *addr)

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func runMigrate(args []string) error {
	fs := flag.NewFlagSet("lookupd-migrate", flag.ExitOnError)
	opts := commonFlags(fs)
	mode := fs.String("mode", "sql", "sql applies the embedded SQL files, models creates tables from the bun models")
	if err := fs.Parse(args); err != nil {
		return err
	}
	opts.DisableExport = true

	module, err := moduleBuilder(*opts)
	if err != nil {
		return fmt.Errorf("bootstrap module: %w", err)
	}
	defer module.Close()

	if module.DB == nil {
		fmt.Fprintln(os.Stdout, "memory driver has no tables to migrate")
		return nil
	}

	switch *mode {
	case "sql":
		result, err := migrations.Up(module.DB.DB, opts.Driver, lookup.GetMigrationsFS(), migrations.DefaultDir)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "schema at version %d (changed: %t)\n", result.Version, result.Changed)
	case "models":
		if err := module.Module.Container().Registry().Migrate(context.Background()); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		fmt.Fprintln(os.Stdout, "option tables are up to date")
	default:
		return fmt.Errorf("unknown migrate mode %q", *mode)
	}
	return nil
}

func runExport(args []string) error {
	fs := flag.NewFlagSet("lookupd-export", flag.ExitOnError)
	opts := commonFlags(fs)
	reason := fs.String("reason", "cli", "Reason recorded with the regenerate command")
	if err := fs.Parse(args); err != nil {
		return err
	}

	module, err := moduleBuilder(*opts)
	if err != nil {
		return fmt.Errorf("bootstrap module: %w", err)
	}
	defer module.Close()

	ctx := context.Background()
	if err := module.Module.Container().Registry().Migrate(ctx); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	sub := dispatcher.SubscribeCommand(module.Module.Container().ExportCommands().Regenerate)
	defer sub.Unsubscribe()

	if err := dispatcher.Dispatch(ctx, exportcmd.RegenerateCommand{Reason: *reason}); err != nil {
		return fmt.Errorf("execute regenerate command: %w", err)
	}
	if last := module.Module.LastExport(); last != nil {
		fmt.Fprintf(os.Stdout, "wrote %s (%d countries, %d bytes)\n", last.Key, last.Rows, last.Bytes)
	}
	return nil
}

func runPurge(args []string) error {
	fs := flag.NewFlagSet("lookupd-purge", flag.ExitOnError)
	opts := commonFlags(fs)
	kind := fs.String("kind", "", "Kind key to purge, e.g. tender_type")
	if err := fs.Parse(args); err != nil {
		return err
	}
	opts.DisableExport = true

	module, err := moduleBuilder(*opts)
	if err != nil {
		return fmt.Errorf("bootstrap module: %w", err)
	}
	defer module.Close()

	sub := dispatcher.SubscribeCommand(module.Module.Container().OptionCommands().Purge)
	defer sub.Unsubscribe()

	if err := dispatcher.Dispatch(context.Background(), optionscmd.PurgeCommand{Kind: *kind}); err != nil {
		return fmt.Errorf("execute purge command: %w", err)
	}
	fmt.Fprintf(os.Stdout, "purged %s\n", *kind)
	return nil
}
