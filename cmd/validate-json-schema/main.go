package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/atvirokodosprendimai/validate-json-schema/internal/adapters/filecache"
	"github.com/atvirokodosprendimai/validate-json-schema/internal/app"
	"github.com/atvirokodosprendimai/validate-json-schema/internal/core/domain"
	"github.com/urfave/cli/v3"
)

const version = "0.1.0"

var errUsage = errors.New("both FILE and SCHEMA arguments are required for validation\n" +
	"Usage: validate-json-schema <FILE> <SCHEMA>\n" +
	"       validate-json-schema clear-cache\n" +
	"Try 'validate-json-schema --help' for more information.")

func main() {
	// -v is taken by --verbose.
	cli.VersionFlag = &cli.BoolFlag{Name: "version", Usage: "print the version"}

	validateCmd := &cli.Command{
		Name:      "validate",
		Usage:     "Validate a YAML or JSON file against a schema file or URL",
		ArgsUsage: "FILE SCHEMA",
		Action:    runValidate,
	}

	cmd := &cli.Command{
		Name:    "validate-json-schema",
		Version: version,
		Usage:   "Validates YAML and JSON files against JSON schemas",
		Description: "Supports both local schema files and remote schema URLs with automatic caching.\n" +
			"Automatically detects file format based on extension and content.",
		ArgsUsage: "FILE SCHEMA",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "Show detailed information about the validation process",
			},
			&cli.StringFlag{
				Name:    "cache-dir",
				Sources: cli.EnvVars("VALIDATE_JSON_SCHEMA_CACHE_DIR"),
				Usage:   "Directory for cached remote schemas (default: <user cache dir>/validate-json-schema/schemas)",
			},
			&cli.StringFlag{
				Name:    "state-db",
				Sources: cli.EnvVars("VALIDATE_JSON_SCHEMA_STATE_DB"),
				Usage:   "SQLite file for the cache index and validation history (default: <user cache dir>/validate-json-schema/state.sqlite)",
			},
			&cli.BoolFlag{
				Name:    "no-state",
				Sources: cli.EnvVars("VALIDATE_JSON_SCHEMA_NO_STATE"),
				Usage:   "Do not keep a cache index or validation history",
			},
		},
		Action: runValidate,
		Commands: []*cli.Command{
			validateCmd,
			{
				Name:   "clear-cache",
				Usage:  "Remove all cached remote schemas from the local cache directory",
				Action: runClearCache,
			},
			{
				Name:  "cache",
				Usage: "Inspect the schema cache",
				Commands: []*cli.Command{
					{
						Name:   "list",
						Usage:  "List cached schema URLs",
						Action: runCacheList,
					},
					{
						Name:   "clear",
						Usage:  "Remove all cached remote schemas",
						Action: runClearCache,
					},
				},
			},
			{
				Name:  "history",
				Usage: "Show recent validation runs",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "limit", Value: 20, Usage: "Maximum number of runs to show"},
					&cli.BoolFlag{Name: "failed", Usage: "Only show runs that did not pass"},
				},
				Action: runHistory,
			},
			{
				Name:  "serve",
				Usage: "Serve the validation API over HTTP",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "addr",
						Value:   ":8080",
						Sources: cli.EnvVars("VALIDATE_JSON_SCHEMA_ADDR"),
						Usage:   "HTTP listen address",
					},
				},
				Action: runServe,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		var failed *domain.ValidationFailedError
		if errors.As(err, &failed) {
			fmt.Fprintf(os.Stderr, "Validation failed: %s\n", failed.Result.Message())
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

func configFrom(c *cli.Command) (app.Config, error) {
	cfg := app.Config{
		CacheDir:  c.String("cache-dir"),
		UserAgent: "validate-json-schema/" + version,
	}
	if cfg.CacheDir == "" {
		dir, err := filecache.DefaultDir()
		if err != nil {
			return app.Config{}, err
		}
		cfg.CacheDir = dir
	}
	if !c.Bool("no-state") {
		cfg.StateDBPath = c.String("state-db")
		if cfg.StateDBPath == "" {
			path, err := filecache.DefaultStatePath()
			if err != nil {
				return app.Config{}, err
			}
			cfg.StateDBPath = path
		}
	}
	return cfg, nil
}

func openEngine(ctx context.Context, c *cli.Command) (*app.Engine, func(), error) {
	cfg, err := configFrom(c)
	if err != nil {
		return nil, nil, err
	}
	engine, err := app.Open(ctx, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("open engine: %w", err)
	}
	return engine, func() {
		if closeErr := engine.Close(); closeErr != nil {
			log.Printf("close resources: %v", closeErr)
		}
	}, nil
}

func runValidate(ctx context.Context, c *cli.Command) error {
	if c.Args().Len() != 2 {
		return errUsage
	}
	file, schema := c.Args().Get(0), c.Args().Get(1)
	verbose := c.Bool("verbose")
	out := c.Root().Writer

	engine, closeEngine, err := openEngine(ctx, c)
	if err != nil {
		return err
	}
	defer closeEngine()

	if verbose {
		if domain.ClassifySchemaInput(schema) == domain.SchemaSourceRemote {
			fmt.Fprintf(out, "Using remote schema: %s\n", schema)
		} else {
			fmt.Fprintf(out, "Using local schema: %s\n", schema)
		}
		fmt.Fprintf(out, "Validating file: %s\n", file)
	}

	report, err := engine.Validation.ValidateFile(ctx, file, schema)
	if verbose && report.Format != "" {
		fmt.Fprintf(out, "File type: %s\n", formatLabel(report.Format, report.FormatOrigin))
	}
	if err != nil {
		return err
	}

	if verbose {
		fmt.Fprintln(out, "Validation successful!")
	} else {
		fmt.Fprintln(out, "Valid")
	}
	return nil
}

func formatLabel(format domain.Format, origin domain.FormatOrigin) string {
	if origin == domain.OriginContent {
		return format.Label() + " (auto-detected)"
	}
	return format.Label()
}

func runClearCache(ctx context.Context, c *cli.Command) error {
	engine, closeEngine, err := openEngine(ctx, c)
	if err != nil {
		return err
	}
	defer closeEngine()

	if err := engine.Cache.Clear(ctx); err != nil {
		return fmt.Errorf("clearing cache: %w", err)
	}
	fmt.Fprintln(c.Root().Writer, "Schema cache cleared successfully")
	return nil
}

func runCacheList(ctx context.Context, c *cli.Command) error {
	engine, closeEngine, err := openEngine(ctx, c)
	if err != nil {
		return err
	}
	defer closeEngine()

	entries, err := engine.Cache.List(ctx)
	if err != nil {
		return err
	}

	out := c.Root().Writer
	fmt.Fprintf(out, "Cache directory: %s\n", engine.Cache.Dir())
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "URL\tKEY\tBYTES\tFETCHED\tSTATUS")
	for _, e := range entries {
		status := "cached"
		if !e.Present {
			status = "missing"
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\n", e.URL, e.Key, e.SizeBytes, e.FetchedAt.Local().Format(time.DateTime), status)
	}
	return tw.Flush()
}

func runHistory(ctx context.Context, c *cli.Command) error {
	engine, closeEngine, err := openEngine(ctx, c)
	if err != nil {
		return err
	}
	defer closeEngine()

	runs, err := engine.Validation.History(ctx, domain.RunFilter{
		Limit:      int(c.Int("limit")),
		OnlyFailed: c.Bool("failed"),
	})
	if err != nil {
		return err
	}
	writeRuns(c.Root().Writer, runs)
	return nil
}

func writeRuns(out io.Writer, runs []domain.ValidationRun) {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "WHEN\tRESULT\tFILE\tSCHEMA\tDETAIL")
	for _, run := range runs {
		result := "valid"
		if !run.Valid {
			result = string(run.ErrorKind)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", run.CreatedAt.Local().Format(time.DateTime), result, run.DocumentPath, run.SchemaInput, run.Message)
	}
	_ = tw.Flush()
}

func runServe(ctx context.Context, c *cli.Command) error {
	engine, closeEngine, err := openEngine(ctx, c)
	if err != nil {
		return err
	}
	defer closeEngine()

	addr := c.String("addr")
	server := app.NewServer(engine, addr)

	errCh := make(chan error, 1)
	go func() {
		log.Printf("listening on %s", addr)
		errCh <- server.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	case sig := <-sigCh:
		log.Printf("received signal %s", sig)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
