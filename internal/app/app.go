// Package app wires configuration, the external service clients, and the
// HTTP server into the primerool command-line application.
package app

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/KowalskiBio/Primerool/core/oracle"
	"github.com/KowalskiBio/Primerool/core/thermo"
	"github.com/KowalskiBio/Primerool/internal/blast"
	"github.com/KowalskiBio/Primerool/internal/config"
	"github.com/KowalskiBio/Primerool/internal/ensembl"
	"github.com/KowalskiBio/Primerool/internal/server"
	"github.com/KowalskiBio/Primerool/pkg/api"
)

// Version is stamped by the build; "dev" otherwise.
var Version = "dev"

// New creates the CLI application.
func New(stdout, stderr io.Writer) *cli.App {
	app := &cli.App{
		Name:      "primerool",
		Usage:     "qPCR primer design service: Ensembl-backed sequence retrieval, junction-aware design, BLAST identification",
		Version:   Version,
		Writer:    stdout,
		ErrWriter: stderr,
		Commands: []*cli.Command{
			serveCmd(stdout),
			analyzeCmd(stdout),
		},
	}
	return app
}

// Run executes the application and maps errors to an exit code.
func Run(argv []string, stdout, stderr io.Writer) int {
	if err := New(stdout, stderr).Run(argv); err != nil {
		fmt.Fprintln(stderr, "error:", err)
		return 1
	}
	return 0
}

func serveCmd(stdout io.Writer) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the HTTP API server",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "addr", Aliases: []string{"a"}, Usage: "Listen address (overrides PRIMEROOL_ADDR)"},
			&cli.StringFlag{Name: "log-level", Usage: "Log level: debug|info|warn|error"},
			&cli.BoolFlag{Name: "no-blast", Usage: "Disable the BLAST identification route"},
		},
		Action: func(c *cli.Context) error {
			cfg, err := config.FromEnv()
			if err != nil {
				return err
			}
			if addr := c.String("addr"); addr != "" {
				cfg.Addr = addr
			}
			if lvl := c.String("log-level"); lvl != "" {
				cfg.LogLevel = lvl
			}

			log, err := newLogger(stdout, cfg.LogLevel)
			if err != nil {
				return err
			}
			return serve(c.Context, cfg, log, !c.Bool("no-blast"))
		},
	}
}

func newLogger(w io.Writer, level string) (*slog.Logger, error) {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "info", "":
		lvl = slog.LevelInfo
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		return nil, fmt.Errorf("invalid log level %q", level)
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl})), nil
}

func serve(ctx context.Context, cfg config.Config, log *slog.Logger, withBlast bool) error {
	ec := ensembl.New(ensembl.Options{
		BaseURL:     cfg.EnsemblBaseURL,
		MinInterval: cfg.EnsemblInterval,
		CacheCap:    cfg.EnsemblCacheCap,
		Logger:      log,
	})
	annotate := func(species string) server.Annotator {
		return ec.ForSpecies(species)
	}

	var identify server.Identifier
	if withBlast {
		identify = blast.New(blast.Options{
			BaseURL:      cfg.BlastBaseURL,
			PollInterval: cfg.BlastPollInterval,
			MaxWait:      cfg.BlastPollTimeout,
			Logger:       log,
		})
	}

	orc := oracle.NewNative(thermo.DefaultConditions())
	srv := server.New(annotate, identify, orc, log)

	hs := &http.Server{
		Addr:              cfg.Addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 1)
	go func() {
		log.Info("listening", "addr", cfg.Addr, "blast", withBlast)
		errc <- hs.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return hs.Shutdown(shutdownCtx)
}

func analyzeCmd(stdout io.Writer) *cli.Command {
	return &cli.Command{
		Name:      "analyze",
		Usage:     "Analyze one or two oligos offline (Tm, GC%, hairpin, dimers)",
		ArgsUsage: "FORWARD [REVERSE]",
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 || c.NArg() > 2 {
				return fmt.Errorf("expected one or two oligo sequences")
			}
			orc := oracle.NewNative(thermo.DefaultConditions())

			var out api.AnalyzeResponseV1
			fwd, err := orc.Analyze(c.Args().Get(0))
			if err != nil {
				return fmt.Errorf("forward: %w", err)
			}
			f := api.OligoFromReport(fwd)
			out.Forward = &f

			if c.NArg() == 2 {
				rev, err := orc.Analyze(c.Args().Get(1))
				if err != nil {
					return fmt.Errorf("reverse: %w", err)
				}
				r := api.OligoFromReport(rev)
				out.Reverse = &r

				pair, err := orc.AnalyzePair(fwd.Sequence, rev.Sequence)
				if err != nil {
					return err
				}
				m := api.PairMetricsFromReport(pair)
				out.Pair = &m
			}

			enc := json.NewEncoder(stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		},
	}
}
