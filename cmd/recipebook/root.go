package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hammamikhairi/recipebook/internal/catalog"
	"github.com/hammamikhairi/recipebook/internal/config"
	"github.com/hammamikhairi/recipebook/internal/domain"
	"github.com/hammamikhairi/recipebook/internal/engine"
	"github.com/hammamikhairi/recipebook/internal/logger"
	"github.com/hammamikhairi/recipebook/internal/storage"
)

// rootOptions holds global flags for all commands.
type rootOptions struct {
	configPath string
	lang       string
	location   string
	verbose    bool
	quiet      bool
	plain      bool
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "recipebook",
		Short:         "Browse, rate and share recipes",
		Long:          "A personal recipe catalog with recommendations, filters and shareable links.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBrowse(cmd.Context(), opts, false)
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "config file (default: $RECIPEBOOK_CONFIG or ./recipebook.yaml)")
	cmd.PersistentFlags().StringVarP(&opts.lang, "lang", "l", "", "catalog language")
	cmd.PersistentFlags().StringVar(&opts.location, "location", "", "start from a location query, e.g. \"filter=meal:middag&search=laks\"")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")
	cmd.PersistentFlags().BoolVarP(&opts.quiet, "quiet", "q", false, "disable all logging")
	cmd.PersistentFlags().BoolVar(&opts.plain, "plain", false, "disable colors")

	cmd.AddCommand(newBrowseCommand(opts))
	cmd.AddCommand(newListCommand(opts))
	cmd.AddCommand(newShowCommand(opts))
	cmd.AddCommand(newFiltersCommand(opts))
	cmd.AddCommand(newRateCommand(opts))
	cmd.AddCommand(newMadeCommand(opts))
	cmd.AddCommand(newTagCommand(opts))
	cmd.AddCommand(newLinkCommand(opts))

	return cmd
}

// runtime is everything a command needs besides the app itself.
type runtime struct {
	cfg     *config.Config
	log     *logger.Logger
	kv      domain.KVStore
	loader  *catalog.Loader
	closers []func()
}

// setup loads the config and opens logging and storage. interactive
// sends logs to a file so the prompt stays clean.
func setup(opts *rootOptions, interactive bool) (*runtime, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, err
	}
	rt := &runtime{cfg: cfg}

	level := logger.ParseLevel(cfg.Log.Level)
	if opts.verbose {
		level = logger.LevelVerbose
	}
	if opts.quiet {
		level = logger.LevelOff
	}

	logFile := cfg.Log.File
	if logFile == "" && interactive {
		logFile = filepath.Join(".recipebook-logs", "recipebook.log")
	}
	var logOut io.Writer = os.Stderr
	if logFile != "" && logFile != "stderr" {
		if dir := filepath.Dir(logFile); dir != "." {
			_ = os.MkdirAll(dir, 0o755)
		}
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not open log file %s: %v (falling back to stderr)\n", logFile, err)
		} else {
			logOut = f
			rt.closers = append(rt.closers, func() { f.Close() })
		}
	}
	rt.log = logger.NewWithFormat(level, logOut, logger.Format(cfg.Log.Format))

	kv, err := storage.Open(cfg.Store.Backend, cfg.Store.Path, rt.log.With("storage"))
	if err != nil {
		rt.close()
		return nil, fmt.Errorf("opening %s store: %w", cfg.Store.Backend, err)
	}
	rt.kv = kv
	rt.closers = append(rt.closers, func() {
		if err := kv.Close(); err != nil {
			rt.log.Error("closing store: %v", err)
		}
	})

	rt.loader = catalog.NewLoader(os.DirFS(cfg.DataDir), cfg.DefaultLanguage, cfg.Languages, rt.log.With("catalog"))
	return rt, nil
}

// close releases resources in reverse order.
func (rt *runtime) close() {
	for i := len(rt.closers) - 1; i >= 0; i-- {
		rt.closers[i]()
	}
}

// newApp builds the application context for query.
func (rt *runtime) newApp(ctx context.Context, query string, deps engine.Deps) (*engine.App, error) {
	deps.Loader = rt.loader
	deps.KV = rt.kv
	deps.Log = rt.log
	return engine.New(ctx, deps, query,
		engine.WithViewDebounce(rt.cfg.Timing.ViewDebounce),
		engine.WithResortDelay(rt.cfg.Timing.ResortDebounce),
		engine.WithBaseURL(rt.cfg.BaseURL),
		engine.WithCollation(rt.cfg.CollationTag),
	)
}

// initialQuery combines --location and --lang. An explicit --lang wins
// over a lang parameter in the location.
func initialQuery(opts *rootOptions) string {
	q := strings.TrimPrefix(strings.TrimSpace(opts.location), "?")
	if opts.lang == "" {
		return q
	}
	var kept []string
	for _, part := range strings.Split(q, "&") {
		if part != "" && !strings.HasPrefix(part, "lang=") {
			kept = append(kept, part)
		}
	}
	return strings.Join(append([]string{"lang=" + opts.lang}, kept...), "&")
}

// resolveRecipe finds a recipe by id or title without opening it.
func resolveRecipe(cat *catalog.Catalog, ref string) (*domain.Recipe, error) {
	if r, err := cat.Get(ref); err == nil {
		return r, nil
	}
	return cat.FindByTitle(ref)
}
