package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/automaxprocs/maxprocs"
	"go.uber.org/zap"

	"github.com/alnah/go-docpress/internal/config"
	"github.com/alnah/go-docpress/internal/hints"
)

// defaultConfigName is loaded when neither --config nor DOCPRESS_CONFIG is
// set. Its absence is not an error.
const defaultConfigName = "docpress"

// app is the state shared by the command tree.
type app struct {
	env    *Environment
	flags  commonFlags
	cfg    *config.Config
	cfgErr error
	logger *zap.Logger
}

func newRootCmd(env *Environment) *cobra.Command {
	a := &app{env: env, logger: zap.NewNop()}

	root := &cobra.Command{
		Use:   "docpress",
		Short: "Generate the PDF download library from documentation sources",
		Long: `docpress scans the source roots for Markdown, spreadsheets, slide decks,
web pages and PDFs, renders every tier, format and quality variant they
declare, and writes registry.json and manifest.json describing the result.

Unchanged sources are skipped, and an existing real artifact is never
replaced by a smaller fallback render.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return a.setup(true)
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			_ = a.logger.Sync()
		},
	}
	root.SetOut(env.Stdout)
	root.SetErr(env.Stderr)
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return fmt.Errorf("%w: %w", errUsage, err)
	})

	pf := root.PersistentFlags()
	pf.StringVarP(&a.flags.config, "config", "c", "", "config name or path (default: docpress.yaml when present)")
	pf.BoolVarP(&a.flags.verbose, "verbose", "v", false, "debug logging in console format")
	pf.BoolVar(&a.flags.quiet, "quiet", false, "log errors only and skip the summary")

	root.AddCommand(
		newGenerateCmd(a),
		newWatchCmd(a),
		newDoctorCmd(a),
		newVersionCmd(a),
	)
	return root
}

// setup loads .env, builds the logger and resolves the configuration.
// With strict false a config error is left for the caller to report.
func (a *app) setup(strict bool) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("loading .env: %w", err)
	}

	a.logger = newLogger(a.env.Stderr, a.flags.verbose, a.flags.quiet)
	// maxprocs.Set only fails on an invalid GOMAXPROCS env, in which case
	// runtime defaults apply.
	_, _ = maxprocs.Set(maxprocs.Logger(a.logger.Sugar().Debugf))

	if !a.flags.quiet {
		warnUnknownEnvVars(a.env.Stderr)
	}

	a.cfg, a.cfgErr = loadConfig(a.flags.config, loadEnvConfig())
	if strict {
		return a.cfgErr
	}
	return nil
}

// loadConfig resolves the config file, then applies environment overrides.
func loadConfig(name string, env *envConfig) (*config.Config, error) {
	if name == "" {
		name = env.ConfigPath
	}

	var cfg *config.Config
	var err error
	if name == "" {
		cfg, err = config.LoadConfig(defaultConfigName)
		if errors.Is(err, config.ErrConfigNotFound) {
			cfg, err = config.DefaultConfig(), nil
		}
	} else {
		cfg, err = config.LoadConfig(name)
		if errors.Is(err, config.ErrConfigNotFound) {
			err = fmt.Errorf("%w%s", err, hints.ForConfigNotFound(userConfigPaths(name)))
		}
	}
	if err != nil {
		return nil, err
	}

	applyEnvConfig(env, cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func userConfigPaths(name string) []string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return nil
	}
	return []string{filepath.Join(dir, "go-docpress", name+".yaml")}
}

func newVersionCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		// The version never needs a config.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		Run: func(*cobra.Command, []string) {
			fmt.Fprintf(a.env.Stdout, "docpress %s\n", Version)
		},
	}
}

// addGenerateFlags registers the generation flags on cmd.
func addGenerateFlags(cmd *cobra.Command, f *generateFlags) {
	fs := cmd.Flags()
	fs.SortFlags = false
	f.register(fs)
	_ = cmd.RegisterFlagCompletionFunc("only", cobra.NoFileCompletions)
}
