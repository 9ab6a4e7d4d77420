package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"codeberg.org/d-buckner/apppack/internal/appconfig"
	"codeberg.org/d-buckner/apppack/internal/config"
	"codeberg.org/d-buckner/apppack/internal/ios"
	"codeberg.org/d-buckner/apppack/internal/manifest"
	"codeberg.org/d-buckner/apppack/internal/platform"
	"codeberg.org/d-buckner/apppack/internal/plugin"
	"codeberg.org/d-buckner/apppack/internal/windows"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
)

// globalOptions are the persistent flags; empty values fall back to the
// APPPACK_* environment.
type globalOptions struct {
	projectDir   string
	configFile   string
	platformsDir string
	logLevel     string
	logFormat    string
}

func main() {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:   "apppack",
		Short: "Apply an app descriptor to native iOS and Windows projects",
		Long: `apppack reconciles native platform projects with a declarative app
descriptor (config.xml or app.yaml).

It rewrites manifest entries (appxmanifest, Info.plist), merges plugin
capabilities, and copies icons and splash screens into place. Every
command is idempotent.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&opts.projectDir, "project", "C", "", "Project directory (default $APPPACK_PROJECT_DIR or .)")
	flags.StringVar(&opts.configFile, "config", "", "Descriptor file (default <project>/config.xml)")
	flags.StringVar(&opts.platformsDir, "platforms", "", "Platforms directory (default <project>/platforms)")
	flags.StringVar(&opts.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	flags.StringVar(&opts.logFormat, "log-format", "", "Log format: json or text")

	rootCmd.AddCommand(
		prepareCmd(opts),
		cleanCmd(opts),
		configCmd(opts),
		versionCmd(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

// settings merges flags over the environment.
func (o *globalOptions) settings() *config.Config {
	cfg := config.Load()
	if o.projectDir != "" {
		cfg = cfg.WithProjectDir(o.projectDir)
	}
	if o.configFile != "" {
		cfg.ConfigFile = o.configFile
	}
	if o.platformsDir != "" {
		cfg.PlatformsDir = o.platformsDir
	}
	if o.logLevel != "" {
		cfg.LogLevel = config.ParseLevel(o.logLevel)
	}
	if o.logFormat != "" {
		cfg.LogFormat = o.logFormat
	}
	return cfg
}

// session is everything a platform command needs.
type session struct {
	project *platform.Project
	runner  *platform.Runner
	logger  *slog.Logger
}

func newSession(o *globalOptions) (*session, error) {
	cfg := o.settings()
	logger := cfg.NewLogger()
	slog.SetDefault(logger)

	app, err := appconfig.Read(cfg.ConfigFile)
	if err != nil {
		return nil, err
	}
	logger.Debug("loaded descriptor", "path", cfg.ConfigFile, "id", app.PackageID, "version", app.Version)

	plugins, err := plugin.LoadDir(cfg.PluginsDir, logger)
	if err != nil {
		return nil, err
	}

	root, err := filepath.Abs(cfg.ProjectDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve project dir: %w", err)
	}

	registry := platform.NewRegistry(logger)
	registry.Register(ios.NewPreparer(logger))
	registry.Register(windows.NewPreparer(logger))

	return &session{
		project: &platform.Project{
			Root:           root,
			PlatformsDir:   cfg.PlatformsDir,
			Config:         app,
			Plugins:        plugins,
			Manifests:      manifest.NewCache(logger),
			MaxSplashBytes: cfg.SplashMaxBytes,
		},
		runner: platform.NewRunner(registry, logger),
		logger: logger,
	}, nil
}
