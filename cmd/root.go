package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	zone "github.com/lrstanley/bubblezone"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/rcastell/wheelhouse/internal/app"
	"github.com/rcastell/wheelhouse/internal/backend"
	"github.com/rcastell/wheelhouse/internal/config"
	"github.com/rcastell/wheelhouse/internal/docs"
	"github.com/rcastell/wheelhouse/internal/keys"
	"github.com/rcastell/wheelhouse/internal/log"
	"github.com/rcastell/wheelhouse/internal/projects"
	"github.com/rcastell/wheelhouse/internal/store"
	"github.com/rcastell/wheelhouse/internal/tracing"
	"github.com/rcastell/wheelhouse/internal/transport"
	"github.com/rcastell/wheelhouse/internal/ui/styles"
)

// requestTimeout bounds each backend HTTP request end to end.
const requestTimeout = 10 * time.Second

func init() {
	// Force lipgloss/termenv to query terminal background color BEFORE
	// any Bubble Tea program starts. This prevents the terminal's OSC 11
	// response from racing with Bubble Tea's input loop and appearing as
	// garbage text in input fields.
	//
	// See: https://github.com/charmbracelet/bubbletea/issues/1036
	_ = lipgloss.HasDarkBackground()
}

var (
	version = "dev"
	cfgFile string
	cfg     config.Config
)

var rootCmd = &cobra.Command{
	Use:     "wheelhouse",
	Short:   "A terminal dashboard for your project flow",
	Long:    `A terminal dashboard shell that keeps your projects, their sections, and the backend's health one keystroke away.`,
	Version: version,
	RunE:    runApp,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"config file (default: ~/.config/wheelhouse/config.yaml)")
	rootCmd.Flags().StringP("server", "s", "",
		"backend base URL")
	rootCmd.Flags().Bool("debug", false,
		"verbose logging and the ctrl+x log overlay")

	// Bind flags to viper
	_ = viper.BindPFlag("server.base_url", rootCmd.Flags().Lookup("server"))
}

func initConfig() {
	defaults := config.Defaults()
	viper.SetDefault("server.base_url", defaults.Server.BaseURL)
	viper.SetDefault("server.transport_url", defaults.Server.TransportURL)
	viper.SetDefault("state.path", defaults.State.Path)
	viper.SetDefault("docs.dir", defaults.Docs.Dir)
	viper.SetDefault("log.file", defaults.Log.File)
	viper.SetDefault("tracing.enabled", defaults.Tracing.Enabled)
	viper.SetDefault("tracing.exporter", defaults.Tracing.Exporter)
	viper.SetDefault("tracing.file_path", defaults.Tracing.FilePath)
	viper.SetDefault("tracing.otlp_endpoint", defaults.Tracing.OTLPEndpoint)
	viper.SetDefault("tracing.sample_rate", defaults.Tracing.SampleRate)

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		// Config lookup order:
		// 1. .wheelhouse/config.yaml (current directory)
		// 2. ~/.config/wheelhouse/config.yaml (user config)
		if _, err := os.Stat(".wheelhouse/config.yaml"); err == nil {
			viper.SetConfigFile(".wheelhouse/config.yaml")
		} else {
			home, _ := os.UserHomeDir()
			viper.AddConfigPath(filepath.Join(home, ".config", "wheelhouse"))
			viper.SetConfigName("config")
			viper.SetConfigType("yaml")
		}
	}

	if err := viper.ReadInConfig(); err != nil {
		// No config file found anywhere - create default at .wheelhouse/config.yaml
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			defaultPath := ".wheelhouse/config.yaml"
			if writeErr := config.WriteDefaultConfig(defaultPath); writeErr == nil {
				viper.SetConfigFile(defaultPath)
				_ = viper.ReadInConfig()
			}
			// If write fails, just continue with defaults (no config file)
		}
	}

	_ = viper.Unmarshal(&cfg)
}

func runApp(cmd *cobra.Command, args []string) error {
	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	styles.ApplyTheme(cfg.Theme.Highlight, cfg.Theme.Subtle, cfg.Theme.Error, cfg.Theme.Success)

	debugMode, _ := cmd.Flags().GetBool("debug")

	if cfg.Log.File != "" {
		cleanup, err := log.Init(cfg.Log.File, 0)
		if err != nil {
			return fmt.Errorf("opening log file: %w", err)
		}
		defer cleanup()
	}
	if !debugMode {
		log.SetMinLevel(log.LevelInfo)
	}
	log.Info(log.CatConfig, "Starting", "version", version, "config", viper.ConfigFileUsed())

	provider, err := tracing.NewProvider(tracing.Config{
		Enabled:      cfg.Tracing.Enabled,
		Exporter:     cfg.Tracing.Exporter,
		FilePath:     cfg.Tracing.FilePath,
		OTLPEndpoint: cfg.Tracing.OTLPEndpoint,
		SampleRate:   cfg.Tracing.SampleRate,
	})
	if err != nil {
		return fmt.Errorf("initializing tracing: %w", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := provider.Shutdown(ctx); err != nil {
			log.ErrorErr(log.CatTracing, "Failed to flush traces", err)
		}
	}()

	statePath := cfg.State.Path
	if statePath == "" {
		statePath = config.DefaultStatePath()
	}
	if statePath == "" {
		return fmt.Errorf("cannot determine state database location; set state.path in the config")
	}

	st, err := store.Open(statePath, provider.Tracer())
	if err != nil {
		return fmt.Errorf("opening state database: %w", err)
	}

	client := backend.New(cfg.Server.BaseURL, requestTimeout, provider.Tracer())
	push := transport.NewClient(cfg.Server.TransportURL, provider.Tracer())
	directory := projects.NewService(client, projects.DefaultTTL)
	docsService := docs.NewService(cfg.Docs.Dir)

	model := app.New(app.Config{
		Store:     st,
		Prober:    client,
		Transport: push,
		Projects:  directory,
		Docs:      docsService,
		Keys:      keys.DefaultKeyMap(),
		DebugMode: debugMode,
	})

	zone.NewGlobal()
	p := tea.NewProgram(
		&model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	_, err = p.Run()

	// Clean up background listeners and the docs watcher
	if closeErr := model.Close(); closeErr != nil && err == nil {
		err = closeErr
	}
	if closeErr := st.Close(); closeErr != nil && err == nil {
		err = closeErr
	}

	if err != nil {
		return fmt.Errorf("running program: %w", err)
	}
	return nil
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// SetVersion sets the version string (called from main with ldflags)
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}
