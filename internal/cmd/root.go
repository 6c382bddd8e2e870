// Package cmd implements the CLI commands for seek.
package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/user"
	"strconv"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"

	"github.com/runger/seek/internal/auditlog"
	"github.com/runger/seek/internal/brave"
	"github.com/runger/seek/internal/browser"
	"github.com/runger/seek/internal/clickstore"
	"github.com/runger/seek/internal/config"
	"github.com/runger/seek/internal/logging"
	"github.com/runger/seek/internal/session"
	"github.com/runger/seek/internal/storage"
	"github.com/runger/seek/internal/tui"
)

// Command groups shown in help output.
const (
	groupCore  = "core"
	groupSetup = "setup"
)

var (
	flagConfig       string
	flagCount        int
	flagCountry      string
	flagLang         string
	flagSafeSearch   string
	flagFreshness    string
	flagResultFilter string
	flagNoHistory    bool
)

var rootCmd = &cobra.Command{
	Use:   "seek",
	Short: "interactive web search with click memory",
	Long: `seek - interactive web search for the terminal
  - type a query, browse results, Enter opens your browser
  - results you already opened stay hidden next time`,
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	RunE:         runRoot,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddGroup(
		&cobra.Group{ID: groupCore, Title: "Core Commands:"},
		&cobra.Group{ID: groupSetup, Title: "Setup Commands:"},
	)

	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "config file (default ~/.config/seek/config.yaml)")

	rootCmd.Flags().IntVar(&flagCount, "count", 0, "results per page (1-20)")
	rootCmd.Flags().StringVar(&flagCountry, "country", "", "two-letter country code")
	rootCmd.Flags().StringVar(&flagLang, "lang", "", "result language")
	rootCmd.Flags().StringVar(&flagSafeSearch, "safesearch", "", "off, moderate, or strict")
	rootCmd.Flags().StringVar(&flagFreshness, "freshness", "", "pd, pw, pm, py, or a YYYY-MM-DDtoYYYY-MM-DD range")
	rootCmd.Flags().StringVar(&flagResultFilter, "result-filter", "", "comma-separated result types")
	rootCmd.Flags().BoolVar(&flagNoHistory, "no-history", false, "do not record searches to the local database")
}

func runRoot(cmd *cobra.Command, args []string) error {
	cfg, paths, err := loadConfig()
	if err != nil {
		return err
	}

	if err := applySearchFlags(cmd, cfg); err != nil {
		return err
	}

	// Fail before touching the network or the data directory.
	if cfg.Search.APIKey == "" {
		return brave.ErrMissingAPIKey
	}

	if err := paths.EnsureDirectories(); err != nil {
		return fmt.Errorf("failed to create data directories: %w", err)
	}

	// The terminal belongs to Bubble Tea from here on, so logs go to a file.
	logger, logFile, err := logging.NewFileLogger(cfg.LogFilePath(paths), logging.ParseLevel(cfg.Log.Level))
	if err != nil {
		return err
	}
	defer logFile.Close()

	clicks := clickstore.Load(cfg.ClickStorePath(paths), logger)
	audit := auditlog.New(cfg.AuditLogPath(paths))

	opts := tui.Options{
		RecallLimit: cfg.History.RecallLimit,
		Version:     Version,
		Logger:      logger,
	}

	if cfg.History.Enabled && !flagNoHistory {
		store, err := storage.NewSQLiteStore(cfg.DatabasePath(paths))
		if err != nil {
			// History is an amenity; searching works without it.
			logger.Warn("failed to open history database", "path", cfg.DatabasePath(paths), "error", err)
		} else {
			defer store.Close()
			sessionID, err := startSession(store)
			if err != nil {
				logger.Warn("failed to create session", "error", err)
			} else {
				opts.History = store
				opts.SessionID = sessionID
				defer endSession(store, sessionID, logger)
			}
		}
	}

	client := brave.NewClient(searchOptions(cfg), logger)
	ctrl := session.NewController(clicks, audit, browser.Open, logger)
	model := tui.NewModel(ctrl, client, opts)

	// Stdout may be redirected; let termenv decide from the environment
	// so NO_COLOR and friends are honored.
	lipgloss.SetColorProfile(termenv.EnvColorProfile())

	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	return nil
}

// loadConfig loads the config file, honoring the --config override.
func loadConfig() (*config.Config, *config.Paths, error) {
	paths := config.DefaultPaths()
	cfg, err := config.LoadFromFile(configFilePath(paths))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, paths, nil
}

func configFilePath(paths *config.Paths) string {
	if flagConfig != "" {
		return flagConfig
	}
	return paths.ConfigFile()
}

// applySearchFlags copies explicitly set flags over the configured values.
// Values go through Config.Set so flag input is validated the same way as
// the config file.
func applySearchFlags(cmd *cobra.Command, cfg *config.Config) error {
	flags := []struct {
		name  string
		key   string
		value func() string
	}{
		{"count", "search.count", func() string { return strconv.Itoa(flagCount) }},
		{"country", "search.country", func() string { return flagCountry }},
		{"lang", "search.search_lang", func() string { return flagLang }},
		{"safesearch", "search.safesearch", func() string { return flagSafeSearch }},
		{"freshness", "search.freshness", func() string { return flagFreshness }},
		{"result-filter", "search.result_filter", func() string { return flagResultFilter }},
	}

	for _, f := range flags {
		if !cmd.Flags().Changed(f.name) {
			continue
		}
		if err := cfg.Set(f.key, f.value()); err != nil {
			return fmt.Errorf("--%s: %w", f.name, err)
		}
	}

	return nil
}

func searchOptions(cfg *config.Config) brave.Options {
	return brave.Options{
		APIKey:       cfg.Search.APIKey,
		Endpoint:     cfg.Search.Endpoint,
		Count:        cfg.Search.Count,
		Country:      cfg.Search.Country,
		SearchLang:   cfg.Search.SearchLang,
		SafeSearch:   cfg.Search.SafeSearch,
		Freshness:    cfg.Search.Freshness,
		ResultFilter: cfg.Search.ResultFilter,
		UserAgent:    cfg.Search.UserAgent,
	}
}

// startSession records the start of an interactive run and returns its ID.
func startSession(store *storage.SQLiteStore) (string, error) {
	hostname, _ := os.Hostname()
	username := ""
	if u, err := user.Current(); err == nil {
		username = u.Username
	}

	sess := &storage.Session{
		SessionID:       uuid.New().String(),
		StartedAtUnixMs: time.Now().UnixMilli(),
		Hostname:        hostname,
		Username:        username,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := store.CreateSession(ctx, sess); err != nil {
		return "", err
	}
	return sess.SessionID, nil
}

func endSession(store *storage.SQLiteStore, sessionID string, logger *slog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := store.EndSession(ctx, sessionID, time.Now().UnixMilli()); err != nil {
		logger.Warn("failed to end session", "session_id", sessionID, "error", err)
	}
}
