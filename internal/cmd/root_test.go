package cmd

import (
	"testing"

	"github.com/runger/seek/internal/config"
)

func TestRootCmd_Metadata(t *testing.T) {
	if rootCmd.Use != "seek" {
		t.Errorf("Expected Use=seek, got %q", rootCmd.Use)
	}
	if rootCmd.RunE == nil {
		t.Error("Expected root command to run the search TUI directly")
	}
}

func TestRootCmd_RegistersSubcommands(t *testing.T) {
	expected := []string{"version", "history", "clicks", "config"}

	for _, name := range expected {
		found := false
		for _, c := range rootCmd.Commands() {
			if c.Name() == name {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("Expected subcommand %q to be registered", name)
		}
	}
}

func TestRootCmd_SearchFlags(t *testing.T) {
	expectedFlags := []string{
		"count",
		"country",
		"lang",
		"safesearch",
		"freshness",
		"result-filter",
		"no-history",
	}

	for _, name := range expectedFlags {
		if rootCmd.Flags().Lookup(name) == nil {
			t.Errorf("Expected flag --%s to be registered", name)
		}
	}
}

func TestRootCmd_ConfigFlagIsPersistent(t *testing.T) {
	if rootCmd.PersistentFlags().Lookup("config") == nil {
		t.Error("Expected persistent flag --config to be registered")
	}
}

func TestApplySearchFlags_Overrides(t *testing.T) {
	t.Cleanup(func() {
		rootCmd.Flags().Lookup("count").Changed = false
		rootCmd.Flags().Lookup("safesearch").Changed = false
		flagCount = 0
		flagSafeSearch = ""
	})

	if err := rootCmd.Flags().Set("count", "5"); err != nil {
		t.Fatalf("Set(count) error = %v", err)
	}
	if err := rootCmd.Flags().Set("safesearch", "strict"); err != nil {
		t.Fatalf("Set(safesearch) error = %v", err)
	}

	cfg := config.DefaultConfig()
	if err := applySearchFlags(rootCmd, cfg); err != nil {
		t.Fatalf("applySearchFlags() error = %v", err)
	}

	if cfg.Search.Count != 5 {
		t.Errorf("Expected count=5, got %d", cfg.Search.Count)
	}
	if cfg.Search.SafeSearch != "strict" {
		t.Errorf("Expected safesearch=strict, got %q", cfg.Search.SafeSearch)
	}
}

func TestApplySearchFlags_InvalidValueRejected(t *testing.T) {
	t.Cleanup(func() {
		rootCmd.Flags().Lookup("safesearch").Changed = false
		flagSafeSearch = ""
	})

	if err := rootCmd.Flags().Set("safesearch", "sometimes"); err != nil {
		t.Fatalf("Set(safesearch) error = %v", err)
	}

	cfg := config.DefaultConfig()
	if err := applySearchFlags(rootCmd, cfg); err == nil {
		t.Error("Expected error for invalid safesearch value")
	}
}

func TestApplySearchFlags_UnchangedFlagsKeepConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Search.Count = 7
	cfg.Search.Country = "DE"

	if err := applySearchFlags(rootCmd, cfg); err != nil {
		t.Fatalf("applySearchFlags() error = %v", err)
	}

	if cfg.Search.Count != 7 {
		t.Errorf("Unchanged flag should not override config, got count=%d", cfg.Search.Count)
	}
	if cfg.Search.Country != "DE" {
		t.Errorf("Unchanged flag should not override config, got country=%q", cfg.Search.Country)
	}
}

func TestSearchOptions_FromConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Search.APIKey = "token"
	cfg.Search.Count = 10
	cfg.Search.Freshness = "pw"

	opts := searchOptions(cfg)

	if opts.APIKey != "token" {
		t.Errorf("Expected APIKey=token, got %q", opts.APIKey)
	}
	if opts.Count != 10 {
		t.Errorf("Expected Count=10, got %d", opts.Count)
	}
	if opts.Freshness != "pw" {
		t.Errorf("Expected Freshness=pw, got %q", opts.Freshness)
	}
	if opts.UserAgent != cfg.Search.UserAgent {
		t.Errorf("Expected UserAgent from config, got %q", opts.UserAgent)
	}
}

func TestConfigFilePath_Override(t *testing.T) {
	orig := flagConfig
	t.Cleanup(func() { flagConfig = orig })

	paths := config.DefaultPaths()

	flagConfig = ""
	if got := configFilePath(paths); got != paths.ConfigFile() {
		t.Errorf("Expected default config path %q, got %q", paths.ConfigFile(), got)
	}

	flagConfig = "/tmp/custom.yaml"
	if got := configFilePath(paths); got != "/tmp/custom.yaml" {
		t.Errorf("Expected override path, got %q", got)
	}
}
