package cmd

import (
	"testing"

	"github.com/runger/seek/internal/config"
)

func TestConfigCmd_KnownKeysListed(t *testing.T) {
	// The config command lists config.ListKeys(); the keys users reach for
	// most must be present.
	expected := []string{
		"search.api_key",
		"search.count",
		"search.safesearch",
		"history.enabled",
		"history.recall_limit",
		"log.level",
	}

	keys := config.ListKeys()
	for _, want := range expected {
		found := false
		for _, k := range keys {
			if k == want {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("Expected key %q to be in config keys", want)
		}
	}
}

func TestConfigCmd_AllListedKeysReadable(t *testing.T) {
	// Every listed key must round through Get without error, or listConfig
	// reports it as failed.
	cfg := config.DefaultConfig()

	for _, key := range config.ListKeys() {
		if _, err := cfg.Get(key); err != nil {
			t.Errorf("Get(%q) error = %v", key, err)
		}
	}
}

func TestConfigCmd_AcceptsAtMostTwoArgs(t *testing.T) {
	if err := configCmd.Args(configCmd, []string{"search.count", "10"}); err != nil {
		t.Errorf("Two arguments should be accepted, got error: %v", err)
	}
	if err := configCmd.Args(configCmd, []string{"a", "b", "c"}); err == nil {
		t.Error("Three arguments should be rejected")
	}
}
