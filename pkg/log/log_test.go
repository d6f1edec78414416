package log_test

import (
	"context"
	"testing"

	"github.com/Garee/todoist/pkg/log"
)

func TestInit(t *testing.T) {
	tests := []struct {
		name string
		cfg  log.ZapConfig
	}{
		{name: "Defaults", cfg: log.ZapConfig{}},
		{name: "Production", cfg: log.ZapConfig{Level: "info", Mode: "production", Encoding: "json"}},
		{name: "ConsoleColor", cfg: log.ZapConfig{Level: "debug", Encoding: "console", ColorEnabled: true}},
		{name: "BadLevelFallsBack", cfg: log.ZapConfig{Level: "nonsense"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			logger := log.Init(tc.cfg)
			if logger == nil {
				t.Fatal("expected a logger")
			}
			logger.Debugf(context.Background(), "init %s", tc.name)
		})
	}
}

func TestNewNop(t *testing.T) {
	logger := log.NewNop()
	logger.Info(context.Background(), "discarded")
	logger.Errorf(context.Background(), "also discarded: %d", 1)
}
