package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/taproom/pkg/cli/config"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "taproom.toml")
	gt.NoError(t, os.WriteFile(path, []byte(content), 0o600)).Required()
	return path
}

func TestLoadAppConfiguration(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr error
		check   func(t *testing.T, cfg *config.AppConfig)
	}{
		{
			name: "valid source section",
			content: `
[source]
url = "http://localhost:9999/beers"
default_count = 5
max_count = 20
`,
			check: func(t *testing.T, cfg *config.AppConfig) {
				gt.Value(t, cfg.Source.URL).Equal("http://localhost:9999/beers")
				gt.Value(t, cfg.Source.DefaultCount).Equal(5)
				gt.Value(t, cfg.Source.MaxCount).Equal(20)
			},
		},
		{
			name:    "empty file uses defaults",
			content: ``,
			check: func(t *testing.T, cfg *config.AppConfig) {
				gt.Value(t, cfg.Source).Equal(config.SourceConfig{})
			},
		},
		{
			name:    "broken TOML",
			content: `[source`,
			wantErr: config.ErrInvalidConfig,
		},
		{
			name: "negative max_count",
			content: `
[source]
max_count = -1
`,
			wantErr: config.ErrInvalidConfig,
		},
		{
			name: "default_count above max_count",
			content: `
[source]
default_count = 50
max_count = 10
`,
			wantErr: config.ErrInvalidConfig,
		},
		{
			name: "relative url",
			content: `
[source]
url = "beers"
`,
			wantErr: config.ErrInvalidConfig,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := config.LoadAppConfiguration(writeConfig(t, tt.content))
			if tt.wantErr != nil {
				gt.Error(t, err)
				gt.Bool(t, errors.Is(err, tt.wantErr)).True()
				return
			}
			gt.NoError(t, err).Required()
			tt.check(t, cfg)
		})
	}
}

func TestLoadAppConfigurationMissingFile(t *testing.T) {
	_, err := config.LoadAppConfiguration(filepath.Join(t.TempDir(), "missing.toml"))
	gt.Bool(t, errors.Is(err, config.ErrConfigNotFound)).True()
}

func TestAppConfigConfigure(t *testing.T) {
	cfg, err := config.NewAppConfigForTest("").Configure()
	gt.NoError(t, err).Required()
	gt.Value(t, cfg.Source.MaxCount).Equal(0)

	path := writeConfig(t, "[source]\nmax_count = 7\n")
	cfg, err = config.NewAppConfigForTest(path).Configure()
	gt.NoError(t, err).Required()
	gt.Value(t, cfg.Source.MaxCount).Equal(7)
}
