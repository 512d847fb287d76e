package config_test

import (
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/taproom/pkg/cli/config"
	"github.com/secmon-lab/taproom/pkg/service/generator"
)

func TestSourceConfigure(t *testing.T) {
	app := &config.AppConfig{Source: config.SourceConfig{URL: "http://file.example/beers"}}

	t.Run("flag wins over file", func(t *testing.T) {
		client := config.NewSourceForTest("http://flag.example/beers", 0, false).Configure(app)
		gt.Value(t, client.URL()).Equal("http://flag.example/beers")
	})

	t.Run("file is used when flag is empty", func(t *testing.T) {
		client := config.NewSourceForTest("", 0, true).Configure(app)
		gt.Value(t, client.URL()).Equal("http://file.example/beers")
	})

	t.Run("public feed by default", func(t *testing.T) {
		client := config.NewSourceForTest("", 0, false).Configure(nil)
		gt.Value(t, client.URL()).Equal(generator.DefaultURL)
	})
}
