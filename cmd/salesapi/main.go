// Command salesapi serves the stores / items / sales reporting API and
// carries the maintenance commands that go with it.
//
//	salesapi serve                 run the HTTP server
//	salesapi migrate               create or update the schema
//	salesapi seed --file seed.json upsert stores and items
//
// Configuration comes from the environment, optionally pre-filled from a
// dotenv file (--env-file, default ".env").
//
// @title          Sales API
// @version        1.0
// @description    Stores, items and sales with rolling 30-day top-N reports.
// @BasePath       /
package main

import (
	"os"
	"sort"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"github.com/tbourn/go-sales-api/internal/config"
	"github.com/tbourn/go-sales-api/internal/sysutil"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

const configKey = "config"

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal().Err(err).Msg("salesapi")
	}
}

func newApp() *cli.App {
	app := &cli.App{
		Name:    "salesapi",
		Usage:   "stores, items and sales reporting API",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "env-file",
				Aliases: []string{"e"},
				Usage:   "dotenv file loaded before reading the environment",
				EnvVars: []string{"ENV_FILE"},
				Value:   ".env",
			},
		},
		Before: loadConfig,
		Commands: []*cli.Command{
			serveCommand(),
			migrateCommand(),
			seedCommand(),
		},
	}
	sort.Sort(cli.FlagsByName(app.Flags))
	sort.Sort(cli.CommandsByName(app.Commands))
	return app
}

// loadConfig reads the dotenv file and the environment, then installs the
// global logger. The result is stashed in the app metadata for commands.
func loadConfig(c *cli.Context) error {
	if err := config.LoadEnvFile(c.String("env-file")); err != nil {
		return err
	}
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	sysutil.SetupLogger(os.Stdout, cfg.LogLevel, cfg.LogPretty, cfg.OTEL.ServiceName)

	if c.App.Metadata == nil {
		c.App.Metadata = map[string]interface{}{}
	}
	c.App.Metadata[configKey] = cfg
	return nil
}

func configFrom(c *cli.Context) config.Config {
	cfg, _ := c.App.Metadata[configKey].(config.Config)
	return cfg
}
