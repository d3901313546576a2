package cmd

import (
	"fmt"

	"github.com/AsterZephyr/screego-client/settings"
	"github.com/urfave/cli/v2"
)

func settingsCmd() *cli.Command {
	return &cli.Command{
		Name:  "settings",
		Usage: "show the saved preferences",
		Action: func(c *cli.Context) error {
			store, err := openSettings()
			if err != nil {
				return err
			}
			printSettings(c.App.Writer, store.Keys(), store.Value)
			return nil
		},
		Subcommands: []*cli.Command{
			{
				Name:      "set",
				Usage:     "change a preference",
				ArgsUsage: "<key> <value>",
				Action: func(c *cli.Context) error {
					if c.NArg() != 2 {
						return cli.Exit("usage: settings set <key> <value>", 1)
					}
					store, err := openSettings()
					if err != nil {
						return err
					}
					key := c.Args().Get(0)
					if !contains(store.Keys(), key) {
						return fmt.Errorf("unknown setting %q", key)
					}
					if err := store.Set(key, c.Args().Get(1)); err != nil {
						return err
					}
					_, err = store.Settings()
					return err
				},
			},
		},
	}
}

func openSettings() (*settings.Store, error) {
	conf := setup()
	return settings.Open(conf.SettingsFile)
}

func contains(keys []string, key string) bool {
	for _, k := range keys {
		if k == key {
			return true
		}
	}
	return false
}
