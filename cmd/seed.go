package cmd

import (
	"fmt"

	"github.com/urfave/cli/v2"
)

func SeedCommand() *cli.Command {
	return &cli.Command{
		Name:  "seed",
		Usage: "Load the CSV files of an export back into tables",
		Flags: append(connectionFlags(),
			&cli.StringFlag{
				Name:  "input-dir",
				Usage: "Directory holding the <table>.csv files (defaults to the export output directory)",
			},
		),
		Action: func(c *cli.Context) error {
			cfg, err := loadConfig(c, map[string]string{"input-dir": "output_dir"})
			if err != nil {
				return err
			}

			manager, err := connect(c, cfg)
			if err != nil {
				return err
			}
			defer manager.Close()

			fmt.Fprintf(c.App.Writer, "Importing data from: %s\n", cfg.OutputDir)
			n, err := manager.RestoreFromCSV(c.Context, cfg.Schema, cfg.OutputDir)
			if err != nil {
				return fmt.Errorf("importing data: %w", err)
			}

			fmt.Fprintf(c.App.Writer, "\n✅ Successfully restored %d tables\n", n)
			return nil
		},
	}
}
