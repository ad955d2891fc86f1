package cmd

import (
	"fmt"

	"github.com/urfave/cli/v2"
)

func ExportCommand() *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Export every base table of a schema to CSV files",
		Flags: append(connectionFlags(),
			&cli.StringFlag{
				Name:  "output-dir",
				Usage: "Directory for the <table>.csv files (created if missing)",
			},
		),
		Action: func(c *cli.Context) error {
			cfg, err := loadConfig(c, map[string]string{"output-dir": "output_dir"})
			if err != nil {
				return err
			}

			manager, err := connect(c, cfg)
			if err != nil {
				return err
			}
			defer manager.Close()

			fmt.Fprintf(c.App.Writer, "Exporting tables to %s...\n", cfg.OutputDir)
			if err := manager.ExportToCSV(c.Context, cfg.Schema, cfg.OutputDir); err != nil {
				return fmt.Errorf("exporting data: %w", err)
			}

			fmt.Fprintln(c.App.Writer, "🎉 All tables exported successfully!")
			return nil
		},
	}
}
