package cmd

import (
	"fmt"

	"github.com/KazanKK/pgtransfer/spreadsheet"

	"github.com/urfave/cli/v2"
)

func ImportCommand() *cli.Command {
	return &cli.Command{
		Name:  "import",
		Usage: "Load every sheet of a workbook into one table, replacing it per sheet",
		Flags: append(connectionFlags(),
			&cli.StringFlag{
				Name:  "workbook",
				Usage: "Path to the .xlsx workbook",
			},
			&cli.StringFlag{
				Name:  "table",
				Usage: "Destination table (default parameter_master)",
			},
			&cli.BoolFlag{
				Name:  "json-log",
				Usage: "Print every sheet as JSON before loading it",
				Value: true,
			},
		),
		Action: func(c *cli.Context) error {
			cfg, err := loadConfig(c, map[string]string{"workbook": "workbook", "table": "table"})
			if err != nil {
				return err
			}
			if cfg.Workbook == "" {
				return fmt.Errorf("no workbook given: use --workbook or set workbook in the config")
			}

			manager, err := connect(c, cfg)
			if err != nil {
				return err
			}
			defer manager.Close()

			importer := spreadsheet.NewImporter(manager)
			importer.Schema = cfg.Schema
			importer.Table = cfg.Table
			importer.LogJSON = c.Bool("json-log")
			importer.Out = c.App.Writer

			if _, err := importer.ImportWorkbook(c.Context, cfg.Workbook); err != nil {
				return fmt.Errorf("importing workbook: %w", err)
			}

			fmt.Fprintln(c.App.Writer, "\n✅ Import completed with JSON logs.")
			return nil
		},
	}
}
