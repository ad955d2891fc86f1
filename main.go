package main

import (
	"log"
	"os"

	"github.com/KazanKK/pgtransfer/cmd"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "pgtransfer",
		Usage: "Export database tables to CSV and load spreadsheets into a table",
		Commands: []*cli.Command{
			cmd.InitCommand(),
			cmd.ExportCommand(),
			cmd.ImportCommand(),
			cmd.SeedCommand(),
			cmd.ListCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
