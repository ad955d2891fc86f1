package cmd

import (
	"fmt"
	"io"
	"strconv"

	"github.com/KazanKK/pgtransfer/spreadsheet"

	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli/v2"
)

func ListCommand() *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List the base tables of a schema, or the sheets of a workbook",
		Flags: append(connectionFlags(),
			&cli.StringFlag{
				Name:  "workbook",
				Usage: "List the sheets of this workbook instead of database tables",
			},
		),
		Action: func(c *cli.Context) error {
			if path := c.String("workbook"); path != "" {
				return listSheets(c.App.Writer, path)
			}

			cfg, err := loadConfig(c, nil)
			if err != nil {
				return err
			}

			manager, err := connect(c, cfg)
			if err != nil {
				return err
			}
			defer manager.Close()

			schema := cfg.Schema
			if schema == "" {
				schema = manager.DefaultSchema()
			}
			tables, err := manager.ListTables(c.Context, schema)
			if err != nil {
				return fmt.Errorf("listing tables: %w", err)
			}

			fmt.Fprintf(c.App.Writer, "Tables in %s:\n", schema)
			fmt.Fprintln(c.App.Writer, "-----------------------------")
			if len(tables) == 0 {
				fmt.Fprintln(c.App.Writer, "No tables found.")
				return nil
			}

			table := newListTable(c.App.Writer, "Table", "Rows")
			for _, name := range tables {
				count, err := manager.CountRows(c.Context, schema, name)
				if err != nil {
					return fmt.Errorf("counting rows: %w", err)
				}
				table.Append([]string{name, strconv.FormatInt(count, 10)})
			}
			table.Render()
			return nil
		},
	}
}

func listSheets(w io.Writer, path string) error {
	wb, err := spreadsheet.Open(path)
	if err != nil {
		return err
	}
	defer wb.Close()

	fmt.Fprintf(w, "Sheets in %s:\n", path)
	fmt.Fprintln(w, "-----------------------------")

	table := newListTable(w, "Sheet", "Columns", "Rows")
	for _, name := range wb.SheetNames() {
		rs, err := wb.ReadSheet(name)
		if err != nil {
			return err
		}
		table.Append([]string{name, strconv.Itoa(len(rs.Columns)), strconv.Itoa(rs.Len())})
	}
	table.Render()
	return nil
}

func newListTable(w io.Writer, header ...string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetBorder(false)
	table.SetColumnSeparator(" ")
	return table
}
