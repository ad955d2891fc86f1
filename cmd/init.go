package cmd

import (
	"fmt"
	"os"

	"github.com/KazanKK/pgtransfer/internal/config"
	utils "github.com/KazanKK/pgtransfer/internal/utils"

	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"
)

func InitCommand() *cli.Command {
	return &cli.Command{
		Name:  "init",
		Usage: "Initialize pgtransfer configuration file",
		Flags: append(connectionFlags(),
			&cli.StringFlag{
				Name:  "output-dir",
				Usage: "Directory for exported CSV files",
			},
			&cli.StringFlag{
				Name:  "table",
				Usage: "Destination table for imports",
			},
			&cli.BoolFlag{
				Name:  "force",
				Usage: "Overwrite an existing config file",
			},
		),
		Action: func(c *cli.Context) error {
			if _, err := os.Stat(utils.ConfigFileName); err == nil && !c.Bool("force") {
				return fmt.Errorf("%s already exists (use --force to overwrite)", utils.ConfigFileName)
			}

			// Start from whatever config is already in effect
			cfg, err := loadConfig(c, map[string]string{"output-dir": "output_dir", "table": "table"})
			if err != nil {
				return err
			}

			// A URL is flattened into fields so its password is never written
			conn, err := cfg.Connection()
			if err != nil {
				return err
			}
			out := *cfg
			out.URL = ""
			out.Driver, out.Transport = conn.Driver, conn.Transport
			out.Host, out.Port, out.User = conn.Host, conn.Port, conn.User
			out.DBName, out.SSLMode = conn.DBName, conn.SSLMode

			yamlData, err := yaml.Marshal(&out)
			if err != nil {
				return fmt.Errorf("creating yaml: %v", err)
			}

			if err := os.WriteFile(utils.ConfigFileName, yamlData, 0644); err != nil {
				return fmt.Errorf("writing config file: %v", err)
			}

			fmt.Fprintf(c.App.Writer, "Created %s for %s database %s on %s\n",
				utils.ConfigFileName, out.Driver, out.DBName, out.Host)
			fmt.Fprintf(c.App.Writer, "Set %sPASSWORD or use --ask-password to supply the password.\n", config.EnvPrefix)
			return nil
		},
	}
}
