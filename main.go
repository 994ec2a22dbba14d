package main

import (
	"fmt"
	"os"

	"cadastro/config"
	"cadastro/db"
	"cadastro/db/sqlite"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var envFile string

	load := func(cmd *cobra.Command) (*config.Cfg, error) {
		return config.LoadConfig(envFile, cmd.Flags())
	}

	serve := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := load(cmd)
			if err != nil {
				return err
			}
			return runServer(cmd.Context(), cfg)
		},
	}

	schema := &cobra.Command{
		Use:   "schema",
		Short: "Print the bootstrap DDL for the configured database driver",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := load(cmd)
			if err != nil {
				return err
			}
			ddl := db.Schema()
			if cfg.DatabaseDriver == config.DriverSqlite {
				ddl = sqlite.Schema()
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), ddl)
			return err
		},
	}

	root := &cobra.Command{
		Use:          "cadastro",
		Short:        "Pessoa and Endereco REST API",
		SilenceUsage: true,
		RunE:         serve.RunE,
	}

	root.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file read before the environment")
	root.PersistentFlags().String("database-driver", config.DriverPostgres, "postgres or sqlite")
	root.PersistentFlags().String("database-url", "", "postgres connection string")
	root.PersistentFlags().String("sqlite-path", "", "sqlite database file")

	for _, cmd := range []*cobra.Command{root, serve} {
		cmd.Flags().String("http-addr", ":8080", "listen address")
		cmd.Flags().String("log-level", "info", "debug, info, warn or error")
		cmd.Flags().Bool("api-legacy-status", false, "answer with the status codes of the previous service")
		cmd.Flags().String("cache-backend", config.CacheNone, "none, memory or redis")
	}

	root.AddCommand(serve, schema)
	return root
}
