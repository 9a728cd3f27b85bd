package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/magabrotheeeer/mindwell/internal/migrations"
)

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage database schema migrations",
	}
	cmd.AddCommand(migrateUpCmd(), migrateDownCmd(), migrateVersionCmd())
	return cmd
}

func migrateUpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, db, err := openStorage()
			if err != nil {
				return err
			}
			defer db.Close()

			if err := migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
			return nil
		},
	}
}

func migrateDownCmd() *cobra.Command {
	var steps int
	cmd := &cobra.Command{
		Use:   "down",
		Short: "Roll back the last migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, db, err := openStorage()
			if err != nil {
				return err
			}
			defer db.Close()

			if err := migrations.Down(db.DB, cfg.MigrationsPath, steps); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "rolled back %d migration(s)\n", steps)
			return nil
		},
	}
	cmd.Flags().IntVarP(&steps, "steps", "n", 1, "number of migrations to roll back")
	return cmd
}

func migrateVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the current schema version",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, db, err := openStorage()
			if err != nil {
				return err
			}
			defer db.Close()

			version, dirty, err := migrations.Version(db.DB, cfg.MigrationsPath)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "version %d (dirty: %t)\n", version, dirty)
			return nil
		},
	}
}
