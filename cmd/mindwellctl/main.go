// Command mindwellctl обслуживает базу MindWell: миграции схемы и ручное
// проведение платежей, которые не удалось применить из вебхука.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/magabrotheeeer/mindwell/internal/config"
	"github.com/magabrotheeeer/mindwell/internal/storage/repository"
)

var Version = "dev"

func main() {
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:           "mindwellctl",
		Short:         "MindWell administration tool",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(paymentCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// openStorage читает конфиг и подключается к базе.
func openStorage() (*config.Config, *repository.Storage, error) {
	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		return nil, nil, fmt.Errorf("CONFIG_PATH is not set")
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, nil, fmt.Errorf("cannot read config: %w", err)
	}
	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, nil, err
	}
	return cfg, db, nil
}
