package migration

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/golang-migrate/migrate/v4"
	"github.com/spf13/cobra"
)

func newMigrate(sourceURL string, databaseURL string) *migrate.Migrate {
	m, err := migrate.New(sourceURL, databaseURL)
	if err != nil {
		panic(err)
	}
	return m
}

func upCommand(databaseURL string) *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "migrate the database up",
		Run: func(cmd *cobra.Command, args []string) {
			m := newMigrate("file://migrations", databaseURL)
			err := m.Up()
			if err != nil && !errors.Is(err, migrate.ErrNoChange) {
				panic(err)
			}
			fmt.Println("Migrated up successfully")
		},
	}
}

func downCommand(databaseURL string) *cobra.Command {
	return &cobra.Command{
		Use:   "down",
		Short: "migrate the database down one step",
		Run: func(cmd *cobra.Command, args []string) {
			m := newMigrate("file://migrations", databaseURL)
			err := m.Steps(-1)
			if err != nil {
				panic(err)
			}
			fmt.Println("Migrated down successfully")
		},
	}
}

func forceCommand(databaseURL string) *cobra.Command {
	return &cobra.Command{
		Use:   "force <version>",
		Short: "force the migration version",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			version, err := strconv.Atoi(args[0])
			if err != nil {
				panic(err)
			}
			m := newMigrate("file://migrations", databaseURL)
			err = m.Force(version)
			if err != nil {
				panic(err)
			}
			fmt.Println("Forced version", version)
		},
	}
}

// MigrateCommand returns the root cobra command for migrations
func MigrateCommand(databaseURL string) *cobra.Command {
	root := &cobra.Command{
		Use: "migrate",
	}
	root.AddCommand(
		upCommand(databaseURL),
		downCommand(databaseURL),
		forceCommand(databaseURL),
	)
	return root
}

// MigrateUpForTesting migrates up using the migrations directory at the
// repository root, for the integration test harness
func MigrateUpForTesting(rootDir string, databaseURL string) {
	sourceURL := "file://" + filepath.Join(rootDir, "migrations")
	m := newMigrate(sourceURL, databaseURL)
	err := m.Up()
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		panic(err)
	}
}
