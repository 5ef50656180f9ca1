package main

import (
	"fmt"

	"github.com/tracerhq/tracer/storage/database"
)

// mockable
var (
	migrateUpFunc   = database.Migrate
	migrateDownFunc = database.Rollback
)

func (cli *commandLine) migrate(direction string) error {
	switch direction {
	case "up":
		return migrateUpFunc(cli.db)
	case "down":
		return migrateDownFunc(cli.db)
	}
	return fmt.Errorf("%q: no such direction", direction)
}
