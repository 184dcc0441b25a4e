// Command readingplan generates daily Bible reading plans.
//
// Usage:
//
//	readingplan generate --source chrono.csv --out plan.xlsx [--start 2026-01-01] [--db data/readingplan.db]
//	readingplan links Genesis 1 3
//	readingplan events --schedule plan.xlsx
//	readingplan import --schedule plan.xlsx --db data/readingplan.db
package main

import (
	"os"

	"github.com/zapponejosh/reading-plan/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
