package db

import (
	"os"
	"strings"
	"testing"
	"tixgate/util"
)

var testQueries *Queries

func TestMain(m *testing.M) {
	// Omit test if this is CI environment
	if strings.TrimSpace(os.Getenv("CI")) != "" {
		util.LOGGER.Warn("CI environment, skip integration test")
		return
	}

	testQueries = &Queries{}
	if err := testQueries.ConnectDB(os.Getenv("DB_CONN")); err != nil {
		util.LOGGER.Error("failed to connect to database for test", "error", err)
		os.Exit(1)
	}
	if err := testQueries.AutoMigration(); err != nil {
		util.LOGGER.Error("failed to run migration for test", "error", err)
		os.Exit(1)
	}

	os.Exit(m.Run())
}
