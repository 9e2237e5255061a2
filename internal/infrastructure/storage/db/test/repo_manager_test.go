package db_test

import (
	"context"
	"os"
	"strconv"
	"testing"

	"github.com/vulpemventures/seedcheck/internal/core/domain"
	"github.com/vulpemventures/seedcheck/internal/core/ports"
	dbbadger "github.com/vulpemventures/seedcheck/internal/infrastructure/storage/db/badger"
	"github.com/vulpemventures/seedcheck/internal/infrastructure/storage/db/inmemory"
	postgresdb "github.com/vulpemventures/seedcheck/internal/infrastructure/storage/db/postgres"
)

var (
	phrase = domain.RecoveryPhrase{
		"leave", "dice", "fine", "decrease", "dune", "ribbon", "ocean", "earn",
		"lunar", "account", "silver", "admit", "cheap", "fringe", "disorder", "trade",
		"because", "trade", "steak", "clock", "grace", "video", "jacket", "equal",
	}
	otherPhrase = domain.RecoveryPhrase{
		"abandon", "abandon", "abandon", "abandon", "abandon", "abandon",
		"abandon", "abandon", "abandon", "abandon", "abandon", "about",
	}
	groupSize = 3
	ctx       = context.Background()
)

// newRepoManagers returns the repo managers to run the tests against.
// The postgres one is included only if SEEDCHECK_TEST_DB_PORT is defined.
func newRepoManagers(t *testing.T) map[string]ports.RepoManager {
	t.Helper()

	badgerRepoManager, err := dbbadger.NewRepoManager("", nil)
	if err != nil {
		t.Fatal(err)
	}

	repoManagers := map[string]ports.RepoManager{
		"inmemory": inmemory.NewRepoManager(),
		"badger":   badgerRepoManager,
	}

	if port := os.Getenv("SEEDCHECK_TEST_DB_PORT"); len(port) > 0 {
		dbPort, err := strconv.Atoi(port)
		if err != nil {
			t.Fatal(err)
		}
		pgRepoManager, err := postgresdb.NewRepoManager(postgresdb.DbConfig{
			DbUser:             "root",
			DbPassword:         "secret",
			DbHost:             "127.0.0.1",
			DbPort:             dbPort,
			DbName:             "seedcheck-db-test",
			MigrationSourceURL: "file://../postgres/migration",
		})
		if err != nil {
			t.Fatal(err)
		}
		pgRepoManager.Reset()
		repoManagers["postgres"] = pgRepoManager
	}

	t.Cleanup(func() {
		for _, rm := range repoManagers {
			rm.Close()
		}
	})

	return repoManagers
}
