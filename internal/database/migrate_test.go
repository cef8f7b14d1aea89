package database

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRunMigrations(t *testing.T) {
	t.Parallel()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	migrations, err := filepath.Abs("migrations")
	require.NoError(t, err)

	require.NoError(t, RunMigrations(dbPath, migrations))

	db, err := Open(dbPath)
	require.NoError(t, err)
	defer db.Close()

	for _, table := range []string{"attractions", "themes", "itineraries", "itinerary_stops"} {
		var n int
		require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM `+table).Scan(&n), table)
		require.Zero(t, n, table)
	}

	// second run is a no-op
	require.NoError(t, RunMigrations(dbPath, migrations))
}

func TestRunMigrationsWithDB(t *testing.T) {
	t.Parallel()

	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	defer db.Close()

	migrations, err := filepath.Abs("migrations")
	require.NoError(t, err)

	require.NoError(t, RunMigrationsWithDB(db, migrations))
	require.NoError(t, RunMigrationsWithDB(db, migrations))

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM attractions`).Scan(&n))
	require.Zero(t, n)
}
