package repository

import (
	"os"
	"strategysim/internal/db/models/postgres/public/model"
	"strategysim/internal/util"
	"testing"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/require"
)

// runs against the local test database; skipped when it isn't up
func TestSensitivityRunRepository(t *testing.T) {
	db, err := util.NewTestDb()
	require.NoError(t, err)
	defer db.Close()
	if err := db.Ping(); err != nil {
		t.Skipf("test db unavailable: %v", err)
	}

	schema, err := os.ReadFile("../db/migrations/000001_create_sensitivity_run.up.sql")
	require.NoError(t, err)
	_, err = db.Exec("DROP TABLE IF EXISTS sensitivity_run")
	require.NoError(t, err)
	_, err = db.Exec(string(schema))
	require.NoError(t, err)

	repo := NewSensitivityRunRepository(db)
	createdAt := time.Now().UTC().Truncate(time.Second)

	older, err := repo.Add(nil, model.SensitivityRun{
		Seed:           1,
		NumSimulations: 100,
		Result:         `{"seed": 1}`,
		CreatedAt:      createdAt.Add(-time.Hour),
	})
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, older.SensitivityRunID)

	tx, err := db.Begin()
	require.NoError(t, err)
	newer, err := repo.Add(tx, model.SensitivityRun{
		Seed:           2,
		NumSimulations: 50,
		NumFailed:      3,
		Partial:        true,
		Result:         `{"seed": 2}`,
		CreatedAt:      createdAt,
	})
	require.NoError(t, err)
	require.NoError(t, tx.Commit())

	t.Run("get", func(t *testing.T) {
		got, err := repo.Get(newer.SensitivityRunID)
		require.NoError(t, err)
		require.Equal(t, int64(2), got.Seed)
		require.Equal(t, int32(3), got.NumFailed)
		require.True(t, got.Partial)
		require.JSONEq(t, `{"seed": 2}`, got.Result)
		require.WithinDuration(t, createdAt, got.CreatedAt, time.Second)
	})

	t.Run("get missing", func(t *testing.T) {
		got, err := repo.Get(uuid.New())
		require.NoError(t, err)
		require.Nil(t, got)
	})

	t.Run("list newest first", func(t *testing.T) {
		runs, err := repo.List(10)
		require.NoError(t, err)
		require.Len(t, runs, 2)
		require.Equal(t, newer.SensitivityRunID, runs[0].SensitivityRunID)
		require.Equal(t, older.SensitivityRunID, runs[1].SensitivityRunID)
		require.Equal(t, "", runs[0].Result)

		runs, err = repo.List(1)
		require.NoError(t, err)
		require.Len(t, runs, 1)
	})
}
