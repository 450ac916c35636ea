package util

import (
	"os"
	"path/filepath"
	"strategysim/internal/logger"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDbSecrets_ToConnectionStr(t *testing.T) {
	s := DbSecrets{
		Host:     "localhost",
		User:     "postgres",
		Port:     "5440",
		Password: "postgres",
		Database: "strategysim",
	}
	require.Equal(t, "host=localhost port=5440 user=postgres password=postgres dbname=strategysim sslmode=disable", s.ToConnectionStr())

	s.EnableSsl = true
	require.Equal(t, "host=localhost port=5440 user=postgres password=postgres dbname=strategysim", s.ToConnectionStr())
}

func TestLoadSecrets(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() {
		os.Chdir(wd)
	})
	t.Setenv(logger.EnvVar, "test")

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadSecrets()
		require.Error(t, err)
	})

	t.Run("reads the env specific file", func(t *testing.T) {
		contents := `{"port": 3009, "db": {"host": "localhost", "port": "5440", "database": "strategysim_test"}}`
		require.NoError(t, os.WriteFile(filepath.Join(dir, "secrets-test.json"), []byte(contents), 0o600))

		secrets, err := LoadSecrets()
		require.NoError(t, err)
		require.Equal(t, 3009, secrets.Port)
		require.Equal(t, "strategysim_test", secrets.Db.Database)
	})
}
