package main

import (
	"os"
	"path/filepath"
	"testing"

	"replay_report/internal/config"
	"replay_report/internal/database"
	"replay_report/internal/models"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func seedReplayDB(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "replay.db")
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.ReplayInfo{}))
	require.NoError(t, db.Create(&models.ReplayInfo{
		SQLDigest: "d1", SQLType: "select", SQLText: "SELECT 1",
		QueryTime: 300, ExecutionTime: 600, RowsSent: 1, RowsReturned: 1, FileName: "replay-7-a",
	}).Error)
	require.NoError(t, database.Close(db))
	return path
}

func TestRootCommandFlags(t *testing.T) {
	root := newRootCommand()

	for _, name := range []string{"user", "password", "host", "port", "database", "outfile_prefix", "replay_name", "tablename"} {
		assert.NotNil(t, root.PersistentFlags().Lookup(name), name)
	}

	names := []string{}
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	assert.Contains(t, names, "generate")
	assert.Contains(t, names, "serve")
}

func TestGenerateCommand(t *testing.T) {
	dbPath := seedReplayDB(t)
	out := t.TempDir()

	root := newRootCommand()
	root.SetArgs([]string{
		"generate",
		"--driver", "sqlite",
		"--database", dbPath,
		"--replay_name", "replay-7",
		"--tablename", "ignored",
		"--output-dir", out,
		"--log-level", "error",
	})
	require.NoError(t, root.Execute())

	data, err := os.ReadFile(filepath.Join(out, "replay-7.html"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "replay-7: compare results")
	assert.Contains(t, string(data), "error info — 0 rows")
	assert.Contains(t, string(data), `<span class="red">100.0%</span>`)
}

func TestGenerateCommandFailsWithoutRunParameter(t *testing.T) {
	root := newRootCommand()
	root.SetArgs([]string{"--driver", "sqlite", "--database", filepath.Join(t.TempDir(), "x.db")})
	assert.Error(t, root.Execute())
}

func TestServerAppWiring(t *testing.T) {
	cfg := config.Config{
		Server:  config.Server{Address: "127.0.0.1:0"},
		DB:      config.DB{Driver: config.DriverSQLite, Name: seedReplayDB(t)},
		Report:  config.Report{Prefix: "replay-7", Catalog: config.CatalogExtended, OutputDir: t.TempDir()},
		Logging: config.Logging{Level: "error"},
	}

	app := newServerApp(cfg, newLogger(cfg))
	assert.NoError(t, app.Err())
}

func TestNewLogger(t *testing.T) {
	logger := newLogger(config.Config{Logging: config.Logging{Level: "debug", Format: "json"}})
	assert.Equal(t, logrus.DebugLevel, logger.GetLevel())
	assert.IsType(t, &logrus.JSONFormatter{}, logger.Formatter)

	logger = newLogger(config.Config{Logging: config.Logging{Level: "nonsense"}})
	assert.Equal(t, logrus.InfoLevel, logger.GetLevel())
	assert.IsType(t, &logrus.TextFormatter{}, logger.Formatter)
}
