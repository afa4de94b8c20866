package database

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lukewarren/accountd/internal/models"
)

func TestOpenSQLiteInMemoryAndMigrate(t *testing.T) {
	db, err := Open(Config{Driver: "sqlite", Path: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, AutoMigrate(db))

	require.True(t, db.Migrator().HasTable(&models.User{}))
	require.True(t, db.Migrator().HasTable(&models.ActivityLog{}))
}

func TestOpenDefaultsToSQLite(t *testing.T) {
	db, err := Open(Config{Path: ":memory:"})
	require.NoError(t, err)
	require.NotNil(t, db)
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := Open(Config{Driver: "oracle"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "unsupported database driver")
}

func TestBuildPostgresDSN(t *testing.T) {
	dsn, err := buildPostgresDSN(Config{
		User:     "svc",
		Password: "secret",
		Name:     "accounts",
		Host:     "db.example.com",
		Port:     5433,
	})
	require.NoError(t, err)
	require.Equal(t, "host=db.example.com port=5433 user=svc dbname=accounts password=secret sslmode=disable", dsn)
}

func TestBuildPostgresDSNRequiresUserAndName(t *testing.T) {
	_, err := buildPostgresDSN(Config{Host: "db.example.com"})
	require.Error(t, err)
}

func TestBuildPostgresDSNPassthrough(t *testing.T) {
	dsn, err := buildPostgresDSN(Config{DSN: "postgres://u:p@host/db"})
	require.NoError(t, err)
	require.Equal(t, "postgres://u:p@host/db", dsn)
}

func TestBuildMySQLDSN(t *testing.T) {
	dsn, err := buildMySQLDSN(Config{
		User:     "svc",
		Password: "secret",
		Name:     "accounts",
		Host:     "db.example.com",
		Port:     3307,
	})
	require.NoError(t, err)
	require.Equal(t, "svc:secret@tcp(db.example.com:3307)/accounts?charset=utf8mb4&loc=Local&parseTime=True", dsn)
}

func TestBuildMySQLDSNDefaults(t *testing.T) {
	dsn, err := buildMySQLDSN(Config{User: "svc", Name: "accounts"})
	require.NoError(t, err)
	require.Equal(t, "svc@tcp(127.0.0.1:3306)/accounts?charset=utf8mb4&loc=Local&parseTime=True", dsn)
}
