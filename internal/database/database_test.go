package database_test

import (
	"context"
	"database/sql"
	"testing"
	"testing/fstest"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/what-to-cook/backend/config"
	"github.com/pageza/what-to-cook/backend/internal/database"
	"github.com/pageza/what-to-cook/backend/internal/model"
	"github.com/pageza/what-to-cook/backend/internal/testhelpers"
	"github.com/pageza/what-to-cook/backend/migrations"
)

func TestOpenSQLite(t *testing.T) {
	cfg := config.Default()
	cfg.DBDriver = "sqlite"
	cfg.SQLitePath = t.TempDir() + "/recipes.db"

	db, err := database.Open(cfg)
	require.NoError(t, err)
	require.NoError(t, database.HealthCheck(context.Background(), db))

	require.NoError(t, database.RunMigrations(context.Background(), db))
	assert.True(t, db.Migrator().HasTable(&model.Recipe{}))
}

func TestOpenUnsupportedDriver(t *testing.T) {
	cfg := config.Default()
	cfg.DBDriver = "oracle"

	_, err := database.Open(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unsupported database driver "oracle"`)
}

func TestMigrateAndRollback(t *testing.T) {
	db := testhelpers.SetupSQLite(t)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	ctx := context.Background()

	fsys := fstest.MapFS{
		"0001_create_notes.sql":          {Data: []byte(`CREATE TABLE notes (id INTEGER PRIMARY KEY, body TEXT)`)},
		"0001_create_notes_rollback.sql": {Data: []byte(`DROP TABLE notes`)},
		"0002_add_tags.sql":              {Data: []byte(`CREATE TABLE tags (id INTEGER PRIMARY KEY)`)},
		"0002_add_tags_rollback.sql":     {Data: []byte(`DROP TABLE tags`)},
		"README.md":                      {Data: []byte(`ignored`)},
	}

	applied, err := database.Migrate(ctx, sqlDB, fsys)
	require.NoError(t, err)
	assert.Equal(t, []string{"0001_create_notes.sql", "0002_add_tags.sql"}, applied)
	assert.True(t, tableExists(t, sqlDB, "tags"))

	applied, err = database.Migrate(ctx, sqlDB, fsys)
	require.NoError(t, err)
	assert.Empty(t, applied)

	name, err := database.Rollback(ctx, sqlDB, fsys)
	require.NoError(t, err)
	assert.Equal(t, "0002_add_tags.sql", name)
	assert.False(t, tableExists(t, sqlDB, "tags"))
	assert.True(t, tableExists(t, sqlDB, "notes"))

	name, err = database.Rollback(ctx, sqlDB, fsys)
	require.NoError(t, err)
	assert.Equal(t, "0001_create_notes.sql", name)

	_, err = database.Rollback(ctx, sqlDB, fsys)
	assert.ErrorIs(t, err, database.ErrNoMigrations)
}

func TestMigrateFailureIsNotRecorded(t *testing.T) {
	db := testhelpers.SetupSQLite(t)
	sqlDB, err := db.DB()
	require.NoError(t, err)

	fsys := fstest.MapFS{
		"0001_broken.sql": {Data: []byte(`CREATE TABLE (`)},
	}
	_, err = database.Migrate(context.Background(), sqlDB, fsys)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "0001_broken.sql")

	var count int
	require.NoError(t, sqlDB.QueryRow(`SELECT COUNT(*) FROM schema_migrations`).Scan(&count))
	assert.Zero(t, count)
}

func TestPostgresMigrations(t *testing.T) {
	db := testhelpers.SetupTestDatabase(t)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	ctx := context.Background()

	recipe := model.Recipe{
		Title:        "Tomato Soup",
		Ingredients:  "tomatoes\nonion",
		Instructions: "Chop everything.\nSimmer for 20 minutes.",
	}
	require.NoError(t, db.Create(&recipe).Error)
	assert.NotEqual(t, uuid.Nil, recipe.ID)

	applied, err := database.Migrate(ctx, sqlDB, migrations.FS)
	require.NoError(t, err)
	assert.Empty(t, applied)

	name, err := database.Rollback(ctx, sqlDB, migrations.FS)
	require.NoError(t, err)
	assert.Equal(t, "0002_recipe_title_search.sql", name)

	applied, err = database.Migrate(ctx, sqlDB, migrations.FS)
	require.NoError(t, err)
	assert.Equal(t, []string{"0002_recipe_title_search.sql"}, applied)
}

func tableExists(t *testing.T, db *sql.DB, name string) bool {
	t.Helper()
	var count int
	err := db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?`, name).Scan(&count)
	require.NoError(t, err)
	return count > 0
}
