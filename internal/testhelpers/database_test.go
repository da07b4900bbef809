package testhelpers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/what-to-cook/backend/internal/model"
)

func TestSetupSQLiteIsolated(t *testing.T) {
	a := SetupSQLite(t)
	b := SetupSQLite(t)

	require.NoError(t, a.Create(&model.Recipe{
		Title:        "Toast",
		Ingredients:  "bread\nbutter",
		Instructions: "Toast the bread.\nSpread the butter.",
	}).Error)

	var countA, countB int64
	require.NoError(t, a.Model(&model.Recipe{}).Count(&countA).Error)
	require.NoError(t, b.Model(&model.Recipe{}).Count(&countB).Error)
	assert.Equal(t, int64(1), countA)
	assert.Equal(t, int64(0), countB)
}

func TestSetupTestDatabase(t *testing.T) {
	db := SetupTestDatabase(t)
	assert.True(t, db.Migrator().HasTable(&model.Recipe{}))
}
