package database_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/euromillions/internal/database"
	"github.com/yourusername/euromillions/internal/database/testutil"
	"github.com/yourusername/euromillions/internal/logger"
)

func TestMigratorUpDownStatus(t *testing.T) {
	tdb := testutil.SetupTestDatabase(t)
	m := database.NewMigrator(tdb.URL, logger.Discard())

	status, err := m.Status()
	require.NoError(t, err)
	assert.True(t, status.Applied)
	assert.Equal(t, uint(2), status.Version)
	assert.False(t, status.Dirty)

	status, err = m.Down(1)
	require.NoError(t, err)
	assert.Equal(t, uint(1), status.Version)

	status, err = m.Up()
	require.NoError(t, err)
	assert.Equal(t, uint(2), status.Version)

	// a second Up is a no-op
	_, err = m.Up()
	require.NoError(t, err)
}
