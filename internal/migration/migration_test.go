package migration

import (
	"errors"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSourceListsFirstVersion(t *testing.T) {
	for _, dialect := range []string{"mysql", "postgres"} {
		source, err := Source(dialect)
		require.NoError(t, err, dialect)

		version, err := source.First()
		require.NoError(t, err, dialect)
		assert.Equal(t, uint(1), version)

		body, ident, err := source.ReadUp(version)
		require.NoError(t, err)
		_ = body.Close()
		assert.Equal(t, "create_settlements", ident)
	}
}

func TestSourceRejectsUnknownDialect(t *testing.T) {
	_, err := Source("sqlite")
	assert.True(t, errors.Is(err, ErrUnsupportedDialect))
}

func TestEmbeddedMigrationsArePaired(t *testing.T) {
	for _, dialect := range []string{"mysql", "postgres"} {
		ups, err := fs.Glob(embeddedMigrations, "migrations/"+dialect+"/*.up.sql")
		require.NoError(t, err)
		downs, err := fs.Glob(embeddedMigrations, "migrations/"+dialect+"/*.down.sql")
		require.NoError(t, err)
		assert.NotEmpty(t, ups)
		assert.Len(t, downs, len(ups), dialect)
	}
}

func TestRunMigrationsRequiresHandle(t *testing.T) {
	assert.Error(t, RunMigrations(nil, "mysql"))
}
