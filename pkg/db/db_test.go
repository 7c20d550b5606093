package db

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestIsDuplicateKeyErr(t *testing.T) {
	assert.False(t, IsDuplicateKeyErr(nil))
	assert.True(t, IsDuplicateKeyErr(fmt.Errorf("insert: %w", gorm.ErrDuplicatedKey)))
	assert.True(t, IsDuplicateKeyErr(errors.New("Error 1062 (23000): Duplicate entry 'o-1' for key 'order_ref'")))
	assert.True(t, IsDuplicateKeyErr(errors.New("UNIQUE constraint failed: settlements.order_ref")))
	assert.False(t, IsDuplicateKeyErr(errors.New("connection refused")))
}

func TestDialect(t *testing.T) {
	for _, typ := range []string{"mysql", "postgres", "sqlite", " MySQL "} {
		d, err := Dialect(Config{Type: typ, Name: "remag"})
		require.NoError(t, err, typ)
		assert.NotNil(t, d)
	}

	_, err := Dialect(Config{Type: "oracle"})
	assert.Error(t, err)
}

func TestMySQLDSN(t *testing.T) {
	dsn := MySQLDSN(Config{User: "root", Password: "pw", Host: "db", Port: "3306", Name: "remag"})
	assert.Equal(t, "root:pw@tcp(db:3306)/remag?charset=utf8mb4&parseTime=True&loc=UTC&multiStatements=true", dsn)
}
