package db

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/edelguur/admin-backend/pkg/config"
)

type widget struct {
	ID   int
	Name string
}

func openSQLite(t *testing.T) *Client {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)
	pool, err := conn.DB()
	require.NoError(t, err)
	pool.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = pool.Close() })
	require.NoError(t, conn.AutoMigrate(&widget{}))
	return FromConn(conn)
}

func count(t *testing.T, c *Client, name string) int64 {
	t.Helper()
	var n int64
	require.NoError(t, c.DB().Model(&widget{}).Where("name = ?", name).Count(&n).Error)
	return n
}

func TestWithTxCommitsOnSuccess(t *testing.T) {
	c := openSQLite(t)
	require.NoError(t, c.WithTx(context.Background(), func(tx *gorm.DB) error {
		return tx.Create(&widget{Name: "kept"}).Error
	}))
	assert.EqualValues(t, 1, count(t, c, "kept"))
}

func TestWithTxRollsBackOnError(t *testing.T) {
	c := openSQLite(t)
	boom := errors.New("boom")
	err := c.WithTx(context.Background(), func(tx *gorm.DB) error {
		require.NoError(t, tx.Create(&widget{Name: "dropped"}).Error)
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Zero(t, count(t, c, "dropped"))
}

func TestWithTxRollsBackOnPanic(t *testing.T) {
	c := openSQLite(t)
	assert.Panics(t, func() {
		_ = c.WithTx(context.Background(), func(tx *gorm.DB) error {
			require.NoError(t, tx.Create(&widget{Name: "panicky"}).Error)
			panic("boom")
		})
	})
	assert.Zero(t, count(t, c, "panicky"))
}

func TestExecRawAndPing(t *testing.T) {
	c := openSQLite(t)
	ctx := context.Background()
	require.NoError(t, c.Ping(ctx))
	require.NoError(t, c.Exec(ctx, "INSERT INTO widgets (name) VALUES (?)", "raw").Error)

	var name string
	require.NoError(t, c.Raw(ctx, "SELECT name FROM widgets WHERE name = ?", "raw").Scan(&name).Error)
	assert.Equal(t, "raw", name)
}

func TestNewRequiresDSN(t *testing.T) {
	_, err := New(context.Background(), config.DBConfig{}, nil)
	assert.Error(t, err)
}
