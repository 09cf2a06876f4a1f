package db

import (
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLiteDSNAddsWriterDefaults(t *testing.T) {
	dsn := sqliteDSN("/tmp/flowtrack.db")
	base, rawQuery, ok := strings.Cut(dsn, "?")
	require.True(t, ok)
	assert.Equal(t, "/tmp/flowtrack.db", base)

	q, err := url.ParseQuery(rawQuery)
	require.NoError(t, err)
	assert.Equal(t, "immediate", q.Get("_txlock"))
	assert.Equal(t, "5000", q.Get("_busy_timeout"))
	assert.Equal(t, "WAL", q.Get("_journal_mode"))
}

func TestSQLiteDSNKeepsCallerValues(t *testing.T) {
	dsn := sqliteDSN("flowtrack.db?_busy_timeout=100&cache=shared")
	_, rawQuery, _ := strings.Cut(dsn, "?")

	q, err := url.ParseQuery(rawQuery)
	require.NoError(t, err)
	assert.Equal(t, "100", q.Get("_busy_timeout"))
	assert.Equal(t, "shared", q.Get("cache"))
	assert.Equal(t, "immediate", q.Get("_txlock"))
}

func TestConnectRejectsEmptySQLitePath(t *testing.T) {
	_, err := Connect("sqlite://")
	assert.Error(t, err)
}
