package main

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSQLiteRepository(t *testing.T) {
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "alarms.db"))
	require.NoError(t, err)
	defer repo.close()

	testRepository(t, repo)
}
