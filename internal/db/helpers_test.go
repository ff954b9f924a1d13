package db

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/udisondev/l2quest/internal/model"
)

func newRepoTestPlayer(t *testing.T) *model.Player {
	t.Helper()
	p, err := model.NewPlayer(1, 1001, "RepoTester", 20, 0, 0)
	require.NoError(t, err)
	return p
}
