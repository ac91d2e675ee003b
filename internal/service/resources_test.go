package service

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResourceGroup_ReleasesInReverseOrder(t *testing.T) {
	var g resourceGroup
	var order []string
	g.Add("first", func() error { order = append(order, "first"); return nil })
	g.Add("second", func() error { order = append(order, "second"); return nil })

	require.NoError(t, g.Close())
	require.NoError(t, g.Close())

	assert.Equal(t, []string{"second", "first"}, order)
}

func TestResourceGroup_AddAfterClose(t *testing.T) {
	var g resourceGroup
	require.NoError(t, g.Close())

	calls := 0
	g.Add("late", func() error { calls++; return nil })

	assert.Equal(t, 1, calls)
}

func TestResourceGroup_Disarm(t *testing.T) {
	var g resourceGroup
	calls := 0
	r := g.Add("recording", func() error { calls++; return nil })

	assert.True(t, r.Disarm())
	require.NoError(t, g.Close())
	assert.Equal(t, 0, calls)
	assert.False(t, r.Disarm())
}

func TestResourceGroup_JoinsErrors(t *testing.T) {
	var g resourceGroup
	boom := errors.New("boom")
	calls := 0
	g.Add("a", func() error { calls++; return boom })
	g.Add("b", func() error { calls++; return nil })

	err := g.Close()

	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "failed to release a")
	assert.Equal(t, 2, calls)
}
