package chain

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func counting(calls map[string]int, name string, f func(string) string) Step {
	return Step{
		Name: name,
		Transform: func(data interface{}, key string, attrs interface{}) (interface{}, error) {
			calls[name]++
			return f(data.(string)), nil
		},
	}
}

func TestProcess(t *testing.T) {
	calls := make(map[string]int)
	c := New(
		counting(calls, "upper", strings.ToUpper),
		counting(calls, "double", func(s string) string { return s + s }),
	)

	assert.Equal(t, []string{"upper", "double"}, c.Steps())

	v, err := c.Process("ab", "k", nil)
	require.NoError(t, err)
	assert.Equal(t, "ABAB", v)

	v, err = c.Process("ignored", "k", nil)
	require.NoError(t, err)
	assert.Equal(t, "ABAB", v)
	assert.Equal(t, 1, calls["upper"])
	assert.Equal(t, 1, calls["double"])

	cached, ok := c.Cached("upper", "k")
	assert.True(t, ok)
	assert.Equal(t, "AB", cached)

	c.Clear()
	_, ok = c.Cached("upper", "k")
	assert.False(t, ok)
}

func TestProcessWithoutKey(t *testing.T) {
	calls := make(map[string]int)
	c := New(counting(calls, "upper", strings.ToUpper))

	for i := 0; i < 3; i++ {
		v, err := c.Process("x", "", nil)
		require.NoError(t, err)
		assert.Equal(t, "X", v)
	}
	assert.Equal(t, 3, calls["upper"])
}

func TestProcessError(t *testing.T) {
	boom := errors.New("boom")
	c := New(Step{
		Name: "fail",
		Transform: func(data interface{}, key string, attrs interface{}) (interface{}, error) {
			return nil, boom
		},
	})

	_, err := c.Process("x", "k", nil)
	assert.True(t, errors.Is(err, boom))
	assert.Contains(t, err.Error(), "fail")

	_, ok := c.Cached("fail", "k")
	assert.False(t, ok)

	_, err = New().Process("x", "k", nil)
	assert.Error(t, err)
}
