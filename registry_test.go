package gom

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterAndWith(t *testing.T) {
	defer Reset()

	require.NoError(t, Register("answer", 42))

	got, err := With("answer", func(v int) int { return v })
	require.NoError(t, err)
	assert.Equal(t, 42, got)
}

func TestRegisterOverwrites(t *testing.T) {
	defer Reset()

	require.NoError(t, Register("b", "x"))
	require.NoError(t, Register("b", "y"))

	got, err := With("b", func(v string) string { return v })
	require.NoError(t, err)
	assert.Equal(t, "y", got)
}

func TestRegisterEmptyKey(t *testing.T) {
	defer Reset()

	err := Register("", 1)
	assert.ErrorIs(t, err, ErrEmptyKey)
}

func TestRemove(t *testing.T) {
	defer Reset()

	require.NoError(t, Register("gone", 7))

	v, err := Remove[int]("gone")
	require.NoError(t, err)
	assert.Equal(t, 7, v)

	assert.False(t, Exists[int]("gone"))

	_, err = Remove[int]("gone")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestExists(t *testing.T) {
	defer Reset()

	assert.False(t, Exists[int]("missing"))

	require.NoError(t, Register("present", 1))
	assert.True(t, Exists[int]("present"))

	// Same key, different type: a separate entry.
	assert.False(t, Exists[string]("present"))
}

func TestApply(t *testing.T) {
	defer Reset()

	require.NoError(t, Register("n", 42))

	got, err := Apply("n", func(v *int) int {
		*v++
		return *v
	})
	require.NoError(t, err)
	assert.Equal(t, 43, got)

	_, err = Apply("absent", func(v *int) int { return *v })
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestReplace(t *testing.T) {
	defer Reset()

	require.NoError(t, Register("r", 42))

	old, err := Replace("r", 64)
	require.NoError(t, err)
	assert.Equal(t, 42, old)

	got, err := With("r", func(v int) int { return v })
	require.NoError(t, err)
	assert.Equal(t, 64, got)
}

func TestReplaceDoesNotInsert(t *testing.T) {
	defer Reset()

	_, err := Replace("never", 32)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.False(t, Exists[int]("never"))

	// Same behavior when the bucket already exists but the key does not.
	require.NoError(t, Register("other", 1))
	_, err = Replace("never", 32)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.False(t, Exists[int]("never"))
}

func TestTakeDelegatesToReplace(t *testing.T) {
	defer Reset()

	require.NoError(t, Register("legacy", 1))

	old, err := Take("legacy", 2)
	require.NoError(t, err)
	assert.Equal(t, 1, old)

	got, err := With("legacy", func(v int) int { return v })
	require.NoError(t, err)
	assert.Equal(t, 2, got)
}

func TestSameKeyDifferentTypes(t *testing.T) {
	defer Reset()

	require.NoError(t, Register("shared", 1))
	require.NoError(t, Register("shared", "one"))

	n, err := With("shared", func(v int) int { return v })
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	s, err := With("shared", func(v string) string { return v })
	require.NoError(t, err)
	assert.Equal(t, "one", s)

	// Removing one leaves the other.
	_, err = Remove[int]("shared")
	require.NoError(t, err)
	assert.False(t, Exists[int]("shared"))
	assert.True(t, Exists[string]("shared"))
}

func TestStructValues(t *testing.T) {
	defer Reset()

	type note struct {
		Text string
	}

	require.NoError(t, Register("note", note{}))

	prev, err := Apply("note", func(n *note) string {
		ret := n.Text
		n.Text = "hello"
		return ret
	})
	require.NoError(t, err)
	assert.Equal(t, "", prev)

	prev, err = Apply("note", func(n *note) string {
		ret := n.Text
		n.Text = "goodbye"
		return ret
	})
	require.NoError(t, err)
	assert.Equal(t, "hello", prev)
}

// The full lifecycle of a single entry.
func TestLifecycle(t *testing.T) {
	defer Reset()

	require.NoError(t, Register("a", 1))

	got, err := Apply("a", func(v *int) int {
		*v++
		return *v
	})
	require.NoError(t, err)
	assert.Equal(t, 2, got)

	v, err := Remove[int]("a")
	require.NoError(t, err)
	assert.Equal(t, 2, v)

	assert.False(t, Exists[int]("a"))
}

func TestNilInterfaceValue(t *testing.T) {
	defer Reset()

	require.NoError(t, Register[error]("err", nil))
	assert.True(t, Exists[error]("err"))

	got, err := With("err", func(v error) error { return v })
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestKeysAndTypes(t *testing.T) {
	defer Reset()

	require.NoError(t, Register("beta", 2))
	require.NoError(t, Register("alpha", 1))
	require.NoError(t, Register("s", "str"))

	assert.Equal(t, []string{"alpha", "beta"}, Keys[int]())
	assert.Nil(t, Keys[float64]())
	assert.Equal(t, []string{"int", "string"}, Types())

	// An emptied bucket stays allocated but drops out of Types.
	_, err := Remove[string]("s")
	require.NoError(t, err)
	assert.Equal(t, []string{"int"}, Types())
}

func TestReset(t *testing.T) {
	require.NoError(t, Register("tmp", 1))
	Reset()
	assert.False(t, Exists[int]("tmp"))
}
