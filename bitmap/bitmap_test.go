package bitmap_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/WesLeeO/unixv6fs/bitmap"
)

func TestSetGetClear_WithinRange(t *testing.T) {
	b := bitmap.New(1, 10)

	assert.False(t, b.Get(4))
	b.Set(4)
	assert.True(t, b.Get(4))
	b.Clear(4)
	assert.False(t, b.Get(4))
}

func TestGetSetClear_OutOfRangeAreNoOps(t *testing.T) {
	b := bitmap.New(5, 9)

	assert.False(t, b.Get(0))
	assert.False(t, b.Get(100))

	b.Set(0)
	b.Set(100)
	assert.False(t, b.Get(0))
	assert.False(t, b.Get(100))

	b.Clear(5)
	assert.False(t, b.Get(5))
}

func TestFirstClear_ReturnsLowestUnsetIndex(t *testing.T) {
	b := bitmap.New(1, 4)
	b.Set(1)
	b.Set(2)

	idx, ok := b.FirstClear()
	require.True(t, ok)
	assert.Equal(t, 3, idx)
}

func TestFirstClear_FalseWhenFull(t *testing.T) {
	b := bitmap.New(1, 2)
	b.Set(1)
	b.Set(2)

	_, ok := b.FirstClear()
	assert.False(t, ok)
}

func TestNew_ClampsInvertedRange(t *testing.T) {
	b := bitmap.New(10, 3)
	assert.Equal(t, 10, b.Min)
	assert.Equal(t, 10, b.Max)
}

func TestPrint_IncludesLabelAndRange(t *testing.T) {
	b := bitmap.New(0, 3)
	b.Set(1)
	b.Set(3)

	var out bytes.Buffer
	b.Print(&out, "INODES")

	s := out.String()
	assert.Contains(t, s, "INODES")
	assert.Contains(t, s, "[0, 3]")
	assert.Contains(t, s, "0101")
}
