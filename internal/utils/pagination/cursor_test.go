package pagination

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode_EmptyTokenIsFirstPage(t *testing.T) {
	c, err := Decode("")
	require.NoError(t, err)
	assert.True(t, c.IsZero())
}

func TestDecode_Garbage(t *testing.T) {
	_, err := Decode("%%%")
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = Decode("bm90LWpzb24=") // "not-json"
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestEncodeDecode(t *testing.T) {
	ts := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	token, err := Encode(At(42, ts))
	require.NoError(t, err)

	c, err := Decode(token)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), c.ID)
	assert.True(t, ts.Equal(c.Time()))
}

func TestPage(t *testing.T) {
	rows := []int{5, 4, 3}
	at := func(v int) Cursor { return Cursor{ID: uint64(v)} }

	page, next := Page(rows, 2, at)
	assert.Equal(t, []int{5, 4}, page)
	require.NotNil(t, next)

	c, err := Decode(*next)
	require.NoError(t, err)
	assert.Equal(t, uint64(4), c.ID)

	page, next = Page(rows, 3, at)
	assert.Len(t, page, 3)
	assert.Nil(t, next)
}
