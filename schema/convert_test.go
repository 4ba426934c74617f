package schema

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvert(t *testing.T) {
	t.Run("ints", func(t *testing.T) {
		n, err := convert[int](int64(7))
		require.NoError(t, err)
		assert.Equal(t, 7, n)
		n64, err := convert[int64]([]byte("42"))
		require.NoError(t, err)
		assert.EqualValues(t, 42, n64)
		_, err = convert[int64](1.5)
		require.Error(t, err)
	})
	t.Run("strings", func(t *testing.T) {
		s, err := convert[string]([]byte("ada"))
		require.NoError(t, err)
		assert.Equal(t, "ada", s)
		s, err = convert[string](int64(3))
		require.NoError(t, err)
		assert.Equal(t, "3", s)
		s, err = convert[string](nil)
		require.NoError(t, err)
		assert.Empty(t, s)
	})
	t.Run("bools", func(t *testing.T) {
		b, err := convert[bool](int64(1))
		require.NoError(t, err)
		assert.True(t, b)
		b, err = convert[bool]("false")
		require.NoError(t, err)
		assert.False(t, b)
	})
	t.Run("times", func(t *testing.T) {
		tm, err := convert[time.Time]("2024-03-01 10:11:12")
		require.NoError(t, err)
		assert.Equal(t, 10, tm.Hour())
		tm, err = convert[time.Time]("2024-03-01")
		require.NoError(t, err)
		assert.Equal(t, time.March, tm.Month())
		_, err = convert[time.Time]("soon")
		require.Error(t, err)
	})
	t.Run("pointers", func(t *testing.T) {
		p, err := convert[*string](nil)
		require.NoError(t, err)
		assert.Nil(t, p)
		p, err = convert[*string]([]byte("x"))
		require.NoError(t, err)
		require.NotNil(t, p)
		assert.Equal(t, "x", *p)
		pn, err := convert[*int64](int64(5))
		require.NoError(t, err)
		assert.EqualValues(t, 5, *pn)
	})
	t.Run("uuid", func(t *testing.T) {
		id := uuid.New()
		got, err := convert[uuid.UUID](id.String())
		require.NoError(t, err)
		assert.Equal(t, id, got)
		got, err = convert[uuid.UUID](id[:])
		require.NoError(t, err)
		assert.Equal(t, id, got)
	})
	t.Run("unsupported", func(t *testing.T) {
		type point struct{ X, Y int }
		_, err := convert[point]("1,2")
		require.Error(t, err)
		v, err := convert[point](nil)
		require.NoError(t, err)
		assert.Zero(t, v)
	})
}

func TestStorable(t *testing.T) {
	s := "x"
	assert.Equal(t, "x", storable(&s))
	assert.Nil(t, storable((*string)(nil)))
	assert.Equal(t, 3, storable(3))
	id := uuid.New()
	assert.Equal(t, id.String(), storable(id))
}
