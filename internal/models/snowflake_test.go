package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnowflakeMarshalJSON(t *testing.T) {
	t.Run("large values are quoted", func(t *testing.T) {
		raw, err := json.Marshal(Snowflake(519850436899897346))
		require.NoError(t, err)
		assert.Equal(t, `"519850436899897346"`, string(raw))
	})

	t.Run("safe values stay numeric", func(t *testing.T) {
		raw, err := json.Marshal(Snowflake(42))
		require.NoError(t, err)
		assert.Equal(t, `42`, string(raw))
	})

	t.Run("boundary value stays numeric", func(t *testing.T) {
		raw, err := json.Marshal(Snowflake(9007199254740991))
		require.NoError(t, err)
		assert.Equal(t, `9007199254740991`, string(raw))
	})

	t.Run("one past the boundary is quoted", func(t *testing.T) {
		raw, err := json.Marshal(Snowflake(9007199254740992))
		require.NoError(t, err)
		assert.Equal(t, `"9007199254740992"`, string(raw))
	})
}

func TestSnowflakeUnmarshalJSON(t *testing.T) {
	t.Run("accepts quoted strings", func(t *testing.T) {
		var s Snowflake
		require.NoError(t, json.Unmarshal([]byte(`"519850436899897346"`), &s))
		assert.Equal(t, Snowflake(519850436899897346), s)
	})

	t.Run("accepts plain numbers", func(t *testing.T) {
		var s Snowflake
		require.NoError(t, json.Unmarshal([]byte(`42`), &s))
		assert.Equal(t, Snowflake(42), s)
	})

	t.Run("rejects garbage", func(t *testing.T) {
		var s Snowflake
		assert.Error(t, json.Unmarshal([]byte(`"not-a-number"`), &s))
		assert.Error(t, json.Unmarshal([]byte(`true`), &s))
	})
}

func TestSnowflakeRoundTrip(t *testing.T) {
	// The whole point of the string form: a large ID survives marshal,
	// a JS-style decode into float64 would not have.
	in := Snowflake(519850436899897346)
	raw, err := json.Marshal(in)
	require.NoError(t, err)

	var out Snowflake
	require.NoError(t, json.Unmarshal(raw, &out))
	assert.Equal(t, in, out)
}

func TestSnowflakeListScan(t *testing.T) {
	t.Run("array of strings", func(t *testing.T) {
		var l SnowflakeList
		require.NoError(t, l.Scan([]byte(`["519850436899897346", "42"]`)))
		assert.Equal(t, SnowflakeList{519850436899897346, 42}, l)
	})

	t.Run("array of numbers", func(t *testing.T) {
		var l SnowflakeList
		require.NoError(t, l.Scan([]byte(`[42, 7]`)))
		assert.Equal(t, SnowflakeList{42, 7}, l)
	})

	t.Run("nil stays nil", func(t *testing.T) {
		var l SnowflakeList
		require.NoError(t, l.Scan(nil))
		assert.Nil(t, l)
	})
}

func TestSnowflakeListValue(t *testing.T) {
	l := SnowflakeList{519850436899897346, 42}
	v, err := l.Value()
	require.NoError(t, err)
	assert.JSONEq(t, `["519850436899897346", "42"]`, string(v.([]byte)))
}

func TestSnowflakeListContains(t *testing.T) {
	l := SnowflakeList{1, 2, 3}
	assert.True(t, l.Contains(2))
	assert.False(t, l.Contains(4))
}
