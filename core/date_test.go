package core

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDate_DaysUntil(t *testing.T) {
	tests := []struct {
		from, to string
		want     int
	}{
		{"2024-01-31", "2024-03-01", 30}, // leap year
		{"2024-01-30", "2024-03-01", 31},
		{"2024-03-01", "2024-03-01", 0},
		{"2024-03-02", "2024-03-01", -1},
		{"2023-12-31", "2024-01-01", 1},
	}
	for _, tt := range tests {
		from, err := ParseDate(tt.from)
		require.NoError(t, err)
		to, err := ParseDate(tt.to)
		require.NoError(t, err)
		assert.Equal(t, tt.want, from.DaysUntil(to), "%s -> %s", tt.from, tt.to)
	}
}

func TestDateOf(t *testing.T) {
	loc := time.FixedZone("EAT", 3*60*60)
	d := DateOf(time.Date(2024, time.May, 1, 23, 30, 0, 0, loc))
	assert.Equal(t, NewDate(2024, time.May, 1), d)
	assert.Equal(t, "2024-05-01", d.String())
}

func TestDate_JSON(t *testing.T) {
	var v struct {
		Date Date `json:"date"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"date": "2024-02-29"}`), &v))
	assert.Equal(t, NewDate(2024, time.February, 29), v.Date)

	data, err := json.Marshal(v)
	require.NoError(t, err)
	assert.JSONEq(t, `{"date": "2024-02-29"}`, string(data))

	assert.Error(t, json.Unmarshal([]byte(`{"date": "2024-02-30"}`), &v))
	assert.Error(t, json.Unmarshal([]byte(`{"date": 20240229}`), &v))
}

func TestDate_Scan(t *testing.T) {
	var d Date
	require.NoError(t, d.Scan(time.Date(2024, time.June, 3, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "2024-06-03", d.String())

	require.NoError(t, d.Scan([]byte("2024-06-04T00:00:00Z")))
	assert.Equal(t, "2024-06-04", d.String())

	require.NoError(t, d.Scan(nil))
	assert.True(t, d.IsZero())

	assert.Error(t, d.Scan(42))
}
