package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDuration_UnmarshalString(t *testing.T) {
	var d Duration

	require.NoError(t, json.Unmarshal([]byte(`"30s"`), &d))
	assert.Equal(t, 30*time.Second, time.Duration(d))
}

func TestDuration_UnmarshalNanoseconds(t *testing.T) {
	var d Duration

	require.NoError(t, json.Unmarshal([]byte(`60000000000`), &d))
	assert.Equal(t, time.Minute, time.Duration(d))
}

func TestDuration_UnmarshalInvalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"bad duration string", `"soon"`},
		{"bool", `true`},
		{"object", `{}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d Duration
			assert.Error(t, json.Unmarshal([]byte(tt.data), &d))
		})
	}
}

func TestDuration_MarshalRoundTrip(t *testing.T) {
	d := Duration(90 * time.Second)

	data, err := json.Marshal(d)
	require.NoError(t, err)
	assert.Equal(t, `"1m30s"`, string(data))

	var back Duration
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, d, back)
}
