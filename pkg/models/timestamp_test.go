package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    time.Time
		wantErr bool
	}{
		{
			name:  "rfc3339 with zone",
			input: "2024-05-01T10:20:30+02:00",
			want:  time.Date(2024, 5, 1, 8, 20, 30, 0, time.UTC),
		},
		{
			name:  "local date time with fraction",
			input: "2024-05-01T10:20:30.5",
			want:  time.Date(2024, 5, 1, 10, 20, 30, 500000000, time.UTC),
		},
		{
			name:  "local date time without seconds",
			input: "2024-05-01T10:20",
			want:  time.Date(2024, 5, 1, 10, 20, 0, 0, time.UTC),
		},
		{
			name:    "garbage",
			input:   "yesterday",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTimestamp(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got.Time), "got %s want %s", got.Time, tt.want)
		})
	}
}

func TestTimestampJSON(t *testing.T) {
	var log NotificationLog
	require.NoError(t, json.Unmarshal([]byte(`{"id":"n1","sentAt":null}`), &log))
	assert.True(t, log.SentAt.IsZero())

	err := json.Unmarshal([]byte(`{"id":"n1","sentAt":42}`), &log)
	assert.Error(t, err, "numeric timestamps are not accepted")

	ts := NewTimestamp(time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC))
	data, err := json.Marshal(ts)
	require.NoError(t, err)
	assert.Equal(t, `"2024-01-02T03:04:05Z"`, string(data))
}
