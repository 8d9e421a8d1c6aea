package housekeeper

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"housekeeper/internal/shared"
)

func TestParseEvery(t *testing.T) {
	tests := []struct {
		spec    string
		want    time.Duration
		wantErr bool
	}{
		{spec: "@every 30s", want: 30 * time.Second},
		{spec: "1h", want: time.Hour},
		{spec: "  @every 1m30s ", want: 90 * time.Second},
		{spec: "1500ms", want: time.Second},
		{spec: "", wantErr: true},
		{spec: "@hourly", wantErr: true},
		{spec: "*/5 * * * *", wantErr: true},
		{spec: "soon", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.spec, func(t *testing.T) {
			got, err := ParseEvery(tt.spec)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, shared.IsValidation(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
