package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMode(t *testing.T) {
	tests := []struct {
		raw     string
		want    Mode
		wantErr bool
	}{
		{raw: "", want: ModeImport},
		{raw: "import", want: ModeImport},
		{raw: "preview", want: ModePreview},
		{raw: " SYNC ", want: ModeSync},
		{raw: "delete", wantErr: true},
		{raw: "dry-run", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			mode, err := ParseMode(tt.raw)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidMode)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, mode)
		})
	}
}

func TestMode_Mutates(t *testing.T) {
	assert.False(t, ModePreview.Mutates())
	assert.True(t, ModeImport.Mutates())
	assert.True(t, ModeSync.Mutates())
}
