package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanonical(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"1.2.3", "v1.2.3", false},
		{"v1.2", "v1.2.0", false},
		{" 0.3.0 ", "v0.3.0", false},
		{"banana", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Canonical(tt.in)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalid)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCheckCompatible(t *testing.T) {
	assert.NoError(t, CheckCompatible("", "1.0.0"))
	assert.NoError(t, CheckCompatible("1.4.0", "1.0.0"))
	assert.NoError(t, CheckCompatible("0.9.0", "1.0.0"))
	assert.NoError(t, CheckCompatible("2.0.0", "(devel)"))
	assert.ErrorIs(t, CheckCompatible("2.0.0", "1.9.9"), ErrNewerMajor)
	assert.ErrorIs(t, CheckCompatible("nope", "1.0.0"), ErrInvalid)
}
