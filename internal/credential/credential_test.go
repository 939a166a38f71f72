package credential

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVerify(t *testing.T) {
	t.Parallel()

	set := New("alpha", "beta")

	tests := []struct {
		candidate string
		want      bool
	}{
		{"alpha", true},
		{"beta", true},
		{"gamma", false},
		{"Alpha", false},
		{" alpha", false},
		{"", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, set.Verify(tt.candidate), "candidate %q", tt.candidate)
	}
}

func TestNewIgnoresEmptyPasswords(t *testing.T) {
	t.Parallel()

	set := New("", "alpha", "")
	assert.Equal(t, 1, set.Len())
	assert.False(t, set.Verify(""))
}

func TestNilSetRejectsEverything(t *testing.T) {
	t.Parallel()

	var set *Set
	assert.False(t, set.Verify("alpha"))
	assert.Zero(t, set.Len())
}
