package resolution

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsGenericSpeaker(t *testing.T) {
	tests := []struct {
		name    string
		label   string
		generic bool
	}{
		{"numbered speaker", "Speaker 1", true},
		{"numbered speaker lowercase", "speaker 12", true},
		{"numbered speaker mixed case", "SPEAKER 3", true},
		{"unknown", "Unknown", true},
		{"guest lowercase", "guest", true},
		{"participant", "Participant", true},
		{"padded placeholder", "  Guest  ", true},
		{"empty label", "", true},
		{"whitespace only", "   ", true},
		{"real name", "Alice Nguyen", false},
		{"name containing speaker", "Speaker of the House", false},
		{"speaker without number", "Speaker", false},
		{"speaker with suffix", "Speaker 1b", false},
		{"placeholder as substring", "Unknown Artist", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.generic, IsGenericSpeaker(tt.label))
		})
	}
}

func TestAnyGenericSpeaker(t *testing.T) {
	assert.True(t, AnyGenericSpeaker([]string{"Alice", "Speaker 2", "Bob"}))
	assert.False(t, AnyGenericSpeaker([]string{"Alice", "Bob"}))
	assert.False(t, AnyGenericSpeaker(nil))
}

func TestGenericSpeakers(t *testing.T) {
	got := GenericSpeakers([]string{"Speaker 1", "Alice", "Guest", "Bob"})
	assert.Equal(t, []string{"Speaker 1", "Guest"}, got)

	assert.Nil(t, GenericSpeakers([]string{"Alice", "Bob"}))
}
