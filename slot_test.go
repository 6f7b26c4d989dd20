package xapiand

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlot(t *testing.T) {
	t.Run("MatchesMD5LowBits", func(t *testing.T) {
		assert.Equal(t, uint32(3377919242), Slot("title"))
		assert.Equal(t, uint32(317790168), Slot("year"))
	})

	t.Run("CaseAndSpaceInsensitive", func(t *testing.T) {
		for _, name := range []string{"title", "Title", "  Title", "TITLE\t", " tItLe "} {
			assert.Equal(t, Slot("title"), Slot(name), name)
		}
	})
}

func TestNormalizeValueName(t *testing.T) {
	tests := []struct {
		name string
		want string
		ok   bool
	}{
		{"  Title", "title", true},
		{"_private", "_private", true},
		{"field_2", "field_2", true},
		{"2field", "2field", false},
		{"with space", "with space", true},
		{"dash-name", "dash-name", true},
		{"Geo.Lat", "geo.lat", true},
		{"-dash", "-dash", false},
		{" 9lives", "9lives", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := NormalizeValueName(tt.name)
		assert.Equal(t, tt.want, got, tt.name)
		assert.Equal(t, tt.ok, ok, tt.name)
	}
}
