package valueobjects

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"lowercases", "Chemistry", "chemistry"},
		{"spaces become hyphens", "Payment Processing", "payment-processing"},
		{"punctuation collapses", "(Default Domain-Product)", "default-domain-product"},
		{"repeated separators collapse", "a  --  b", "a-b"},
		{"digits survive", "Team 42", "team-42"},
		{"already slugged", "billing-core", "billing-core"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Slugify(tt.in))
		})
	}
}

func TestSlugifyCaseInsensitiveCollision(t *testing.T) {
	assert.Equal(t, Slugify("Data Platform"), Slugify("data_platform"))
}
