package risk

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name     string
		input    Input
		wantSafe bool
		reasons  []string
	}{
		{
			name: "valid contact passes",
			input: Input{
				Phone:   "9876543210",
				Address: "221B Baker Street, Mumbai",
				Pincode: "400001",
			},
			wantSafe: true,
		},
		{
			name: "phone with separators is normalized",
			input: Input{
				Phone:   "+91 98765-43210",
				Address: "221B Baker Street, Mumbai",
				Pincode: "400001",
			},
			wantSafe: true,
		},
		{
			name: "phone too short",
			input: Input{
				Phone:   "12345",
				Address: "221B Baker Street, Mumbai",
				Pincode: "400001",
			},
			wantSafe: false,
			reasons:  []string{"invalid phone number"},
		},
		{
			name: "phone too long",
			input: Input{
				Phone:   "9876543210987",
				Address: "221B Baker Street, Mumbai",
				Pincode: "400001",
			},
			wantSafe: false,
			reasons:  []string{"invalid phone number"},
		},
		{
			name: "address padded with whitespace is trimmed",
			input: Input{
				Phone:   "9876543210",
				Address: "   abc    ",
				Pincode: "400001",
			},
			wantSafe: false,
			reasons:  []string{"address too short"},
		},
		{
			name: "pincode with letters",
			input: Input{
				Phone:   "9876543210",
				Address: "221B Baker Street, Mumbai",
				Pincode: "40000A",
			},
			wantSafe: false,
			reasons:  []string{"invalid pincode"},
		},
		{
			name: "pincode too long",
			input: Input{
				Phone:   "9876543210",
				Address: "221B Baker Street, Mumbai",
				Pincode: "4000012",
			},
			wantSafe: false,
			reasons:  []string{"invalid pincode"},
		},
		{
			name:     "all fields bad reports every reason",
			input:    Input{Phone: "abc", Address: "x", Pincode: ""},
			wantSafe: false,
			reasons:  []string{"invalid phone number", "address too short", "invalid pincode"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Evaluate(tt.input)
			assert.Equal(t, tt.wantSafe, got.Safe)
			assert.Equal(t, tt.reasons, got.Reasons)
		})
	}
}
