package sms

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSMSCapable(t *testing.T) {
	t.Parallel()
	carrier := func(v interface{}) *interface{} { return &v }

	testCases := []struct {
		name    string
		carrier *interface{}
		want    bool
	}{
		{
			name:    "no carrier data",
			carrier: nil,
			want:    true,
		},
		{
			name:    "mobile",
			carrier: carrier(map[string]interface{}{"type": "mobile", "name": "T-Mobile USA"}),
			want:    true,
		},
		{
			name:    "voip",
			carrier: carrier(map[string]interface{}{"type": "voip"}),
			want:    true,
		},
		{
			name:    "landline",
			carrier: carrier(map[string]interface{}{"type": "landline"}),
			want:    false,
		},
		{
			name:    "landline case-insensitive",
			carrier: carrier(map[string]interface{}{"type": "Landline"}),
			want:    false,
		},
		{
			name:    "type missing",
			carrier: carrier(map[string]interface{}{"name": "unknown"}),
			want:    true,
		},
		{
			name:    "type not a string",
			carrier: carrier(map[string]interface{}{"type": 7}),
			want:    true,
		},
		{
			name:    "carrier not an object",
			carrier: carrier("landline"),
			want:    true,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, smsCapable(tc.carrier))
		})
	}
}
