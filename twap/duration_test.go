package twap_test

import (
	"testing"

	"github.com/swaplane/twap-engine/twap"
)

func Test_DurationFromMillis(t *testing.T) {
	tests := []struct {
		name     string
		millis   int64
		wantUnit twap.Unit
		wantVal  float64
	}{
		{
			name:     "exact hours",
			millis:   2 * 60 * 60 * 1000,
			wantUnit: twap.Hours,
			wantVal:  2,
		},
		{
			name:     "fits days",
			millis:   36 * 60 * 60 * 1000,
			wantUnit: twap.Days,
			wantVal:  1.5,
		},
		{
			name:     "below a minute falls back to minutes",
			millis:   30 * 1000,
			wantUnit: twap.Minutes,
			wantVal:  0.5,
		},
		{
			name:     "exact weeks",
			millis:   7 * 24 * 60 * 60 * 1000,
			wantUnit: twap.Weeks,
			wantVal:  1,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			d := twap.DurationFromMillis(tc.millis)
			if d.Unit != tc.wantUnit {
				t.Errorf("expected unit %d, got %d", tc.wantUnit, d.Unit)
			}
			if d.Value != tc.wantVal {
				t.Errorf("expected value %f, got %f", tc.wantVal, d.Value)
			}
			if d.Millis() != tc.millis {
				t.Errorf("expected round trip %d, got %d", tc.millis, d.Millis())
			}
		})
	}
}
