package model

import "testing"

func TestFrequencyValid(t *testing.T) {
	for _, f := range []Frequency{FrequencyDaily, FrequencyWeekdays, FrequencyWeekends} {
		if !f.Valid() {
			t.Errorf("%q should be valid", f)
		}
	}
	for _, f := range []Frequency{"", "hourly", "DAILY", "daily "} {
		if f.Valid() {
			t.Errorf("%q should not be valid", f)
		}
	}
}

func TestFrequencyLabel(t *testing.T) {
	tests := []struct {
		f    Frequency
		want string
	}{
		{FrequencyDaily, "every day"},
		{FrequencyWeekdays, "on weekdays"},
		{FrequencyWeekends, "on weekends"},
		{Frequency("custom"), "custom"},
	}
	for _, tt := range tests {
		if got := tt.f.Label(); got != tt.want {
			t.Errorf("Label(%q) = %q, want %q", tt.f, got, tt.want)
		}
	}
}
