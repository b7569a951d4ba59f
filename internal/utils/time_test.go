package utils

import (
	"testing"
	"time"
)

func TestLoadLocation(t *testing.T) {
	tests := []struct {
		name     string
		timezone string
		wantErr  bool
	}{
		{
			name:     "empty string returns local",
			timezone: "",
			wantErr:  false,
		},
		{
			name:     "Local returns local",
			timezone: "Local",
			wantErr:  false,
		},
		{
			name:     "valid timezone UTC",
			timezone: "UTC",
			wantErr:  false,
		},
		{
			name:     "invalid timezone",
			timezone: "Invalid/Timezone",
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loc, err := LoadLocation(tt.timezone)
			if (err != nil) != tt.wantErr {
				t.Errorf("LoadLocation() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if !tt.wantErr && loc == nil {
				t.Errorf("LoadLocation() returned nil location without error")
			}
		})
	}
}

func TestTodayInTimezone(t *testing.T) {
	today, err := TodayInTimezone("UTC")
	if err != nil {
		t.Fatalf("TodayInTimezone() error = %v", err)
	}
	if _, err := ParseDayKey(string(today)); err != nil {
		t.Errorf("TodayInTimezone() returned malformed key %q", today)
	}

	if _, err := TodayInTimezone("Not/AZone"); err == nil {
		t.Error("TodayInTimezone() expected error for invalid timezone")
	}
}

func TestCombineDayAndTime(t *testing.T) {
	got, err := CombineDayAndTime("2026-06-01", "07:45", time.UTC)
	if err != nil {
		t.Fatalf("CombineDayAndTime() error = %v", err)
	}
	want := time.Date(2026, 6, 1, 7, 45, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("CombineDayAndTime() = %v, want %v", got, want)
	}

	if _, err := CombineDayAndTime("2026-06-01", "7pm", time.UTC); err == nil {
		t.Error("CombineDayAndTime() expected error for malformed time")
	}
}

func TestValidateTimeFormat(t *testing.T) {
	tests := map[string]bool{
		"00:00": true,
		"09:30": true,
		"23:59": true,
		"24:00": false,
		"9h30":  false,
		"":      false,
	}
	for in, want := range tests {
		if got := ValidateTimeFormat(in); got != want {
			t.Errorf("ValidateTimeFormat(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestValidateTimezone(t *testing.T) {
	if !ValidateTimezone("") || !ValidateTimezone("Local") || !ValidateTimezone("UTC") {
		t.Error("expected empty, Local and UTC to be valid")
	}
	if ValidateTimezone("Mars/Olympus_Mons") {
		t.Error("expected invalid timezone to be rejected")
	}
}
