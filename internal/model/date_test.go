package model

import (
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		input   string
		want    time.Time
		wantErr bool
	}{
		{"01/01/2020", time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC), false},
		{"1/2/2020", time.Date(2020, 2, 1, 0, 0, 0, 0, time.UTC), false},
		{"31/12/1999", time.Date(1999, 12, 31, 0, 0, 0, 0, time.UTC), false},
		{" 15/06/2021 ", time.Date(2021, 6, 15, 0, 0, 0, 0, time.UTC), false},
		{"2020-01-01", time.Time{}, true},
		{"01/13/2020", time.Time{}, true},
		{"00/01/2020", time.Time{}, true},
		{"aa/01/2020", time.Time{}, true},
		{"", time.Time{}, true},
	}

	for _, tt := range tests {
		got, err := ParseDate(tt.input, time.UTC)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseDate(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && !got.Equal(tt.want) {
			t.Errorf("ParseDate(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestFormatDate(t *testing.T) {
	got := FormatDate(time.Date(2024, 3, 7, 15, 4, 5, 0, time.UTC))
	if got != "07/03/2024" {
		t.Errorf("FormatDate = %q, want %q", got, "07/03/2024")
	}
}

func TestFormatDateInput(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"", ""},
		{"1", "1"},
		{"12", "12"},
		{"123", "12/3"},
		{"1203", "12/03"},
		{"12032", "12/03/2"},
		{"12032024", "12/03/2024"},
		{"120320245", "12/03/2024"},
		{"12/03/2024", "12/03/2024"},
		{"ab12-03x2024", "12/03/2024"},
	}

	for _, tt := range tests {
		if got := FormatDateInput(tt.input); got != tt.want {
			t.Errorf("FormatDateInput(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestNormalizeDate(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"01012020", "01/01/2020"},
		{"01-01-2020", "01/01/2020"},
		{"01/01/2020", "01/01/2020"},
		{"1/1/2020", "1/1/2020"},
		{"gennaio 2020", "gennaio 2020"},
	}

	for _, tt := range tests {
		if got := NormalizeDate(tt.input); got != tt.want {
			t.Errorf("NormalizeDate(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
