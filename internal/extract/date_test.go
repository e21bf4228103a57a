package extract

import (
	"testing"
	"time"
)

func TestParsePresentationDate(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
		ok   bool
	}{
		{"30/07/2025", time.Date(2025, time.July, 30, 0, 0, 0, 0, time.UTC), true},
		{"01/02/2024 14:30", time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC), true},
		{"30 de Julho de 2025", time.Date(2025, time.July, 30, 0, 0, 0, 0, time.UTC), true},
		{"5 de março de 2024", time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC), true},
		{"5 de MARÇO de 2024", time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC), true},
		{"31/02/2025", time.Time{}, false},
		{"30 de smarch de 2025", time.Time{}, false},
		{"ontem", time.Time{}, false},
		{"", time.Time{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParsePresentationDate(tt.in)
			if ok != tt.ok {
				t.Fatalf("ParsePresentationDate(%q) ok = %v, want %v", tt.in, ok, tt.ok)
			}
			if !got.Equal(tt.want) {
				t.Errorf("ParsePresentationDate(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}
