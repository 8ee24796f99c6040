package http

import (
	"net/url"
	"testing"
	"time"
)

func TestFormatPesos(t *testing.T) {
	tests := []struct {
		cents int64
		want  string
	}{
		{0, "$0,00"},
		{5, "$0,05"},
		{100, "$1,00"},
		{123456, "$1.234,56"},
		{100000000, "$1.000.000,00"},
		{99999, "$999,99"},
		{-123456, "-$1.234,56"},
	}

	for _, tt := range tests {
		if got := formatPesos(tt.cents); got != tt.want {
			t.Errorf("formatPesos(%d) = %q, want %q", tt.cents, got, tt.want)
		}
	}
}

func TestParseMonthParams(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name      string
		query     url.Values
		wantYear  int
		wantMonth int
	}{
		{"explicit", url.Values{"year": {"2024"}, "month": {"2"}}, 2024, 2},
		{"empty falls back to now", url.Values{}, now.Year(), int(now.Month())},
		{"month out of range", url.Values{"year": {"2024"}, "month": {"13"}}, 2024, int(now.Month())},
		{"month zero", url.Values{"year": {"2024"}, "month": {"0"}}, 2024, int(now.Month())},
		{"year out of range", url.Values{"year": {"1984"}, "month": {"6"}}, now.Year(), 6},
		{"garbage", url.Values{"year": {"abc"}, "month": {"xyz"}}, now.Year(), int(now.Month())},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseMonthParams(tt.query)
			if got.Year != tt.wantYear || got.Month != tt.wantMonth {
				t.Errorf("ParseMonthParams(%v) = %+v, want year=%d month=%d",
					tt.query, got, tt.wantYear, tt.wantMonth)
			}
		})
	}
}

func TestSanitizeInput(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"  hola  ", "hola"},
		{"alquiler\x00depto", "alquilerdepto"},
		{"línea\nnueva", "línea\nnueva"},
		{"\x1b[31mrojo\x1b[0m", "[31mrojo[0m"},
	}

	for _, tt := range tests {
		if got := sanitizeInput(tt.in); got != tt.want {
			t.Errorf("sanitizeInput(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
