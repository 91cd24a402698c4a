package bundler

import (
	"testing"
)

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		name     string
		n        int64
		expected string
	}{
		{"zero", 0, "0 Bytes"},
		{"negative", -10, "0 Bytes"},
		{"small", 512, "512 Bytes"},
		{"one kibibyte", 1024, "1 KiB"},
		{"fractional", 1536, "1.5 KiB"},
		{"two decimals", 1100, "1.07 KiB"},
		{"one mebibyte", 1024 * 1024, "1 MiB"},
		{"gibibytes", 3 * 1024 * 1024 * 1024, "3 GiB"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := FormatBytes(tt.n)
			if result != tt.expected {
				t.Errorf("FormatBytes(%d) = %q, want %q", tt.n, result, tt.expected)
			}
		})
	}
}

func TestFormatBytes_Decimals(t *testing.T) {
	tests := []struct {
		n        int64
		decimals int
		expected string
	}{
		{1536, 1, "1.5 KiB"},
		{1536, 0, "2 KiB"},
		{1100, 3, "1.074 KiB"},
		{1024, 2, "1 KiB"},
	}

	for _, tt := range tests {
		result := FormatBytes(tt.n, tt.decimals)
		if result != tt.expected {
			t.Errorf("FormatBytes(%d, %d) = %q, want %q", tt.n, tt.decimals, result, tt.expected)
		}
	}
}
