package ghost

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const sampleListing = `
+-----------+----------------------------+---------+----------------------+------+
| Name      | Location                   | Version | Status               | URL  |
+-----------+----------------------------+---------+----------------------+------+
| blog      | ~/sites/blog               | 5.82.0  | running (production) | http://localhost:2368 |
| docs      | ~/sites/docs               | 5.82.0  | running (production) | http://127.0.0.1:2370 |
| stopped   | ~/sites/stopped            | 5.80.1  | stopped              | n/a  |
+-----------+----------------------------+---------+----------------------+------+
`

func TestExtractLocalURLs(t *testing.T) {
	urls := ExtractLocalURLs(sampleListing)

	assert.Equal(t, []string{
		"http://localhost:2368",
		"http://127.0.0.1:2370",
	}, urls)
}

func TestExtractLocalURLs_None(t *testing.T) {
	assert.Empty(t, ExtractLocalURLs("no sites running"))
	assert.Empty(t, ExtractLocalURLs("https://example.com is remote"))
}

func TestExtractLocalURLs_Deduplicates(t *testing.T) {
	out := "http://localhost:2368 and again http://localhost:2368"
	assert.Equal(t, []string{"http://localhost:2368"}, ExtractLocalURLs(out))
}

func TestParseTitle(t *testing.T) {
	tests := []struct {
		name     string
		html     string
		expected string
	}{
		{"simple", "<html><head><title>My Blog</title></head></html>", "My Blog"},
		{"attributes", `<title data-x="1">Docs</title>`, "Docs"},
		{"whitespace", "<title>\n  Spaced Out\n</title>", "Spaced Out"},
		{"case insensitive", "<TITLE>Loud</TITLE>", "Loud"},
		{"missing", "<html><body>no title</body></html>", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseTitle(tt.html))
		})
	}
}
