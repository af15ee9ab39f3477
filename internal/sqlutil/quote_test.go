package sqlutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuoteIdentifier(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "Simple table name",
			input:    "users",
			expected: "`users`",
		},
		{
			name:     "Table with underscore",
			input:    "order_items",
			expected: "`order_items`",
		},
		{
			name:     "Mixed case",
			input:    "MyTable",
			expected: "`MyTable`",
		},
		{
			name:     "Embedded backtick is doubled",
			input:    "my`table",
			expected: "`my``table`",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, QuoteIdentifier(tt.input))
		})
	}
}

func TestIsValidIdentifier(t *testing.T) {
	tests := []struct {
		name  string
		input string
		valid bool
	}{
		{
			name:  "Alphanumeric",
			input: "events2024",
			valid: true,
		},
		{
			name:  "Underscore",
			input: "user_events",
			valid: true,
		},
		{
			name:  "Empty string",
			input: "",
			valid: false,
		},
		{
			name:  "Space",
			input: "user events",
			valid: false,
		},
		{
			name:  "Semicolon",
			input: "events;drop",
			valid: false,
		},
		{
			name:  "Backtick",
			input: "ev`ents",
			valid: false,
		},
		{
			name:  "Dash",
			input: "user-events",
			valid: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.valid, IsValidIdentifier(tt.input))
		})
	}
}

func TestQuoteTable(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "Bare table",
			input:    "events",
			expected: "`events`",
		},
		{
			name:     "Qualified table",
			input:    "app.events",
			expected: "`app`.`events`",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := QuoteTable(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestQuoteTableInvalid(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{
			name:  "Injection attempt",
			input: "events; DROP TABLE users",
		},
		{
			name:  "Too many parts",
			input: "a.b.c",
		},
		{
			name:  "Empty part",
			input: "app.",
		},
		{
			name:  "Empty reference",
			input: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := QuoteTable(tt.input)
			require.Error(t, err)

			var invalidErr *InvalidIdentifierError
			assert.ErrorAs(t, err, &invalidErr)
			assert.Contains(t, err.Error(), "invalid identifier")
		})
	}
}
