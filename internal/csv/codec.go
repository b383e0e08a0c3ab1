// Package csv implements the line-level CSV codec used by the import/export
// engine: an RFC-4180-style field tokenizer and a field escaper that also
// neutralizes spreadsheet formula injection.
package csv

import "strings"

// ParseLine tokenizes one CSV line into fields. A comma outside quotes
// terminates a field, a double quote toggles quoted mode, and a doubled
// quote inside quoted mode unescapes to one literal quote. Trailing empty
// fields are preserved: a line ending in a bare comma yields an extra empty
// field, and callers must tolerate it.
func ParseLine(line string) []string {
	fields := make([]string, 0, 4)
	var current strings.Builder
	inQuotes := false

	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case c == '"':
			if inQuotes && i+1 < len(line) && line[i+1] == '"' {
				current.WriteByte('"')
				i++
			} else {
				inQuotes = !inQuotes
			}
		case c == ',' && !inQuotes:
			fields = append(fields, current.String())
			current.Reset()
		default:
			current.WriteByte(c)
		}
	}

	fields = append(fields, current.String())
	return fields
}

// formulaPrefixes are the characters spreadsheet software interprets as the
// start of a formula when a CSV cell begins with them.
const formulaPrefixes = "=+-@\t\r"

// EscapeField prepares a value for CSV output. Values starting with a
// formula-triggering character are prefixed with a single quote; values
// containing a comma, double quote, or newline are wrapped in double quotes
// with internal quotes doubled. The empty string passes through unchanged.
func EscapeField(value string) string {
	if value == "" {
		return ""
	}

	if strings.ContainsRune(formulaPrefixes, rune(value[0])) {
		value = "'" + value
	}

	if strings.ContainsAny(value, ",\"\n") {
		value = "\"" + strings.ReplaceAll(value, "\"", "\"\"") + "\""
	}

	return value
}
