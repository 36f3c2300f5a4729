// Package csvtext splits decoded statement text into quote-aware lines and fields.
//
// encoding/csv is not used here: callers need the original text of every logical line
// (it is reported back in parse errors) and blank lines must vanish before rows are
// numbered, while quoted fields may still carry commas and line breaks.
package csvtext

import "strings"

// SplitLines splits text into logical lines.
//
// A line ends at "\n" or "\r\n" outside a quoted field. A lone "\r" is dropped.
// Lines containing only whitespace are omitted, so the index of a line in the result
// is its position among non-blank lines, not its position in the file.
// Quoted text is kept verbatim, including doubled quotes.
func SplitLines(text string) []string {
	var (
		lines    []string
		current  strings.Builder
		inQuotes bool
	)

	flush := func() {
		line := current.String()
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
		current.Reset()
	}

	for i := 0; i < len(text); i++ {
		c := text[i]
		switch {
		case c == '"':
			if inQuotes && i+1 < len(text) && text[i+1] == '"' {
				current.WriteString(`""`)
				i++
				continue
			}
			inQuotes = !inQuotes
			current.WriteByte(c)
		case c == '\n' && !inQuotes:
			flush()
		case c == '\r' && !inQuotes && i+1 < len(text) && text[i+1] == '\n':
			flush()
			i++
		case c == '\r':
			// lone carriage return
		default:
			current.WriteByte(c)
		}
	}
	flush()

	return lines
}

// SplitFields splits one logical line on unquoted commas.
// Quotes are removed, a doubled quote inside a quoted field becomes one literal quote,
// and every field is trimmed of surrounding whitespace.
func SplitFields(line string) []string {
	var (
		fields   []string
		current  strings.Builder
		inQuotes bool
	)

	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case c == '"':
			if inQuotes && i+1 < len(line) && line[i+1] == '"' {
				current.WriteByte('"')
				i++
				continue
			}
			inQuotes = !inQuotes
		case c == ',' && !inQuotes:
			fields = append(fields, strings.TrimSpace(current.String()))
			current.Reset()
		default:
			current.WriteByte(c)
		}
	}
	fields = append(fields, strings.TrimSpace(current.String()))

	return fields
}

// Field returns fields[i], or "" when i is negative or out of range.
func Field(fields []string, i int) string {
	if i < 0 || i >= len(fields) {
		return ""
	}
	return fields[i]
}
