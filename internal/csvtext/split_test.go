package csvtext

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitLines(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{
			name:     "LF terminated",
			input:    "a,b\nc,d\n",
			expected: []string{"a,b", "c,d"},
		},
		{
			name:     "CRLF terminated",
			input:    "a,b\r\nc,d\r\n",
			expected: []string{"a,b", "c,d"},
		},
		{
			name:     "no trailing newline",
			input:    "a,b\nc,d",
			expected: []string{"a,b", "c,d"},
		},
		{
			name:     "blank and whitespace-only lines dropped",
			input:    "a,b\n\n   \n\t\nc,d\n\n",
			expected: []string{"a,b", "c,d"},
		},
		{
			name:     "lone CR dropped",
			input:    "a\rb,c\nd",
			expected: []string{"ab,c", "d"},
		},
		{
			name:     "newline inside quotes kept",
			input:    "\"multi\nline\",x\ny,z",
			expected: []string{"\"multi\nline\",x", "y,z"},
		},
		{
			name:     "CRLF inside quotes keeps LF only",
			input:    "\"multi\r\nline\",x\r\ny",
			expected: []string{"\"multi\nline\",x", "y"},
		},
		{
			name:     "doubled quote preserved verbatim",
			input:    "\"say \"\"hi\"\"\",1\n2",
			expected: []string{"\"say \"\"hi\"\"\",1", "2"},
		},
		{
			name:     "empty input",
			input:    "",
			expected: nil,
		},
		{
			name:     "ideographic space only",
			input:    "　\na",
			expected: []string{"a"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SplitLines(tt.input))
		})
	}
}

func TestSplitFields(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{
			name:     "plain",
			input:    "2024/04/18,給与,,280000,500000",
			expected: []string{"2024/04/18", "給与", "", "280000", "500000"},
		},
		{
			name:     "quoted comma",
			input:    `"2024/04/18","1,500","コンビニ"`,
			expected: []string{"2024/04/18", "1,500", "コンビニ"},
		},
		{
			name:     "doubled quote",
			input:    `"say ""hi""",x`,
			expected: []string{`say "hi"`, "x"},
		},
		{
			name:     "trim after decode",
			input:    ` a , " b " ,c `,
			expected: []string{"a", "b", "c"},
		},
		{
			name:     "embedded newline",
			input:    "\"line1\nline2\",x",
			expected: []string{"line1\nline2", "x"},
		},
		{
			name:     "trailing comma yields empty field",
			input:    "a,b,",
			expected: []string{"a", "b", ""},
		},
		{
			name:     "empty line",
			input:    "",
			expected: []string{""},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SplitFields(tt.input))
		})
	}
}

func TestSplitLinesThenFields(t *testing.T) {
	text := "ご利用日,ご利用店名\r\n2024/05/01,\"AMAZON, \"\"JP\"\"\r\nMARKETPLACE\"\r\n"

	lines := SplitLines(text)
	if assert.Len(t, lines, 2) {
		fields := SplitFields(lines[1])
		assert.Equal(t, []string{"2024/05/01", "AMAZON, \"JP\"\nMARKETPLACE"}, fields)
	}
}

func TestField(t *testing.T) {
	fields := []string{"a", "b"}
	assert.Equal(t, "a", Field(fields, 0))
	assert.Equal(t, "b", Field(fields, 1))
	assert.Equal(t, "", Field(fields, 2))
	assert.Equal(t, "", Field(fields, -1))
}
