package ui

import (
	"bytes"
	"strings"
	"testing"

	"github.com/fatih/color"
)

func TestCenter(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		width    int
		expected string
	}{
		{
			name:     "text shorter than width",
			text:     "Hello",
			width:    15,
			expected: "     Hello",
		},
		{
			name:     "text same as width",
			text:     "Hello",
			width:    5,
			expected: "Hello",
		},
		{
			name:     "text longer than width",
			text:     "Hello World",
			width:    5,
			expected: "Hello World",
		},
		{
			name:     "full-width text counts two cells per rune",
			text:     "家計簿",
			width:    10,
			expected: "  家計簿",
		},
		{
			name:     "full-width text wider than width",
			text:     "取引インポート",
			width:    10,
			expected: "取引インポート",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := center(tt.text, tt.width)
			if result != tt.expected {
				t.Errorf("center(%q, %d) = %q; want %q", tt.text, tt.width, result, tt.expected)
			}
		})
	}
}

func TestYen(t *testing.T) {
	tests := []struct {
		amount int64
		want   string
	}{
		{0, "¥0"},
		{980, "¥980"},
		{1000, "¥1,000"},
		{280000, "¥280,000"},
		{1234567, "¥1,234,567"},
		{-3980, "-¥3,980"},
	}
	for _, tt := range tests {
		if got := Yen(tt.amount); got != tt.want {
			t.Errorf("Yen(%d) = %q; want %q", tt.amount, got, tt.want)
		}
	}
}

func captureOutput(t *testing.T, fn func()) string {
	t.Helper()
	var buf bytes.Buffer
	prevOut, prevNoColor := out, color.NoColor
	SetOutput(&buf)
	color.NoColor = true
	t.Cleanup(func() {
		SetOutput(prevOut)
		color.NoColor = prevNoColor
	})
	fn()
	return buf.String()
}

func TestPrinters(t *testing.T) {
	tests := []struct {
		name string
		fn   func()
		want string
	}{
		{"Step", func() { Step(1, 3, "Parsing") }, "[1/3] Parsing\n"},
		{"Success", func() { Success("done") }, "  → done\n"},
		{"Info", func() { Info("note") }, "  → note\n"},
		{"Warning", func() { Warning("careful") }, "  ⚠ careful\n"},
		{"Error", func() { Error("boom") }, "Error: boom\n"},
		{"BlueText", func() { BlueText("blue") }, "blue\n"},
		{"YellowText", func() { YellowText("yellow") }, "yellow\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := captureOutput(t, tt.fn); got != tt.want {
				t.Errorf("got %q; want %q", got, tt.want)
			}
		})
	}
}

func TestHeaderFormat(t *testing.T) {
	out := captureOutput(t, func() { Header("明細インポート") })

	lines := strings.Split(strings.Trim(out, "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d: %q", len(lines), out)
	}
	if lines[0] != strings.Repeat("=", headerWidth) {
		t.Errorf("unexpected rule line %q", lines[0])
	}
	if !strings.HasSuffix(lines[1], "明細インポート") || !strings.HasPrefix(lines[1], " ") {
		t.Errorf("header not centered: %q", lines[1])
	}
}
