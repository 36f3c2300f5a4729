package parser

import (
	"fmt"
	"strings"

	"github.com/rumor-ml/commons.systems/kakeibo/internal/csvtext"
)

// RowFunc converts one data row. A non-empty message reports a row error;
// a zero T with an empty message means the row is not data and is skipped.
type RowFunc[T any] func(fields []string) (T, string)

// GuardRow runs fn on fields, converting a panic into a row error message
// so one bad row never aborts the rest of the statement.
func GuardRow[T any](fields []string, fn RowFunc[T]) (out T, message string) {
	defer func() {
		if p := recover(); p != nil {
			var zero T
			out = zero
			if err, ok := p.(error); ok {
				message = fmt.Sprintf(MsgRowPanic, err.Error())
				return
			}
			message = fmt.Sprintf(MsgRowPanic, p)
		}
	}()
	return fn(fields)
}

// DataRow is one non-header line of a statement
type DataRow struct {
	// Number is the 1-based position among non-blank lines
	Number int
	Line   string
	Fields []string
}

// DataRows returns the lines after headerIndex as rows, skipping "#" comment lines
func DataRows(lines []string, headerIndex int) []DataRow {
	rows := make([]DataRow, 0, len(lines))
	for i := headerIndex + 1; i < len(lines); i++ {
		line := lines[i]
		if strings.HasPrefix(strings.TrimSpace(line), "#") {
			continue
		}
		rows = append(rows, DataRow{
			Number: i + 1,
			Line:   line,
			Fields: csvtext.SplitFields(line),
		})
	}
	return rows
}
