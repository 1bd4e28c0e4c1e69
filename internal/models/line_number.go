package models

import (
	"strconv"

	"github.com/m-mizutani/goerr/v2"
)

// LineNumber is a 1-based line position as the user sees it, or the last line
type LineNumber struct {
	number int
	last   bool
}

// LastLine refers to whatever line is last when the number is resolved
var LastLine = LineNumber{last: true}

// NewLineNumber rejects anything below 1
func NewLineNumber(n int) (LineNumber, error) {
	if n < 1 {
		return LineNumber{}, goerr.New("invalid line number. Note that line numbers are 1-based", goerr.V("line", n))
	}
	return LineNumber{number: n}, nil
}

// IsLast reports whether this refers to the last line
func (n LineNumber) IsLast() bool {
	return n.last
}

// Resolve turns the line number into a 0-based row index for a sheet with
// lineCount lines.
func (n LineNumber) Resolve(lineCount int) (int, error) {
	number := n.number
	if n.last {
		number = lineCount
	}
	if number < 1 || number > lineCount {
		return 0, goerr.New("line does not exist in time sheet",
			goerr.V("line", n.String()), goerr.V("line_count", lineCount))
	}
	return number - 1, nil
}

func (n LineNumber) String() string {
	if n.last {
		return "last"
	}
	return strconv.Itoa(n.number)
}
