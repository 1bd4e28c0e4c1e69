package parser

import (
	"strconv"
	"strings"

	"github.com/m-mizutani/goerr/v2"

	"github.com/maconomy-cli/maconomy/internal/models"
)

// ParseLineNumber accepts a 1-based line number or the literal "last"
func ParseLineNumber(input string) (models.LineNumber, error) {
	input = strings.TrimSpace(input)
	if strings.EqualFold(input, "last") {
		return models.LastLine, nil
	}

	n, err := strconv.ParseUint(input, 10, 8)
	if err != nil {
		return models.LineNumber{}, goerr.Wrap(err, "failed to parse line number", goerr.V("line", input))
	}
	return models.NewLineNumber(int(n))
}
