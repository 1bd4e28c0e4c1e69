package commands

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/m-mizutani/goerr/v2"
)

// PrintError writes err and its chain of causes, followed by any values
// attached along the way.
func PrintError(w io.Writer, err error) {
	var causes []string
	for e := err; e != nil; e = errors.Unwrap(e) {
		msg := e.Error()
		if next := errors.Unwrap(e); next != nil {
			// Wrappers that only forward the message add nothing
			if msg == next.Error() {
				continue
			}
			msg = strings.TrimSuffix(msg, ": "+next.Error())
		}
		causes = append(causes, msg)
	}

	fmt.Fprintf(w, "Error: %s\n", causes[0])
	if len(causes) > 1 {
		fmt.Fprintln(w, "\nCaused by:")
		for i, cause := range causes[1:] {
			fmt.Fprintf(w, "    %d: %s\n", i, cause)
		}
	}

	if goErr := goerr.Unwrap(err); goErr != nil {
		values := goErr.Values()
		if len(values) == 0 {
			return
		}
		keys := make([]string, 0, len(values))
		for k := range values {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		fmt.Fprintln(w, "\nDetails:")
		for _, k := range keys {
			fmt.Fprintf(w, "    %s: %v\n", k, values[k])
		}
	}
}
