// Package batch orchestrates asynchronous classification jobs against the
// Message Batches API: submit, poll, retrieve with strict row alignment, and
// cancel, with durable local tracking across restarts.
package batch

import (
	"fmt"
	"regexp"
	"strconv"
)

// Custom IDs bind each batch request to its originating row. The format is
// load-bearing: result reconstruction parses the row index back out, so any
// change here breaks alignment for in-flight jobs.
const customIDFormat = "payee-%d-%d"

var customIDPattern = regexp.MustCompile(`^payee-(\d+)-(\d+)$`)

// FormatCustomID builds the request identifier for one name: the origin row
// index plus the name's position in the submitted array.
func FormatCustomID(originRowIndex, arrayPosition int) string {
	return fmt.Sprintf(customIDFormat, originRowIndex, arrayPosition)
}

// ParseCustomID extracts the origin row index and array position from a
// request identifier. Returns ok=false for anything that does not match the
// fixed format.
func ParseCustomID(id string) (originRowIndex, arrayPosition int, ok bool) {
	m := customIDPattern.FindStringSubmatch(id)
	if m == nil {
		return 0, 0, false
	}
	row, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, 0, false
	}
	pos, err := strconv.Atoi(m[2])
	if err != nil {
		return 0, 0, false
	}
	return row, pos, true
}
