package quote

import (
	"regexp"
	"strconv"
)

// referenceRegex matches the "id:" prefix of a rendered quote, optionally
// preceded by the ">" left over from a stripped element.
var referenceRegex = regexp.MustCompile(`>?(\d+):`)

// ParseReference extracts the quote id from rendered quote text.
func ParseReference(content string) (int64, bool) {
	m := referenceRegex.FindStringSubmatch(content)
	if m == nil {
		return 0, false
	}
	id, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
