package quote

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
)

// FilePath returns the storage path of a quote's attachment.
func FilePath(dataDir string, id int64) string {
	return filepath.Join(dataDir, strconv.FormatInt(id, 10))
}

// FileURL returns a file:// URL for a quote's attachment.
func FileURL(dataDir string, id int64) string {
	abs, err := filepath.Abs(FilePath(dataDir, id))
	if err != nil {
		abs = FilePath(dataDir, id)
	}
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}
	return u.String()
}

// Render formats a quote as "id:[tags]content". File-backed quotes embed an
// image element pointing at the local file instead of their content string.
func Render(q *Quote, dataDir string, withTags bool) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d:", q.ID)
	if withTags {
		b.WriteString(q.Tags.String())
	}
	if q.IsLocalFile() {
		fmt.Fprintf(&b, `<img src="%s">`, FileURL(dataDir, q.ID))
	} else {
		b.WriteString(q.Content)
	}
	return b.String()
}

// ListLine formats a quote as "id:tags" for listings.
func ListLine(q *Quote) string {
	return q.ToSummary().Line()
}

// Line formats the summary as "id:tags".
func (s Summary) Line() string {
	return fmt.Sprintf("%d:%s", s.ID, NewTagSet(s.Tags...).String())
}
