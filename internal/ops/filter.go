package ops

import (
	"regexp"

	"github.com/hpungsan/quotebook/internal/quote"
)

// compileFilters compiles each filter as a regular expression. A filter that
// does not compile matches literally.
func compileFilters(filters []string) []*regexp.Regexp {
	res := make([]*regexp.Regexp, 0, len(filters))
	for _, f := range filters {
		if f == "" {
			continue
		}
		re, err := regexp.Compile(f)
		if err != nil {
			re = regexp.MustCompile(regexp.QuoteMeta(f))
		}
		res = append(res, re)
	}
	return res
}

// FilterByTags keeps the quotes whose serialized tag set matches every filter.
func FilterByTags(quotes []quote.Quote, filters []string) []quote.Quote {
	res := compileFilters(filters)
	if len(res) == 0 {
		return quotes
	}

	out := quotes[:0:0]
	for _, q := range quotes {
		tags := q.Tags.String()
		matched := true
		for _, re := range res {
			if !re.MatchString(tags) {
				matched = false
				break
			}
		}
		if matched {
			out = append(out, q)
		}
	}
	return out
}
