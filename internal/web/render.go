package web

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"github.com/yuin/goldmark"

	"github.com/hpungsan/quotebook/internal/quote"
)

var viewTemplate = template.Must(template.New("view").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>Quote {{.ID}}</title></head>
<body>
<article>
<header><h1>#{{.ID}}</h1><time>{{.Time}}</time></header>
{{if .File}}<img src="/quotes/{{.ID}}/file" alt="quote {{.ID}}">{{else}}{{.Body}}{{end}}
<footer>{{range .Tags}}<span class="tag">{{.}}</span> {{end}}</footer>
</article>
</body>
</html>
`))

type viewData struct {
	ID   int64
	Time string
	File bool
	Body template.HTML
	Tags []string
}

// renderView renders the HTML page of a quote. Text quotes are treated as
// markdown.
func renderView(q *quote.Quote) ([]byte, error) {
	data := viewData{
		ID:   q.ID,
		Time: q.Time.UTC().Format(time.DateTime),
		File: q.IsLocalFile(),
		Tags: q.Tags.Slice(),
	}
	if !data.File {
		data.Body = renderMarkdown(q.Content)
	}

	var buf bytes.Buffer
	if err := viewTemplate.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("render quote %d: %w", q.ID, err)
	}
	return buf.Bytes(), nil
}

// renderMarkdown converts markdown text to HTML using goldmark. Raw HTML in
// the source is dropped by goldmark's default renderer.
func renderMarkdown(md string) template.HTML {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(md), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(md))
	}
	return template.HTML(buf.String())
}
