package report

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// Format selects a report encoding.
type Format string

// Report formats.
const (
	FormatMarkdown Format = "md"
	FormatHTML     Format = "html"
	FormatTerminal Format = "text"
	FormatXLSX     Format = "xlsx"
)

// ParseFormat accepts a format name or a common alias. Empty means Markdown.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "md", "markdown":
		return FormatMarkdown, nil
	case "html":
		return FormatHTML, nil
	case "text", "txt", "terminal":
		return FormatTerminal, nil
	case "xlsx", "excel":
		return FormatXLSX, nil
	}
	return "", fmt.Errorf("unknown report format %q", s)
}

// ContentType is the MIME type of f.
func (f Format) ContentType() string {
	switch f {
	case FormatHTML:
		return "text/html; charset=utf-8"
	case FormatTerminal:
		return "text/plain; charset=utf-8"
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/markdown; charset=utf-8"
}

// Filename is the suggested download name.
func (f Format) Filename() string {
	ext := string(f)
	if f == FormatTerminal {
		ext = "txt"
	}
	return "report-articoli-vintage." + ext
}

var markdown = goldmark.New(goldmark.WithExtensions(extension.GFM))

// HTML renders the report as a standalone HTML page.
func (r Report) HTML() (string, error) {
	var body bytes.Buffer
	if err := markdown.Convert([]byte(r.Markdown()), &body); err != nil {
		return "", fmt.Errorf("converting markdown: %w", err)
	}
	return "<!DOCTYPE html>\n<html lang=\"it\">\n<head><meta charset=\"utf-8\"><title>" + Title +
		"</title></head>\n<body>\n" + body.String() + "</body>\n</html>\n", nil
}

// Terminal renders the report for a terminal using the named glamour style
// ("dark", "light", "notty", "ascii", ...).
func (r Report) Terminal(style string) (string, error) {
	if style == "" {
		style = "notty"
	}
	out, err := glamour.Render(r.Markdown(), style)
	if err != nil {
		return "", fmt.Errorf("rendering markdown: %w", err)
	}
	return out, nil
}

// Write encodes the report in format f to w.
func (r Report) Write(w io.Writer, f Format) error {
	var out string
	var err error
	switch f {
	case FormatXLSX:
		return r.WriteXLSX(w)
	case FormatHTML:
		out, err = r.HTML()
	case FormatTerminal:
		out, err = r.Terminal("notty")
	default:
		out = r.Markdown()
	}
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, out)
	return err
}
