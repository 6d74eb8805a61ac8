package tui

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"golang.org/x/text/width"

	"github.com/goliatone/go-intakeqc/pkg/render"
)

// Name is the registry name of the text renderer.
const Name = "tui"

// Renderer prints pages as plain text tables for terminal output.
type Renderer struct {
	theme Theme
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs the text renderer.
func New(options ...Option) *Renderer {
	cfg := newConfig(options)
	return &Renderer{theme: cfg.theme}
}

func (r *Renderer) Name() string {
	return Name
}

func (r *Renderer) ContentType() string {
	return "text/plain; charset=utf-8"
}

// Render writes a header, any flash notices, then the page body.
func (r *Renderer) Render(ctx context.Context, page render.Page, options render.RenderOptions) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if page.Title != "" {
		fmt.Fprintf(&buf, "%s\n%s\n", page.Title, strings.Repeat("=", displayWidth(page.Title)))
	}
	for _, notice := range options.Flash {
		prefix := r.theme.SuccessPrefix
		if notice.Level == render.FlashError {
			prefix = r.theme.ErrorPrefix
		}
		fmt.Fprintf(&buf, "%s %s\n", prefix, notice.Message)
	}

	switch page.Kind {
	case render.KindIndex:
		rows := make([][]string, 0, len(page.Links))
		for _, link := range page.Links {
			rows = append(rows, []string{link.Name, link.Title, link.Href})
		}
		writeTable(&buf, []string{"RESOURCE", "TITLE", "ROUTE"}, rows)
	case render.KindList:
		r.writeList(&buf, page.List)
	case render.KindDetail:
		r.writeDetail(&buf, page.Detail, options.Errors)
	case render.KindSession:
		if page.Session != nil && page.Session.SignedIn {
			buf.WriteString("signed in")
			if !page.Session.ExpiresAt.IsZero() {
				fmt.Fprintf(&buf, " until %s", page.Session.ExpiresAt.Format("2006-01-02 15:04"))
			}
			buf.WriteByte('\n')
		} else {
			buf.WriteString("signed out\n")
		}
	}
	if page.Message != "" {
		fmt.Fprintln(&buf, page.Message)
	}
	return buf.Bytes(), nil
}

func (r *Renderer) writeList(buf *bytes.Buffer, list *render.ListView) {
	if list == nil {
		return
	}
	if list.Error != "" {
		fmt.Fprintf(buf, "%s %s\n", r.theme.ErrorPrefix, list.Error)
		return
	}
	headers := []string{"", "ASSETNO"}
	for _, column := range list.Columns {
		headers = append(headers, column.Label)
	}
	rows := make([][]string, 0, len(list.Rows))
	for _, row := range list.Rows {
		mark := ""
		if row.Selected {
			mark = "*"
		}
		rows = append(rows, append([]string{mark, row.AssetNo}, row.Cells...))
	}
	writeTable(buf, headers, rows)
	fmt.Fprintf(buf, "%d건\n", list.Total)
}

func (r *Renderer) writeDetail(buf *bytes.Buffer, detail *render.DetailView, extra map[string][]string) {
	if detail == nil {
		return
	}
	summary := make([][]string, 0, len(detail.Summary))
	for _, item := range detail.Summary {
		summary = append(summary, []string{item.Label, item.Value})
	}
	writeTable(buf, nil, summary)
	if len(summary) > 0 {
		buf.WriteByte('\n')
	}

	for _, field := range render.ApplyErrors(detail.Fields, extra) {
		name := field.Label
		if field.Required {
			name += " *"
		}
		value := field.Value
		if len(field.Options) > 0 {
			value += "  [" + strings.Join(field.Options, "|") + "]"
		}
		fmt.Fprintf(buf, "%s: %s\n", pad(name, 16), value)
		for _, message := range field.Errors {
			fmt.Fprintf(buf, "%s %s\n", pad("", 16), r.theme.ErrorPrefix+" "+message)
		}
	}
	for _, message := range detail.FormErrors {
		fmt.Fprintf(buf, "%s %s\n", r.theme.ErrorPrefix, message)
	}
}

func writeTable(buf *bytes.Buffer, headers []string, rows [][]string) {
	cols := len(headers)
	for _, row := range rows {
		if len(row) > cols {
			cols = len(row)
		}
	}
	if cols == 0 {
		return
	}
	widths := make([]int, cols)
	measure := func(cells []string) {
		for i, cell := range cells {
			if w := displayWidth(cell); w > widths[i] {
				widths[i] = w
			}
		}
	}
	measure(headers)
	for _, row := range rows {
		measure(row)
	}

	line := func(cells []string) {
		parts := make([]string, cols)
		for i := range parts {
			cell := ""
			if i < len(cells) {
				cell = cells[i]
			}
			parts[i] = pad(cell, widths[i])
		}
		buf.WriteString(strings.TrimRight(strings.Join(parts, "  "), " "))
		buf.WriteByte('\n')
	}
	if len(headers) > 0 {
		line(headers)
	}
	for _, row := range rows {
		line(row)
	}
}

// displayWidth counts East Asian wide and fullwidth runes as two columns.
func displayWidth(s string) int {
	n := 0
	for _, r := range s {
		switch width.LookupRune(r).Kind() {
		case width.EastAsianWide, width.EastAsianFullwidth:
			n += 2
		default:
			n++
		}
	}
	return n
}

func pad(s string, w int) string {
	if gap := w - displayWidth(s); gap > 0 {
		return s + strings.Repeat(" ", gap)
	}
	return s
}
