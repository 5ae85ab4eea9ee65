package mailer

import (
	"fmt"
	"html"
	"strings"
)

// Field is a labelled row in a rendered email.
type Field struct {
	Label string
	Value string
}

// Render wraps a heading, intro line and detail rows in the portal layout.
// Every value is escaped.
func Render(heading, intro string, fields []Field, link string) string {
	var b strings.Builder
	b.WriteString(`<div style="font-family:Arial,sans-serif;max-width:600px;margin:0 auto">`)
	fmt.Fprintf(&b, `<h2 style="color:#006400">%s</h2>`, html.EscapeString(heading))
	if intro != "" {
		fmt.Fprintf(&b, `<p>%s</p>`, html.EscapeString(intro))
	}
	if len(fields) > 0 {
		b.WriteString(`<table style="border-collapse:collapse;width:100%">`)
		for _, f := range fields {
			if f.Value == "" {
				continue
			}
			fmt.Fprintf(&b, `<tr><td style="padding:4px 8px;font-weight:bold">%s</td><td style="padding:4px 8px">%s</td></tr>`,
				html.EscapeString(f.Label), html.EscapeString(f.Value))
		}
		b.WriteString(`</table>`)
	}
	if link != "" {
		fmt.Fprintf(&b, `<p><a href="%s">Open in the PEBEC portal</a></p>`, html.EscapeString(link))
	}
	b.WriteString(`<p style="color:#888;font-size:12px">Presidential Enabling Business Environment Council</p></div>`)
	return b.String()
}
