// Package frontmatter splits YAML front matter from markdown page sources.
// Pages are read-only here; there is no write-back, so original formatting
// is not preserved.
package frontmatter

import (
	"bytes"
	"errors"

	"gopkg.in/yaml.v3"
)

// ErrMissingClosingDelimiter indicates the page started with a front matter
// delimiter but never closed it.
var ErrMissingClosingDelimiter = errors.New("front matter opening delimiter found but closing delimiter is missing")

// Document is a markdown page source split into metadata and body.
type Document struct {
	Fields map[string]any
	Body   []byte
}

// Title returns the front matter title override, if present and a string.
func (d Document) Title() (string, bool) {
	title, ok := d.Fields["title"].(string)
	if !ok || title == "" {
		return "", false
	}
	return title, true
}

// Split separates `---` delimited YAML front matter from the markdown body.
// Pages without front matter come back with empty Fields and the full input
// as Body. Both LF and CRLF sources are handled.
func Split(content []byte) (Document, error) {
	nl := detectNewline(content)

	open := []byte("---" + nl)
	if !bytes.HasPrefix(content, open) {
		return Document{Fields: map[string]any{}, Body: content}, nil
	}

	rest := content[len(open):]

	// An immediately closed block is empty front matter.
	if bytes.HasPrefix(rest, open) {
		return Document{Fields: map[string]any{}, Body: rest[len(open):]}, nil
	}

	closeSeq := []byte(nl + "---" + nl)
	idx := bytes.Index(rest, closeSeq)
	if idx < 0 {
		return Document{}, ErrMissingClosingDelimiter
	}

	raw := rest[:idx+len(nl)]
	body := rest[idx+len(closeSeq):]

	fields, err := parseFields(raw)
	if err != nil {
		return Document{}, err
	}
	return Document{Fields: fields, Body: body}, nil
}

func parseFields(raw []byte) (map[string]any, error) {
	var fields map[string]any
	if err := yaml.Unmarshal(raw, &fields); err != nil {
		return nil, err
	}
	if fields == nil {
		fields = map[string]any{}
	}
	return fields, nil
}

func detectNewline(content []byte) string {
	for i := 0; i+1 < len(content); i++ {
		if content[i] == '\r' && content[i+1] == '\n' {
			return "\r\n"
		}
		if content[i] == '\n' {
			return "\n"
		}
	}
	return "\n"
}
