package toc

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/docserve/internal/foundation/errors"
	"git.home.luguber.info/inful/docserve/internal/util/sets"
)

// maxDepth caps ToC nesting. Real manuals are a handful of levels deep;
// anything beyond this is a malformed or hostile document.
const maxDepth = 32

// Parse decodes a table of contents document. The document is a YAML mapping
// from slug to either a display name string or an object with name, optional
// aliases, and optional nested children. Key order is preserved, which is why
// this walks yaml nodes instead of unmarshaling into a map.
func Parse(data []byte) (Tree, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return Tree{}, errors.WrapError(err, errors.CategoryToc, "parsing table of contents").Build()
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return Tree{}, errors.TocError("table of contents document is empty").Build()
	}

	entries, err := parseMapping(doc.Content[0], 1)
	if err != nil {
		return Tree{}, err
	}
	if len(entries) == 0 {
		return Tree{}, errors.TocError("table of contents has no entries").Build()
	}
	return Tree{Entries: entries}, nil
}

func parseMapping(node *yaml.Node, depth int) ([]Entry, error) {
	if depth > maxDepth {
		return nil, errors.TocError(fmt.Sprintf("table of contents exceeds maximum depth %d", maxDepth)).Build()
	}
	if node.Kind != yaml.MappingNode {
		return nil, tocNodeError(node, "expected a mapping of slugs to entries")
	}

	entries := make([]Entry, 0, len(node.Content)/2)
	seen := make(sets.Set[string], len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, value := node.Content[i], node.Content[i+1]
		if key.Kind != yaml.ScalarNode || key.Value == "" {
			return nil, tocNodeError(key, "entry slug must be a non-empty string")
		}
		slug := key.Value
		if strings.ContainsAny(slug, "/ ") {
			return nil, tocNodeError(key, fmt.Sprintf("entry slug %q must not contain slashes or spaces", slug))
		}
		if seen.Has(slug) {
			return nil, tocNodeError(key, fmt.Sprintf("duplicate entry slug %q", slug))
		}
		seen.Add(slug)

		entry, err := parseEntry(slug, value, depth)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func parseEntry(slug string, value *yaml.Node, depth int) (Entry, error) {
	switch value.Kind {
	case yaml.ScalarNode:
		if value.Tag == "!!null" || value.Value == "" {
			return Entry{}, tocNodeError(value, fmt.Sprintf("entry %q has no display name", slug))
		}
		return Entry{Slug: slug, Name: value.Value}, nil
	case yaml.MappingNode:
		return parseObjectEntry(slug, value, depth)
	default:
		return Entry{}, tocNodeError(value, fmt.Sprintf("entry %q must be a display name or an object", slug))
	}
}

func parseObjectEntry(slug string, node *yaml.Node, depth int) (Entry, error) {
	entry := Entry{Slug: slug}
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, value := node.Content[i], node.Content[i+1]
		switch key.Value {
		case "name":
			if value.Kind != yaml.ScalarNode || value.Value == "" {
				return Entry{}, tocNodeError(value, fmt.Sprintf("entry %q name must be a non-empty string", slug))
			}
			entry.Name = value.Value
		case "aliases":
			aliases, err := parseAliases(slug, value)
			if err != nil {
				return Entry{}, err
			}
			entry.Aliases = aliases
		case "children":
			children, err := parseMapping(value, depth+1)
			if err != nil {
				return Entry{}, err
			}
			entry.Children = children
		default:
			return Entry{}, tocNodeError(key, fmt.Sprintf("entry %q has unknown field %q", slug, key.Value))
		}
	}
	if entry.Name == "" {
		return Entry{}, tocNodeError(node, fmt.Sprintf("entry %q has no display name", slug))
	}
	return entry, nil
}

func parseAliases(slug string, node *yaml.Node) ([]string, error) {
	if node.Kind != yaml.SequenceNode {
		return nil, tocNodeError(node, fmt.Sprintf("entry %q aliases must be a list", slug))
	}
	aliases := make([]string, 0, len(node.Content))
	for _, item := range node.Content {
		if item.Kind != yaml.ScalarNode || item.Value == "" {
			return nil, tocNodeError(item, fmt.Sprintf("entry %q has an empty alias", slug))
		}
		aliases = append(aliases, strings.Trim(item.Value, "/"))
	}
	return aliases, nil
}

func tocNodeError(node *yaml.Node, msg string) error {
	builder := errors.TocError(msg)
	if node != nil && node.Line > 0 {
		builder = builder.WithContext("line", node.Line)
	}
	return builder.Build()
}
