package vault

import (
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// ExtractFrontmatter splits content into its leading YAML frontmatter
// mapping and the body below it. Content without a well-formed block, or
// with a block that is not valid YAML, yields an empty mapping and the
// whole content as body.
func ExtractFrontmatter(content string) (map[string]any, string) {
	block, body, ok := splitFrontmatter(content)
	if !ok {
		return map[string]any{}, content
	}

	fm := map[string]any{}
	if err := yaml.Unmarshal([]byte(block), &fm); err != nil {
		return map[string]any{}, content
	}
	if fm == nil {
		fm = map[string]any{}
	}
	return fm, body
}

// MergeFrontmatter merges updates into the frontmatter block of content,
// leaving the body untouched. Existing keys keep their position; new keys
// are appended in sorted order. Content without a frontmatter block gains
// one.
func MergeFrontmatter(content string, updates map[string]any) (string, error) {
	block, body, ok := splitFrontmatter(content)
	if !ok {
		block, body = "", content
	}

	mapping := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	if block != "" {
		var doc yaml.Node
		if err := yaml.Unmarshal([]byte(block), &doc); err == nil &&
			len(doc.Content) > 0 && doc.Content[0].Kind == yaml.MappingNode {
			mapping = doc.Content[0]
		}
	}

	keys := make([]string, 0, len(updates))
	for k := range updates {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		node, err := valueNode(updates[k])
		if err != nil {
			return "", fmt.Errorf("failed to encode frontmatter value for %q: %w", k, err)
		}
		setMappingKey(mapping, k, node)
	}

	out, err := yaml.Marshal(mapping)
	if err != nil {
		return "", fmt.Errorf("failed to serialize frontmatter: %w", err)
	}
	return "---\n" + string(out) + "---\n" + body, nil
}

// splitFrontmatter returns the YAML block between the leading "---" line
// and its closing "---" line, plus the body below. ok is false when no
// well-formed block exists.
func splitFrontmatter(content string) (block, body string, ok bool) {
	rest, found := strings.CutPrefix(content, "---\n")
	if !found {
		return "", "", false
	}

	end := strings.Index(rest, "\n---")
	if end < 0 {
		return "", "", false
	}
	block = rest[:end+1]
	body = rest[end+len("\n---"):]

	// The closing delimiter must end its line.
	switch {
	case body == "":
	case strings.HasPrefix(body, "\n"):
		body = body[1:]
	default:
		return "", "", false
	}
	return block, body, true
}

// valueNode converts a Go value into a YAML node usable inside a mapping.
func valueNode(v any) (*yaml.Node, error) {
	data, err := yaml.Marshal(v)
	if err != nil {
		return nil, err
	}
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if len(doc.Content) == 0 {
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}, nil
	}
	return doc.Content[0], nil
}

// setMappingKey replaces the value for key in a mapping node, appending
// the pair when the key is absent.
func setMappingKey(m *yaml.Node, key string, value *yaml.Node) {
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			m.Content[i+1] = value
			return
		}
	}
	m.Content = append(m.Content,
		&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key},
		value,
	)
}
