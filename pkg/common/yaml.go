package common

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// segment forms accepted by WriteToPath besides plain keys
var (
	indexSegRe  = regexp.MustCompile(`^(\w+)\[(\d+)\]$`)
	filterSegRe = regexp.MustCompile(`^(\w+)\[([^=\]]+)=([^\]]+)\]$`)
	numericRe   = regexp.MustCompile(`^\d+$`)
)

// LoadYAML reads a YAML file from the given path and unmarshals it into a *yaml.Node
func LoadYAML(path string) (*yaml.Node, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, fmt.Errorf("unmarshal to node: %w", err)
	}
	return &node, nil
}

// WriteYAML encodes node with 2-space indentation and writes it to path
func WriteYAML(path string, node *yaml.Node) error {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(node); err != nil {
		return fmt.Errorf("encode yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("close encoder: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create dir: %w", err)
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}

// DocumentRoot returns the top-level mapping of a document node, creating
// an empty one when the document is blank
func DocumentRoot(doc *yaml.Node) (*yaml.Node, error) {
	if doc == nil {
		return nil, fmt.Errorf("nil yaml node")
	}
	if doc.Kind != yaml.DocumentNode {
		if doc.Kind == yaml.MappingNode {
			return doc, nil
		}
		return nil, fmt.Errorf("expected a yaml document, got kind %d", doc.Kind)
	}
	if len(doc.Content) == 0 {
		doc.Content = []*yaml.Node{{Kind: yaml.MappingNode, Tag: "!!map"}}
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("expected a mapping at the document root")
	}
	return root, nil
}

// GetChildByKey returns the value node associated with the given key from a MappingNode
func GetChildByKey(node *yaml.Node, key string) *yaml.Node {
	if node == nil || node.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value == key {
			return node.Content[i+1]
		}
	}
	return nil
}

// SetMappingValue sets mapNode[key] = val, replacing in place or appending
func SetMappingValue(mapNode *yaml.Node, key string, val *yaml.Node) {
	if mapNode == nil || mapNode.Kind != yaml.MappingNode {
		return
	}
	for i := 0; i+1 < len(mapNode.Content); i += 2 {
		if mapNode.Content[i].Value == key {
			mapNode.Content[i+1] = val
			return
		}
	}
	mapNode.Content = append(mapNode.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key}, val)
}

// CloneNode performs a deep copy of a *yaml.Node, including its content and comments
func CloneNode(n *yaml.Node) *yaml.Node {
	if n == nil {
		return nil
	}
	c := *n
	if n.Content != nil {
		c.Content = make([]*yaml.Node, len(n.Content))
		for i, child := range n.Content {
			c.Content[i] = CloneNode(child)
		}
	}
	return &c
}

// DeepMerge merges src into dst. Mappings merge key by key, anything else
// in src replaces dst. Values taken from src are cloned.
func DeepMerge(dst, src *yaml.Node) *yaml.Node {
	if src == nil {
		return CloneNode(dst)
	}
	if dst == nil {
		return CloneNode(src)
	}
	if dst.Kind != yaml.MappingNode || src.Kind != yaml.MappingNode {
		return CloneNode(src)
	}
	for i := 0; i+1 < len(src.Content); i += 2 {
		key, srcVal := src.Content[i], src.Content[i+1]
		if dstVal := GetChildByKey(dst, key.Value); dstVal != nil && dstVal.Kind == yaml.MappingNode && srcVal.Kind == yaml.MappingNode {
			SetMappingValue(dst, key.Value, DeepMerge(dstVal, srcVal))
			continue
		}
		SetMappingValue(dst, key.Value, CloneNode(srcVal))
	}
	return dst
}

// ListYaml writes a YAML file to w, preserving order and comments
func ListYaml(filePath string, w io.Writer) error {
	info, err := os.Stat(filePath)
	if err != nil {
		return fmt.Errorf("cannot stat %s: %w", filePath, err)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("%s is not a regular file", filePath)
	}
	ext := strings.ToLower(filepath.Ext(filePath))
	if ext != ".yaml" && ext != ".yml" {
		return fmt.Errorf("unsupported extension %q: only .yaml/.yml allowed", ext)
	}

	rootNode, err := LoadYAML(filePath)
	if err != nil {
		return fmt.Errorf("failed to read or parse %s: %w", filePath, err)
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	defer enc.Close()
	if err := enc.Encode(rootNode); err != nil {
		return fmt.Errorf("failed to emit %s: %w", filePath, err)
	}
	return nil
}

// WriteToPath sets a scalar in the tree at a dot path. Segments may be
// plain keys, key[2] indexes, key[field=value] filters, or bare numbers
// when the cursor is a sequence. Missing mappings are created.
func WriteToPath(root *yaml.Node, path []string, val string) (*yaml.Node, error) {
	if len(path) == 0 {
		return nil, fmt.Errorf("empty path")
	}
	val = strings.Trim(val, `"'`)
	cursor := root

	for i, seg := range path {
		last := i == len(path)-1
		var next *yaml.Node

		switch {
		case indexSegRe.MatchString(seg):
			m := indexSegRe.FindStringSubmatch(seg)
			idx, _ := strconv.Atoi(m[2])
			seq := GetChildByKey(cursor, m[1])
			n, err := sequenceItem(seq, idx)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", seg, err)
			}
			next = n
		case filterSegRe.MatchString(seg):
			m := filterSegRe.FindStringSubmatch(seg)
			seq := GetChildByKey(cursor, m[1])
			if seq == nil || seq.Kind != yaml.SequenceNode {
				return nil, fmt.Errorf("%s: %s is not a sequence", seg, m[1])
			}
			for _, item := range seq.Content {
				if child := GetChildByKey(item, m[2]); child != nil && child.Value == m[3] {
					next = item
					break
				}
			}
			if next == nil {
				return nil, fmt.Errorf("%s: no item with %s=%s", seg, m[2], m[3])
			}
		case cursor.Kind == yaml.SequenceNode && numericRe.MatchString(seg):
			idx, _ := strconv.Atoi(seg)
			n, err := sequenceItem(cursor, idx)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", seg, err)
			}
			next = n
		default:
			if cursor.Kind != yaml.MappingNode {
				return nil, fmt.Errorf("%s: parent is not a mapping", seg)
			}
			next = GetChildByKey(cursor, seg)
			if next == nil {
				if last {
					next = &yaml.Node{Kind: yaml.ScalarNode}
				} else {
					next = &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
				}
				SetMappingValue(cursor, seg, next)
			}
		}

		if last {
			writeScalar(next, val)
			return root, nil
		}
		cursor = next
	}
	return root, nil
}

// sequenceItem returns seq[idx], appending an empty mapping when idx is one
// past the end
func sequenceItem(seq *yaml.Node, idx int) (*yaml.Node, error) {
	if seq == nil || seq.Kind != yaml.SequenceNode {
		return nil, fmt.Errorf("not a sequence")
	}
	if idx == len(seq.Content) {
		seq.Content = append(seq.Content, &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"})
	}
	if idx < 0 || idx >= len(seq.Content) {
		return nil, fmt.Errorf("index out of range: %d", idx)
	}
	return seq.Content[idx], nil
}

// writeScalar overwrites a node with a scalar, keeping ints, floats and
// bools unquoted
func writeScalar(node *yaml.Node, val string) {
	node.Kind = yaml.ScalarNode
	node.Content = nil
	node.Style = 0
	switch {
	case isInt(val):
		node.Tag = "!!int"
	case isFloat(val):
		node.Tag = "!!float"
	case val == "true" || val == "false":
		node.Tag = "!!bool"
	default:
		node.Tag = "!!str"
		node.Style = yaml.DoubleQuotedStyle
	}
	node.Value = val
}

func isInt(s string) bool {
	_, err := strconv.ParseInt(s, 10, 64)
	return err == nil
}

func isFloat(s string) bool {
	_, err := strconv.ParseFloat(s, 64)
	return err == nil && strings.Contains(s, ".")
}
