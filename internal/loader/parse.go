package loader

import (
	"fmt"
	"sort"

	"github.com/BurntSushi/toml"
	"github.com/tidwall/gjson"
	"gopkg.in/yaml.v3"

	"github.com/k0ns0l/localedrift/internal/locale"
)

// parseJSON walks the document with gjson, whose ForEach visits object
// members in source order. A repeated key keeps its first position and
// its last value.
func parseJSON(data []byte) (*locale.Tree, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("invalid JSON syntax")
	}

	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return nil, fmt.Errorf("top level is %s, expected an object", jsonKind(root))
	}

	return jsonTree(root), nil
}

func jsonTree(obj gjson.Result) *locale.Tree {
	tree := locale.New()
	obj.ForEach(func(key, value gjson.Result) bool {
		tree.Set(key.String(), jsonValue(value))
		return true
	})
	return tree
}

func jsonValue(v gjson.Result) interface{} {
	switch {
	case v.IsObject():
		return jsonTree(v)
	case v.IsArray():
		return v.Value()
	}

	switch v.Type {
	case gjson.String:
		return v.Str
	case gjson.Number:
		return v.Num
	case gjson.True:
		return true
	case gjson.False:
		return false
	default:
		return nil
	}
}

func jsonKind(v gjson.Result) string {
	switch {
	case v.IsArray():
		return "an array"
	case v.Type == gjson.String:
		return "a string"
	case v.Type == gjson.Number:
		return "a number"
	case v.Type == gjson.True, v.Type == gjson.False:
		return "a boolean"
	default:
		return "null"
	}
}

// parseYAML decodes into a yaml.Node so mapping keys keep document order.
func parseYAML(data []byte) (*locale.Tree, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}

	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, fmt.Errorf("document is empty, expected a mapping")
	}

	root := resolveAlias(doc.Content[0])
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("top level is %s, expected a mapping", yamlKind(root))
	}

	return yamlTree(root)
}

func yamlTree(node *yaml.Node) (*locale.Tree, error) {
	tree := locale.New()
	if err := fillYAMLTree(tree, node, false); err != nil {
		return nil, err
	}
	return tree, nil
}

// fillYAMLTree copies the pairs of a mapping node into tree. Keys brought
// in through a "<<" merge never override keys set explicitly.
func fillYAMLTree(tree *locale.Tree, node *yaml.Node, merging bool) error {
	for i := 0; i+1 < len(node.Content); i += 2 {
		keyNode := node.Content[i]
		valueNode := resolveAlias(node.Content[i+1])

		if isMergeKey(keyNode) {
			if err := mergeYAML(tree, valueNode); err != nil {
				return err
			}
			continue
		}

		key := keyNode.Value
		if merging && tree.Has(key) {
			continue
		}

		value, err := yamlValue(valueNode)
		if err != nil {
			return fmt.Errorf("key %q: %w", key, err)
		}
		tree.Set(key, value)
	}
	return nil
}

func mergeYAML(tree *locale.Tree, node *yaml.Node) error {
	switch node.Kind {
	case yaml.MappingNode:
		return fillYAMLTree(tree, node, true)
	case yaml.SequenceNode:
		for _, item := range node.Content {
			if err := mergeYAML(tree, resolveAlias(item)); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("merge value is %s, expected a mapping", yamlKind(node))
	}
}

func yamlValue(node *yaml.Node) (interface{}, error) {
	if node.Kind == yaml.MappingNode {
		return yamlTree(node)
	}

	var value interface{}
	if err := node.Decode(&value); err != nil {
		return nil, err
	}
	return value, nil
}

func isMergeKey(node *yaml.Node) bool {
	return node.Kind == yaml.ScalarNode && node.Value == "<<" &&
		(node.Tag == "" || node.Tag == "!!merge")
}

func resolveAlias(node *yaml.Node) *yaml.Node {
	for node != nil && node.Kind == yaml.AliasNode && node.Alias != nil {
		node = node.Alias
	}
	return node
}

func yamlKind(node *yaml.Node) string {
	switch node.Kind {
	case yaml.SequenceNode:
		return "a sequence"
	case yaml.ScalarNode:
		if node.Tag == "!!null" {
			return "null"
		}
		return "a scalar"
	default:
		return "not a mapping"
	}
}

// parseTOML decodes the document and then rebuilds it in the order
// reported by MetaData.Keys. Tables inside arrays are opaque list values.
func parseTOML(data []byte) (*locale.Tree, error) {
	var raw map[string]interface{}
	md, err := toml.Decode(string(data), &raw)
	if err != nil {
		return nil, err
	}

	tree := locale.New()
	for _, key := range md.Keys() {
		placeTOMLKey(tree, raw, key)
	}

	// keys the metadata did not list are appended in sorted order
	completeTOMLTree(tree, raw)

	return tree, nil
}

func placeTOMLKey(tree *locale.Tree, raw map[string]interface{}, key toml.Key) {
	value, ok := lookupTOML(raw, key)
	if !ok {
		return
	}

	parent := tree
	for _, segment := range key[:len(key)-1] {
		next, ok := parent.Ensure(segment)
		if !ok {
			return
		}
		parent = next
	}

	last := key[len(key)-1]
	if _, isTable := value.(map[string]interface{}); isTable {
		parent.Ensure(last)
		return
	}
	if !parent.Has(last) {
		parent.Set(last, value)
	}
}

func lookupTOML(raw map[string]interface{}, key toml.Key) (interface{}, bool) {
	if len(key) == 0 {
		return nil, false
	}

	var current interface{} = raw
	for _, segment := range key {
		table, ok := current.(map[string]interface{})
		if !ok {
			return nil, false
		}
		current, ok = table[segment]
		if !ok {
			return nil, false
		}
	}
	return current, true
}

func completeTOMLTree(tree *locale.Tree, raw map[string]interface{}) {
	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		value := raw[k]
		table, isTable := value.(map[string]interface{})
		if !isTable {
			if !tree.Has(k) {
				tree.Set(k, value)
			}
			continue
		}

		sub, ok := tree.Ensure(k)
		if !ok {
			continue
		}
		completeTOMLTree(sub, table)
	}
}
