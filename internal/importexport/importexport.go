// Package importexport implements bulk YAML import/export of a subtree,
// walking the tree the same pre-order way the consistency checker and the
// recursive delete do: with an explicit work list, never native recursion.
package importexport

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/halvorsen/regtree/internal/entries"
	"github.com/halvorsen/regtree/internal/names"
	"github.com/halvorsen/regtree/internal/tree"
)

// Node is the on-disk shape of one entry and its children.
type Node struct {
	Name     string  `yaml:"name"`
	Type     string  `yaml:"type"`
	Value    string  `yaml:"value,omitempty"`
	Children []*Node `yaml:"children,omitempty"`
}

// Export walks the subtree rooted at name and writes it to path as YAML.
func Export(ctx context.Context, store *tree.Store, name, path string) error {
	root, err := buildNode(ctx, store, name)
	if err != nil {
		return err
	}
	out, err := yaml.Marshal(root)
	if err != nil {
		return fmt.Errorf("importexport: marshal: %w", err)
	}
	if err := os.WriteFile(path, out, 0o644); err != nil {
		return fmt.Errorf("importexport: write %s: %w", path, err)
	}
	return nil
}

type workItem struct {
	name string
	node *Node
}

// buildNode materializes name and its full subtree into a Node tree using
// an explicit work list rather than recursion.
func buildNode(ctx context.Context, store *tree.Store, name string) (*Node, error) {
	root, err := nodeFor(ctx, store, name)
	if err != nil {
		return nil, err
	}

	stack := []workItem{{name: name, node: root}}
	for len(stack) > 0 {
		item := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		children, err := store.GetChildren(ctx, item.name)
		if err != nil {
			return nil, err
		}
		for _, child := range children {
			childName := joinName(store, item.name, child)
			childNode, err := nodeFor(ctx, store, childName)
			if err != nil {
				return nil, err
			}
			item.node.Children = append(item.node.Children, childNode)
			stack = append(stack, workItem{name: childName, node: childNode})
		}
	}
	return root, nil
}

func joinName(store *tree.Store, parent, child string) string {
	if parent == "" {
		return child
	}
	return parent + string(store.Delimiter()) + child
}

func nodeFor(ctx context.Context, store *tree.Store, name string) (*Node, error) {
	typ, err := store.GetType(ctx, name)
	if err != nil {
		return nil, err
	}

	local := name
	if idx := lastSegment(name, store.Delimiter()); idx != "" {
		local = idx
	}

	node := &Node{Name: local, Type: typ.String()}
	switch typ {
	case entries.TypeInteger:
		v, err := store.GetInteger(ctx, name)
		if err != nil {
			return nil, err
		}
		node.Value = fmt.Sprintf("%d", v)
	case entries.TypeText:
		v, err := store.GetString(ctx, name)
		if err != nil {
			return nil, err
		}
		node.Value = v
	case entries.TypeBlob:
		v, err := store.GetBinary(ctx, name)
		if err != nil {
			return nil, err
		}
		node.Value = string(v)
	}
	return node, nil
}

func lastSegment(name string, delim rune) string {
	segs := []rune(name)
	last := -1
	for i, r := range segs {
		if r == delim {
			last = i
		}
	}
	if last < 0 {
		return ""
	}
	return string(segs[last+1:])
}

// Import reads a YAML document from path and recreates its tree under
// base, auto-vivifying through Create/SetOrCreate.
func Import(ctx context.Context, store *tree.Store, path, base string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("importexport: read %s: %w", path, err)
	}
	var root Node
	if err := yaml.Unmarshal(raw, &root); err != nil {
		return fmt.Errorf("importexport: unmarshal %s: %w", path, err)
	}

	type pending struct {
		name string
		node *Node
	}
	stack := []pending{{name: base, node: &root}}
	for len(stack) > 0 {
		item := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		value, err := valueFor(item.node)
		if err != nil {
			return err
		}
		if item.name != "" {
			if err := store.SetOrCreate(ctx, item.name, value); err != nil {
				return err
			}
		}
		for _, child := range item.node.Children {
			childName := child.Name
			if item.name != "" {
				childName = item.name + string(store.Delimiter()) + child.Name
			}
			if !names.IsValidName(child.Name, store.Delimiter()) || names.ContainsDelimiter(child.Name, store.Delimiter()) {
				return fmt.Errorf("importexport: invalid local name %q in %s", child.Name, path)
			}
			stack = append(stack, pending{name: childName, node: child})
		}
	}
	return nil
}

func valueFor(n *Node) (entries.Value, error) {
	switch n.Type {
	case "Integer":
		var i int64
		if _, err := fmt.Sscanf(n.Value, "%d", &i); err != nil && n.Value != "" {
			return nil, fmt.Errorf("importexport: parse integer %q: %w", n.Value, err)
		}
		return entries.IntegerValue(i), nil
	case "Text", "":
		return entries.TextValue(n.Value), nil
	case "Blob":
		return entries.BlobValue([]byte(n.Value)), nil
	default:
		return nil, fmt.Errorf("importexport: unrecognized type %q", n.Type)
	}
}
