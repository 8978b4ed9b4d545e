// Package jsontree parses JSON (with JSONC extensions: comments and
// trailing commas) into an immutable node tree that keeps source offsets,
// and provides pattern-based matching over that tree.
//
// The tree is built once per parse and never mutated afterwards. Every
// node records the byte span it was parsed from so consumers can map
// findings back to the source text.
package jsontree

// NodeKind identifies the shape of a parsed node. The set is closed;
// consumers are expected to switch exhaustively over it.
type NodeKind uint8

const (
	// KindObject is a `{...}` node whose children are property nodes.
	KindObject NodeKind = iota
	// KindArray is a `[...]` node whose children are element nodes.
	KindArray
	// KindProperty is a `"key": value` pair inside an object. It always
	// has exactly two children: the key node (a string) and the value node.
	KindProperty
	// KindString is a string literal; Value holds the decoded string.
	KindString
	// KindNumber is a number literal; Value holds a float64.
	KindNumber
	// KindBoolean is true/false; Value holds a bool.
	KindBoolean
	// KindNull is the null literal; Value is nil.
	KindNull
)

// String returns a short name for the kind, used in error messages.
func (k NodeKind) String() string {
	switch k {
	case KindObject:
		return "object"
	case KindArray:
		return "array"
	case KindProperty:
		return "property"
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBoolean:
		return "boolean"
	case KindNull:
		return "null"
	}
	return "unknown"
}

// Node is a single node in a parsed JSON tree.
//
// Nodes are immutable after parsing. Offset and Length describe the byte
// span of the node in the original text, including both delimiters for
// objects, arrays and strings.
type Node struct {
	// Kind is the closed tag discriminating the node shape.
	Kind NodeKind
	// Value is the primitive payload: string for KindString, float64 for
	// KindNumber, bool for KindBoolean, nil otherwise.
	Value any
	// Offset is the byte offset of the node's first character.
	Offset int
	// Length is the byte length of the node's source span.
	Length int
	// Parent is a non-owning back reference; nil for the root.
	Parent *Node
	// Children are the ordered child nodes: properties for objects,
	// elements for arrays, [key, value] for properties.
	Children []*Node
}

// StringValue returns the node's string payload. The second result is
// false when the node is not a string.
func (n *Node) StringValue() (string, bool) {
	if n == nil || n.Kind != KindString {
		return "", false
	}
	s, ok := n.Value.(string)
	return s, ok
}

// PropertyParts splits a property node into its key and value nodes.
// Returns ok=false for any non-property node or a malformed property
// (recovered parse may leave the value side nil).
func (n *Node) PropertyParts() (key, value *Node, ok bool) {
	if n == nil || n.Kind != KindProperty || len(n.Children) != 2 {
		return nil, nil, false
	}
	if n.Children[0] == nil || n.Children[1] == nil {
		return nil, nil, false
	}
	return n.Children[0], n.Children[1], true
}

// PropertyName returns the key string of a property node, or "" when the
// node is not a well-formed property.
func (n *Node) PropertyName() string {
	key, _, ok := n.PropertyParts()
	if !ok {
		return ""
	}
	s, _ := key.StringValue()
	return s
}

// Property returns the value node of the named property on an object
// node, or nil when the node is not an object or the property is absent.
// When duplicate keys exist, the first occurrence wins.
func (n *Node) Property(name string) *Node {
	if n == nil || n.Kind != KindObject {
		return nil
	}
	for _, prop := range n.Children {
		if _, value, ok := prop.PropertyParts(); ok && prop.PropertyName() == name {
			return value
		}
	}
	return nil
}

// PropertyKeyNode returns the key node of the named property on an
// object node, or nil when absent. Useful for attaching findings to the
// key rather than the value.
func (n *Node) PropertyKeyNode(name string) *Node {
	if n == nil || n.Kind != KindObject {
		return nil
	}
	for _, prop := range n.Children {
		if key, _, ok := prop.PropertyParts(); ok && prop.PropertyName() == name {
			return key
		}
	}
	return nil
}

// End returns the byte offset one past the node's last character.
func (n *Node) End() int {
	return n.Offset + n.Length
}

// Plain converts the subtree to plain Go values: map[string]any for
// objects (first occurrence wins on duplicate keys), []any for arrays,
// and the primitive payload otherwise. Malformed recovered properties
// are dropped.
func (n *Node) Plain() any {
	if n == nil {
		return nil
	}
	switch n.Kind {
	case KindObject:
		m := make(map[string]any, len(n.Children))
		for _, prop := range n.Children {
			_, value, ok := prop.PropertyParts()
			if !ok {
				continue
			}
			name := prop.PropertyName()
			if _, dup := m[name]; !dup {
				m[name] = value.Plain()
			}
		}
		return m
	case KindArray:
		out := make([]any, 0, len(n.Children))
		for _, elem := range n.Children {
			out = append(out, elem.Plain())
		}
		return out
	default:
		return n.Value
	}
}
