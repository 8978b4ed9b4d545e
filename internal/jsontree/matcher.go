package jsontree

// Segment is one step of a Pattern: a property name, an array index or
// the wildcard. The set is closed.
type Segment interface {
	segment()
}

// Name matches the value of the named property on an object node.
type Name string

// Index matches the n-th element of an array node. Negative or
// out-of-range indices simply never match.
type Index int

type wildcardSegment struct{}

// Wildcard matches every child of an object or array node. For objects
// only the value side of each property is visited, never the key.
var Wildcard Segment = wildcardSegment{}

func (Name) segment()            {}
func (Index) segment()           {}
func (wildcardSegment) segment() {}

// Pattern is an ordered sequence of segments consumed left to right.
// Patterns are query descriptors only; they hold no node references.
type Pattern []Segment

// P builds a Pattern from loosely-typed parts: a string becomes a Name
// ("*" becomes the wildcard), an int becomes an Index. Any other part
// type panics; patterns are compile-time constants in practice.
func P(parts ...any) Pattern {
	pat := make(Pattern, 0, len(parts))
	for _, part := range parts {
		switch v := part.(type) {
		case string:
			if v == "*" {
				pat = append(pat, Wildcard)
			} else {
				pat = append(pat, Name(v))
			}
		case int:
			pat = append(pat, Index(v))
		case Segment:
			pat = append(pat, v)
		default:
			panic("jsontree: invalid pattern part")
		}
	}
	return pat
}

// VisitResult tells the matcher what to do with a structurally matching
// node.
type VisitResult uint8

const (
	// VisitKeep accepts the node as a match.
	VisitKeep VisitResult = iota
	// VisitSkip rejects the node without stopping the search; sibling
	// candidates are still considered.
	VisitSkip
)

// Visitor filters candidate nodes. A panic inside a visitor propagates
// to the caller of MatchAll/MatchFirst.
type Visitor func(*Node) VisitResult

// MatchAll returns every node under root matching the pattern, filtered
// through the visitor when one is given. A nil root yields nil. Result
// order is deterministic: document order, pattern-major.
func MatchAll(root *Node, pattern Pattern, visitor Visitor) []*Node {
	if root == nil {
		return nil
	}
	return MatchAllIn([]*Node{root}, pattern, visitor)
}

// MatchAllIn is MatchAll over a set of roots searched as one logical
// root list.
func MatchAllIn(roots []*Node, pattern Pattern, visitor Visitor) []*Node {
	var out []*Node
	match(roots, pattern, func(n *Node) bool {
		if visitor == nil || visitor(n) == VisitKeep {
			out = append(out, n)
		}
		return true
	})
	return out
}

// MatchFirst returns the first matching node, or nil when there is
// none. The traversal stops as soon as a node is accepted; it does not
// build the full result set first.
func MatchFirst(root *Node, pattern Pattern, visitor Visitor) *Node {
	if root == nil {
		return nil
	}
	return MatchFirstIn([]*Node{root}, pattern, visitor)
}

// MatchFirstIn is MatchFirst over a set of roots.
func MatchFirstIn(roots []*Node, pattern Pattern, visitor Visitor) *Node {
	var found *Node
	match(roots, pattern, func(n *Node) bool {
		if visitor != nil && visitor(n) != VisitKeep {
			return true // rejected, keep looking
		}
		found = n
		return false
	})
	return found
}

// match walks nodes against the pattern, calling emit for every
// structural match. emit returning false stops the whole traversal,
// which is how MatchFirst short-circuits.
func match(nodes []*Node, pattern Pattern, emit func(*Node) bool) bool {
	if len(pattern) == 0 {
		for _, n := range nodes {
			if n == nil {
				continue
			}
			if !emit(n) {
				return false
			}
		}
		return true
	}

	seg, rest := pattern[0], pattern[1:]
	for _, n := range nodes {
		if n == nil {
			continue
		}
		switch s := seg.(type) {
		case Name:
			if n.Kind != KindObject {
				continue
			}
			for _, prop := range n.Children {
				_, value, ok := prop.PropertyParts()
				if !ok || prop.PropertyName() != string(s) {
					continue
				}
				if !match([]*Node{value}, rest, emit) {
					return false
				}
			}
		case Index:
			if n.Kind != KindArray || int(s) < 0 || int(s) >= len(n.Children) {
				continue
			}
			if !match([]*Node{n.Children[s]}, rest, emit) {
				return false
			}
		case wildcardSegment:
			switch n.Kind {
			case KindArray:
				if !match(n.Children, rest, emit) {
					return false
				}
			case KindObject:
				for _, prop := range n.Children {
					_, value, ok := prop.PropertyParts()
					if !ok {
						continue
					}
					if !match([]*Node{value}, rest, emit) {
						return false
					}
				}
			}
		}
	}
	return true
}
