package lint

import (
	"templint/internal/jsontree"
)

// Severity of a diagnostic, ordered from most to least severe.
type Severity uint8

const (
	SeverityError Severity = iota + 1
	SeverityWarning
	SeverityInformation
	SeverityHint
)

// String returns the lower-case severity name used in reports.
func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	case SeverityInformation:
		return "info"
	case SeverityHint:
		return "hint"
	}
	return "unknown"
}

// RelatedInfo is a cross-reference attached to a diagnostic, pointing at
// another location that contributes to the problem (the other occurrence
// of a duplicate, the referenced definition, and so on).
type RelatedInfo struct {
	// Doc is the document the reference lives in.
	Doc Document
	// Node is the referenced node within Doc; nil means the whole file.
	Node *jsontree.Node
	// Message describes the reference's role.
	Message string
}

// Diagnostic is a single finding. Diagnostics are produced, never
// mutated. One is always attached to the document whose text span it
// refers to, even when the root cause lives in a different document; in
// that case Related points back at the other document.
type Diagnostic struct {
	// Doc is the document the finding is attached to.
	Doc Document
	// Message is the human-readable description.
	Message string
	// Code identifies the rule; codes form a closed table (see codes.go).
	Code Code
	// Node is the source node the finding is anchored to; nil anchors
	// the finding to the whole document.
	Node *jsontree.Node
	// Severity classifies the finding.
	Severity Severity
	// Args carries structured extras for tooling, such as a fuzzy-match
	// suggestion under "match". Nil when there are none.
	Args map[string]any
	// Related lists cross-references to contributing locations.
	Related []RelatedInfo
}

// DiagnosticSet is an ordered multi-map of diagnostics keyed by owning
// document. Insertion order governs report order for a document;
// documents keep the order in which they first received a finding.
// Not safe for concurrent use; the engine serializes writes.
type DiagnosticSet struct {
	order []Document
	byDoc map[Document][]Diagnostic
}

// NewDiagnosticSet returns an empty set.
func NewDiagnosticSet() *DiagnosticSet {
	return &DiagnosticSet{byDoc: make(map[Document][]Diagnostic)}
}

// Add appends a diagnostic under its owning document.
func (s *DiagnosticSet) Add(d Diagnostic) {
	if _, seen := s.byDoc[d.Doc]; !seen {
		s.order = append(s.order, d.Doc)
	}
	s.byDoc[d.Doc] = append(s.byDoc[d.Doc], d)
}

// Docs returns the documents in first-finding order.
func (s *DiagnosticSet) Docs() []Document {
	return s.order
}

// For returns the diagnostics attached to doc, in insertion order. The
// returned slice is owned by the set; callers must not modify it.
func (s *DiagnosticSet) For(doc Document) []Diagnostic {
	return s.byDoc[doc]
}

// Len returns the total number of diagnostics across all documents.
func (s *DiagnosticSet) Len() int {
	n := 0
	for _, ds := range s.byDoc {
		n += len(ds)
	}
	return n
}

// All returns every diagnostic in document order then insertion order.
func (s *DiagnosticSet) All() []Diagnostic {
	out := make([]Diagnostic, 0, s.Len())
	for _, doc := range s.order {
		out = append(out, s.byDoc[doc]...)
	}
	return out
}
