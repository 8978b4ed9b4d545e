package lint

import "context"

// Document is a file identified by an opaque location whose text can be
// fetched. Concrete bindings wrap a filesystem path or an editor
// buffer; the linter holds a Document only for the duration of one
// pass.
//
// Implementations must be comparable (the engine keys diagnostics by
// Document), which in practice means pointer receivers.
type Document interface {
	// Location returns the opaque absolute location of the document.
	Location() string
	// Text returns the document's current text. May block on I/O.
	Text(ctx context.Context) (string, error)
}

// FileStat is the tri-state answer to "is this location a file?".
// Missing is distinct from "exists but is a directory".
type FileStat uint8

const (
	// StatMissing means nothing exists at the location.
	StatMissing FileStat = iota
	// StatFile means a regular file exists at the location.
	StatFile
	// StatDir means the location exists but is a directory.
	StatDir
)

// Workspace is the abstract surface the linter needs from a concrete
// binding. Locations are opaque strings; only the workspace interprets
// them.
type Workspace interface {
	// ParentOf returns the location of the directory containing location.
	ParentOf(location string) string
	// BaseNameOf returns the last path component of location.
	BaseNameOf(location string) string
	// JoinRelative resolves a slash-separated relative path against a
	// directory location.
	JoinRelative(dir, relPath string) string
	// Stat reports whether location names a file, a directory, or
	// nothing. Lookup failures count as missing.
	Stat(ctx context.Context, location string) FileStat
	// Open returns a Document for the location, or an error when it
	// cannot be opened.
	Open(ctx context.Context, location string) (Document, error)
}
