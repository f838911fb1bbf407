package lang

import "context"

// Named is implemented by nodes that carry a human-readable identifier and
// support rename.
type Named interface {
	// Name returns the current identifier text.
	Name() (string, error)

	// SetName renames the node in place and returns the resulting node.
	SetName(ctx context.Context, name string) (Node, error)

	// NameIdentifier returns the child node anchoring the identifier text.
	NameIdentifier() (Node, error)
}

// Referencing is implemented by nodes that denote a declaration elsewhere.
type Referencing interface {
	Reference() *Reference
}

// Presentable is implemented by nodes that can be listed in a user
// interface.
type Presentable interface {
	Presentation() (Presentation, error)
}

var (
	_ Named       = ModuleIdentifier{}
	_ Referencing = ModuleIdentifier{}
	_ Presentable = ModuleIdentifier{}
)
