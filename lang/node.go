package lang

// NodeID is the index of a node in its tree's arena.
type NodeID int32

// NoNode is the parent index of the root node.
const NoNode NodeID = -1

// Kind identifies the grammar construct a node represents.
type Kind int

const (
	// KindInvalid is reported for stale or zero-value handles.
	KindInvalid Kind = iota

	// KindFile is the root of every tree.
	KindFile

	// KindModuleDecl is the "module M (exports) where" header.
	KindModuleDecl

	// KindExportList is the parenthesized export list of a module header.
	KindExportList

	// KindExport is a "module M" re-export entry of an export list.
	KindExport

	// KindImportDecl is an import declaration.
	KindImportDecl

	// KindModid is a module identifier: a dotted module name.
	KindModid

	// KindModuleName is the name anchor owned by every [KindModid] node.
	KindModuleName

	// KindBody is the unparsed remainder of the file after the imports.
	KindBody
)

// String returns a string representation of the node kind.
func (k Kind) String() string {
	switch k {
	case KindFile:
		return "File"

	case KindModuleDecl:
		return "ModuleDecl"

	case KindExportList:
		return "ExportList"

	case KindExport:
		return "Export"

	case KindImportDecl:
		return "ImportDecl"

	case KindModid:
		return "Modid"

	case KindModuleName:
		return "ModuleName"

	case KindBody:
		return "Body"

	default:
		return "Invalid"
	}
}

// Role describes the syntactic position a module identifier occupies.
type Role int

const (
	// RoleNone is used for nodes that are not module identifiers.
	RoleNone Role = iota

	// RoleDeclaration is the name in "module M where".
	RoleDeclaration

	// RoleExport is the name in a "module M" export entry.
	RoleExport

	// RoleImport is the imported module of an import declaration.
	RoleImport

	// RoleAlias is the local name in "import ... as M".
	RoleAlias
)

// String returns a string representation of the role.
func (r Role) String() string {
	switch r {
	case RoleDeclaration:
		return "declaration"

	case RoleExport:
		return "export"

	case RoleImport:
		return "import"

	case RoleAlias:
		return "alias"

	default:
		return "none"
	}
}

// ParseRole parses the string form of a role. Unknown strings yield
// [RoleNone].
func ParseRole(s string) Role {
	for _, r := range []Role{RoleDeclaration, RoleExport, RoleImport, RoleAlias} {
		if r.String() == s {
			return r
		}
	}

	return RoleNone
}

// node is the arena record of a syntax tree node.
type node struct {
	kind     Kind
	role     Role
	span     Span
	parent   NodeID
	children []NodeID
}

// Node is a handle to a node owned by a [Tree].
//
// Handles stay valid across renames, which edit the tree in place. They
// become stale when the tree is reparsed or closed; operations on a stale
// handle fail with [ErrStaleNode].
type Node struct {
	tree  *Tree
	id    NodeID
	epoch uint64
}

// Tree returns the tree owning the node.
func (n Node) Tree() *Tree { return n.tree }

// ID returns the arena index of the node.
func (n Node) ID() NodeID { return n.id }

// IsZero reports whether n is the zero handle.
func (n Node) IsZero() bool { return n.tree == nil }

// Valid reports whether the handle still refers to a live node.
func (n Node) Valid() bool {
	if n.tree == nil {
		return false
	}

	n.tree.mu.RLock()
	defer n.tree.mu.RUnlock()

	return n.tree.checkLocked(n) == nil
}

// Equal reports whether n and o refer to the same node of the same tree
// generation.
func (n Node) Equal(o Node) bool {
	return n.tree == o.tree && n.id == o.id && n.epoch == o.epoch
}

// Kind returns the node kind, or [KindInvalid] for a stale handle.
func (n Node) Kind() Kind {
	if n.tree == nil {
		return KindInvalid
	}

	n.tree.mu.RLock()
	defer n.tree.mu.RUnlock()

	if n.tree.checkLocked(n) != nil {
		return KindInvalid
	}

	return n.tree.nodes[n.id].kind
}

// Span returns the byte range of the node.
func (n Node) Span() (Span, error) {
	if n.tree == nil {
		return Span{}, ErrStaleNode
	}

	n.tree.mu.RLock()
	defer n.tree.mu.RUnlock()

	if err := n.tree.checkLocked(n); err != nil {
		return Span{}, err
	}

	return n.tree.nodes[n.id].span, nil
}

// Text returns the source text covered by the node.
func (n Node) Text() (string, error) {
	if n.tree == nil {
		return "", ErrStaleNode
	}

	n.tree.mu.RLock()
	defer n.tree.mu.RUnlock()

	if err := n.tree.checkLocked(n); err != nil {
		return "", err
	}

	return n.tree.textLocked(n.id), nil
}

// Position returns the start position of the node.
func (n Node) Position() (Position, error) {
	if n.tree == nil {
		return Position{}, ErrStaleNode
	}

	n.tree.mu.RLock()
	defer n.tree.mu.RUnlock()

	if err := n.tree.checkLocked(n); err != nil {
		return Position{}, err
	}

	return n.tree.positionLocked(n.tree.nodes[n.id].span.Start), nil
}

// Parent returns the parent node. The root's parent is the zero handle.
func (n Node) Parent() (Node, error) {
	if n.tree == nil {
		return Node{}, ErrStaleNode
	}

	n.tree.mu.RLock()
	defer n.tree.mu.RUnlock()

	if err := n.tree.checkLocked(n); err != nil {
		return Node{}, err
	}

	parent := n.tree.nodes[n.id].parent
	if parent == NoNode {
		return Node{}, nil
	}

	return n.tree.handle(parent), nil
}

// Children returns the child nodes in source order.
func (n Node) Children() ([]Node, error) {
	if n.tree == nil {
		return nil, ErrStaleNode
	}

	n.tree.mu.RLock()
	defer n.tree.mu.RUnlock()

	if err := n.tree.checkLocked(n); err != nil {
		return nil, err
	}

	ids := n.tree.nodes[n.id].children
	out := make([]Node, len(ids))

	for i, id := range ids {
		out[i] = n.tree.handle(id)
	}

	return out, nil
}
