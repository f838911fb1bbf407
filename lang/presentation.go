package lang

// Icon identifies the symbol shown next to a presentation label.
type Icon int

const (
	IconNone   Icon = iota // none
	IconModule             // module
	IconExport             // export
	IconImport             // import
	IconAlias              // alias
)

// String returns the icon name.
func (i Icon) String() string {
	switch i {
	case IconModule:
		return "module"

	case IconExport:
		return "export"

	case IconImport:
		return "import"

	case IconAlias:
		return "alias"

	default:
		return "none"
	}
}

// Glyph returns a single-character rendering of the icon for terminals.
func (i Icon) Glyph() string {
	switch i {
	case IconModule:
		return "◆"

	case IconExport:
		return "↑"

	case IconImport:
		return "↓"

	case IconAlias:
		return "≡"

	default:
		return " "
	}
}

// MarshalText encodes the icon by name.
func (i Icon) MarshalText() ([]byte, error) {
	return []byte(i.String()), nil
}

// UnmarshalText decodes an icon name. Unknown names yield [IconNone].
func (i *Icon) UnmarshalText(text []byte) error {
	*i = IconNone

	for _, icon := range []Icon{IconModule, IconExport, IconImport, IconAlias} {
		if icon.String() == string(text) {
			*i = icon
		}
	}

	return nil
}

func iconOf(r Role) Icon {
	switch r {
	case RoleDeclaration:
		return IconModule

	case RoleExport:
		return IconExport

	case RoleImport:
		return IconImport

	case RoleAlias:
		return IconAlias

	default:
		return IconNone
	}
}

// Presentation is the display projection of a node for outline and search
// listings.
type Presentation struct {
	Label    string `json:"label"              yaml:"label"`
	Location string `json:"location,omitempty" yaml:"location,omitempty"`
	Icon     Icon   `json:"icon"               yaml:"icon"`
}

// String returns "label (location)", or the label alone.
func (p Presentation) String() string {
	if p.Location == "" {
		return p.Label
	}

	return p.Label + " (" + p.Location + ")"
}

// Presenter overrides the presentation of module identifiers. It receives
// the default presentation and returns the one to display.
type Presenter func(m ModuleIdentifier, def Presentation) Presentation
