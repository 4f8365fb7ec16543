package menu

// Icon references an icon by name along with the utility class used to tint it.
type Icon struct {
	// Name is the icon identifier (e.g. "home", "users", "folder").
	Name string `json:"name" yaml:"name"`

	// Color is the utility class applied when the item is not highlighted.
	Color string `json:"color,omitempty" yaml:"color,omitempty"`
}

// SubItem is a leaf entry nested under a parent Item.
type SubItem struct {
	// Label is the text displayed for the entry.
	Label string `json:"label" yaml:"label"`

	// Path is the route the entry links to.
	Path string `json:"path" yaml:"path"`
}

// Item represents a top-level navigation entry. An item is either a leaf,
// with Path set, or a parent, with a non-empty SubItems list. Never both.
type Item struct {
	// Label is the text displayed for the entry. It also identifies the item
	// when its expanded state is toggled.
	Label string `json:"label" yaml:"label"`

	// Icon is rendered next to the label and stays visible when the sidebar is collapsed.
	Icon Icon `json:"icon" yaml:"icon"`

	// Path is the route of a leaf item.
	Path string `json:"path,omitempty" yaml:"path,omitempty"`

	// SubItems are the ordered children of a parent item.
	SubItems []SubItem `json:"items,omitempty" yaml:"items,omitempty"`
}

// HasSubItems reports whether the item is a parent.
func (i Item) HasSubItems() bool {
	return len(i.SubItems) > 0
}

// IsActive reports whether the item matches route. A leaf matches on exact
// path equality, a parent matches when any of its sub-items does.
func (i Item) IsActive(route string) bool {
	if i.HasSubItems() {
		return i.HasActiveChild(route)
	}
	return i.Path != "" && i.Path == route
}

// HasActiveChild reports whether one of the sub-item paths equals route.
func (i Item) HasActiveChild(route string) bool {
	for _, s := range i.SubItems {
		if s.Path == route {
			return true
		}
	}
	return false
}

// UserItem is an entry of the account dropdown. Action names a handler bound
// by the application when the dropdown is built; an empty Action means the
// entry does nothing when selected.
type UserItem struct {
	Label  string `json:"label" yaml:"label"`
	Icon   Icon   `json:"icon" yaml:"icon"`
	Action string `json:"action,omitempty" yaml:"action,omitempty"`
}

// User is the signed-in account shown in the dropdown header.
type User struct {
	Name   string `json:"name" yaml:"name"`
	Email  string `json:"email" yaml:"email"`
	Role   string `json:"role,omitempty" yaml:"role,omitempty"`
	Avatar string `json:"avatar,omitempty" yaml:"avatar,omitempty"`
}
