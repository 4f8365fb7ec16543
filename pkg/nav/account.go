package nav

import (
	"github.com/mchmarny/dashd/pkg/dismiss"
	"github.com/mchmarny/dashd/pkg/menu"
)

// AccountBoundary is the element id wrapping the account trigger and its dropdown.
const AccountBoundary = "account-menu"

// UserMenuItem is an entry of the account dropdown.
type UserMenuItem struct {
	Label  string
	Icon   menu.Icon
	Action func()
}

// AccountMenu is the state of the account dropdown. It is not safe for
// concurrent use.
type AccountMenu struct {
	items []UserMenuItem
	open  bool
	guard *dismiss.Guard
}

// NewAccountMenu returns a closed dropdown listing items.
func NewAccountMenu(doc *dismiss.Document, items []UserMenuItem) *AccountMenu {
	a := &AccountMenu{items: items}
	a.guard = dismiss.NewGuard(doc, dismiss.Element(AccountBoundary), a.Close)
	return a
}

// Items returns the dropdown entries.
func (a *AccountMenu) Items() []UserMenuItem {
	return a.items
}

// IsOpen reports whether the dropdown is shown.
func (a *AccountMenu) IsOpen() bool {
	return a.open
}

// Toggle opens a closed dropdown and closes an open one.
func (a *AccountMenu) Toggle() {
	if a.open {
		a.Close()
		return
	}
	a.Open()
}

// Open shows the dropdown and starts watching for outside interactions.
func (a *AccountMenu) Open() {
	a.open = true
	a.guard.Arm()
}

// Close hides the dropdown and stops watching.
func (a *AccountMenu) Close() {
	a.open = false
	a.guard.Disarm()
}

// Select invokes the action of entry i, if any, and closes the dropdown.
// It reports false when i is out of range.
func (a *AccountMenu) Select(i int) bool {
	if i < 0 || i >= len(a.items) {
		return false
	}
	if fn := a.items[i].Action; fn != nil {
		fn()
	}
	a.Close()
	return true
}

// Release stops watching for outside interactions.
func (a *AccountMenu) Release() {
	a.guard.Disarm()
}
