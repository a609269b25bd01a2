package ui

import "github.com/rivo/tview"

// MenuHint describes a keyboard shortcut for display in the menu bar.
type MenuHint struct {
	Key         string
	Description string
	Numeric     bool // true for 1-9 shortcuts (displayed in a different color)
}

// Component is a page the app can push onto its stack.
type Component interface {
	tview.Primitive
	// Name is the breadcrumb label.
	Name() string
	// Focus is the primitive that takes focus when the page is shown.
	Focus() tview.Primitive
}
