package ui

import "github.com/rivo/tview"

// Pages is a stack of components wrapping tview.Pages. The bottom entry is
// the root page and is never popped.
type Pages struct {
	*tview.Pages
	stack    []Component
	onChange func(top Component, stack []string)
}

// NewPages creates a new stack-based page manager.
func NewPages() *Pages {
	return &Pages{
		Pages: tview.NewPages(),
	}
}

// SetOnChange sets a callback that fires when the stack changes.
func (p *Pages) SetOnChange(fn func(top Component, stack []string)) {
	p.onChange = fn
}

// Push shows c on top of the stack. Pushing the current top is a no-op.
func (p *Pages) Push(c Component) {
	if top := p.Top(); top != nil {
		if top.Name() == c.Name() {
			return
		}
		p.HidePage(top.Name())
	}
	p.stack = append(p.stack, c)
	if !p.HasPage(c.Name()) {
		p.AddPage(c.Name(), c, true, false)
	}
	p.ShowPage(c.Name())
	p.SendToFront(c.Name())
	p.notify()
}

// Pop removes the top page and shows the previous one. The root page stays.
// Returns the popped component, or nil.
func (p *Pages) Pop() Component {
	if len(p.stack) <= 1 {
		return nil
	}
	top := p.stack[len(p.stack)-1]
	p.HidePage(top.Name())
	p.stack = p.stack[:len(p.stack)-1]
	current := p.stack[len(p.stack)-1]
	p.ShowPage(current.Name())
	p.SendToFront(current.Name())
	p.notify()
	return top
}

// Top returns the current page, or nil when the stack is empty.
func (p *Pages) Top() Component {
	if len(p.stack) == 0 {
		return nil
	}
	return p.stack[len(p.stack)-1]
}

// Current returns the name of the current page.
func (p *Pages) Current() string {
	if top := p.Top(); top != nil {
		return top.Name()
	}
	return ""
}

// Stack returns the page names from root to top.
func (p *Pages) Stack() []string {
	names := make([]string, len(p.stack))
	for i, c := range p.stack {
		names[i] = c.Name()
	}
	return names
}

func (p *Pages) notify() {
	if p.onChange != nil {
		p.onChange(p.Top(), p.Stack())
	}
}
