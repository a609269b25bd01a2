package views

import (
	"fmt"

	"github.com/rivo/tview"

	"github.com/matheus3301/chatsim/internal/tui/ui"
)

// ViewRail is the narrow column naming the two collections, with the
// current one highlighted and the total unread count next to Chat.
type ViewRail struct {
	*tview.TextView
	theme *ui.Theme
}

// NewViewRail creates the rail.
func NewViewRail(theme *ui.Theme) *ViewRail {
	tv := tview.NewTextView().
		SetDynamicColors(true)
	tv.SetBorder(true)
	tv.SetBorderColor(theme.BorderColor)
	tv.SetBackgroundColor(theme.BgColor)

	return &ViewRail{TextView: tv, theme: theme}
}

// Update highlights view and shows unread next to the chat entry.
func (vr *ViewRail) Update(view string, unread int) {
	vr.Clear()
	entry := func(name, label string, count int) {
		style := fmt.Sprintf("[%s]", ui.Tag(vr.theme.FgColor))
		if view == name {
			style = fmt.Sprintf("[%s:%s:b]", ui.Tag(vr.theme.CrumbActiveFg), ui.Tag(vr.theme.CrumbActiveBg))
		}
		_, _ = fmt.Fprintf(vr, "%s %s [-:-:-]", style, label)
		if count > 0 {
			_, _ = fmt.Fprintf(vr, " [%s::b]%d[-:-:-]", ui.Tag(vr.theme.BadgeColor), count)
		}
		_, _ = fmt.Fprint(vr, "\n\n")
	}
	entry("chat", "Chat", unread)
	entry("teams", "Teams", 0)
}
