package ui

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/rivo/tview"
)

// ProfileData holds daemon information for the header.
type ProfileData struct {
	Profile   string
	State     string
	View      string
	Chats     int
	Teams     int
	Unread    int
	StartedAt time.Time
}

// ProfileInfo displays profile metadata in the header.
type ProfileInfo struct {
	*tview.TextView
	theme *Theme
}

// NewProfileInfo creates a new profile info panel.
func NewProfileInfo(theme *Theme) *ProfileInfo {
	tv := tview.NewTextView().
		SetDynamicColors(true)
	tv.SetBackgroundColor(theme.BgColor)
	tv.SetBorderPadding(0, 0, 1, 1)

	return &ProfileInfo{
		TextView: tv,
		theme:    theme,
	}
}

// Update renders the profile info.
func (pi *ProfileInfo) Update(data *ProfileData) {
	pi.Clear()
	if data == nil {
		return
	}

	fg := colorName(pi.theme.FgColor)
	ct := colorName(pi.theme.CounterColor)

	started := "-"
	if !data.StartedAt.IsZero() {
		started = humanize.Time(data.StartedAt)
	}

	_, _ = fmt.Fprintf(pi,
		"[%s::b]Profile:[-:-:-] [%s]%s[-]\n"+
			"[%s::b]State:[-:-:-]   [%s]%s[-]\n"+
			"[%s::b]View:[-:-:-]    [%s]%s[-]\n"+
			"[%s::b]Chats:[-:-:-]   [%s]%d[-] [%s](%d unread)[-]\n"+
			"[%s::b]Teams:[-:-:-]   [%s]%d[-]\n"+
			"[%s::b]Started:[-:-:-] [%s]%s[-]",
		fg, ct, tview.Escape(data.Profile),
		fg, ct, data.State,
		fg, ct, data.View,
		fg, ct, data.Chats, ct, data.Unread,
		fg, ct, data.Teams,
		fg, ct, started,
	)
}
