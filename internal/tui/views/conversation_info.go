package views

import (
	"fmt"
	"time"

	"github.com/rivo/tview"

	"github.com/matheus3301/chatsim/internal/api/apiv1"
	"github.com/matheus3301/chatsim/internal/timefmt"
	"github.com/matheus3301/chatsim/internal/tui/ui"
)

// ConversationInfo displays details about the active conversation.
type ConversationInfo struct {
	*tview.TextView
	theme *ui.Theme
}

// NewConversationInfo creates a new conversation info view.
func NewConversationInfo(theme *ui.Theme) *ConversationInfo {
	tv := tview.NewTextView().
		SetDynamicColors(true)
	tv.SetBorder(true)
	tv.SetBorderColor(theme.BorderColor)
	tv.SetBackgroundColor(theme.BgColor)
	tv.SetTextColor(theme.FgColor)
	tv.SetTitle(" Details ")
	tv.SetTitleColor(theme.TitleColor)

	return &ConversationInfo{
		TextView: tv,
		theme:    theme,
	}
}

// Name implements ui.Component.
func (ci *ConversationInfo) Name() string { return "Details" }

// Focus implements ui.Component.
func (ci *ConversationInfo) Focus() tview.Primitive { return ci }

// Update renders the active conversation of snap.
func (ci *ConversationInfo) Update(snap *apiv1.Snapshot) {
	ci.Clear()
	a := snap.Active
	if a == nil {
		ci.SetTitle(" Details ")
		_, _ = fmt.Fprintf(ci, "\n [%s]%s[-]", ui.Tag(ci.theme.PlaceholderColor), snap.ContentPlaceholder)
		return
	}

	fg := ui.Tag(ci.theme.FgColor)
	ct := ui.Tag(ci.theme.CounterColor)
	row := func(label, value string) {
		_, _ = fmt.Fprintf(ci, " [%s::b]%-13s[-:-:-] [%s]%s[-]\n", fg, label+":", ct, tview.Escape(value))
	}

	_, _ = fmt.Fprintln(ci)
	row("Name", a.Name)
	row("ID", a.ID)
	row("Kind", a.Kind)
	row("Avatar", Initial(a.AvatarRef, a.Name))
	if a.Kind == "chat" {
		row("Presence", a.Presence)
		row("Pinned", fmt.Sprint(a.Pinned))
		row("Unread", fmt.Sprint(a.UnreadCount))
		row("Messages", fmt.Sprint(a.Messages))
		if n := len(snap.Messages); n > 0 {
			last := snap.Messages[n-1]
			now := time.UnixMilli(snap.Now)
			row("Last Active", timefmt.Relative(last.CreatedAt, now))
			row("Unseen Sent", fmt.Sprint(unseenSent(snap.Messages)))
		}
	}
	ci.SetTitle(fmt.Sprintf(" %s Details ", tview.Escape(a.Name)))
}

// unseenSent counts sent messages still waiting for a read receipt.
func unseenSent(msgs []apiv1.Message) int {
	n := 0
	for _, m := range msgs {
		if ReceiptMark(m) == ReceiptDelivered {
			n++
		}
	}
	return n
}
