package views

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/matheus3301/chatsim/internal/api/apiv1"
	"github.com/matheus3301/chatsim/internal/markup"
	"github.com/matheus3301/chatsim/internal/tui/ui"
)

// ConversationList is the sidebar: sectioned chats or teams.
type ConversationList struct {
	*tview.Table
	theme *ui.Theme
	// rows maps a table row to its conversation id; section headers map to "".
	rows  []string
	items []apiv1.ListItem
}

// NewConversationList creates a new conversation list table.
func NewConversationList(theme *ui.Theme) *ConversationList {
	table := tview.NewTable().
		SetSelectable(true, false).
		SetBorders(false)
	table.SetBorder(true)
	table.SetBorderColor(theme.BorderColor)
	table.SetBackgroundColor(theme.BgColor)
	table.SetSelectedStyle(tcell.StyleDefault.
		Foreground(theme.TableCursorFg).
		Background(theme.TableCursorBg))
	table.SetTitle(" Chats ")
	table.SetTitleColor(theme.TitleColor)

	return &ConversationList{
		Table: table,
		theme: theme,
	}
}

// Name implements ui.Component.
func (cl *ConversationList) Name() string { return "Conversations" }

// Focus implements ui.Component.
func (cl *ConversationList) Focus() tview.Primitive { return cl }

// Update renders snap's list. The cursor stays on the previously selected
// conversation if it is still listed, else moves to the active one.
func (cl *ConversationList) Update(snap *apiv1.Snapshot) {
	prev := cl.SelectedID()
	cl.Clear()
	cl.rows = cl.rows[:0]
	cl.items = snap.Items()

	title := "Chats"
	if snap.View == "teams" {
		title = "Teams"
	}
	if snap.Filter != "" {
		title = fmt.Sprintf("%s (%d) /%s", title, len(cl.items), tview.Escape(snap.Filter))
	}
	cl.SetTitle(" " + title + " ")

	if len(cl.items) == 0 {
		cl.SetCell(0, 0, tview.NewTableCell(" "+tview.Escape(snap.EmptyLabel)).
			SetSelectable(false).
			SetTextColor(cl.theme.PlaceholderColor).
			SetExpansion(1))
		cl.rows = append(cl.rows, "")
		return
	}

	activeRow, prevRow := -1, -1
	for _, sec := range snap.Sections {
		if sec.Label != "" {
			cl.SetCell(len(cl.rows), 0, tview.NewTableCell(" "+sec.Label).
				SetSelectable(false).
				SetTextColor(cl.theme.SectionColor).
				SetAttributes(tcell.AttrBold))
			cl.rows = append(cl.rows, "")
		}
		for _, it := range sec.Items {
			row := len(cl.rows)
			cl.setItem(row, it)
			cl.rows = append(cl.rows, it.ID)
			if it.Active {
				activeRow = row
			}
			if it.ID == prev {
				prevRow = row
			}
		}
	}
	switch {
	case prevRow >= 0:
		cl.Select(prevRow, 0)
	case activeRow >= 0:
		cl.Select(activeRow, 0)
	default:
		cl.Select(cl.firstSelectable(), 0)
	}
}

func (cl *ConversationList) setItem(row int, it apiv1.ListItem) {
	dot := " "
	if it.Available {
		dot = fmt.Sprintf("[%s]●[-]", ui.Tag(cl.theme.PresenceColor))
	}
	avatar := fmt.Sprintf("[::b]%s[-:-:-]%s", tview.Escape(Initial(it.AvatarRef, it.Name)), dot)

	name := tview.Escape(markup.SanitizeTerminal(it.Name))
	if it.Pinned {
		name = fmt.Sprintf("[%s]📌[-] %s", ui.Tag(cl.theme.PinnedColor), name)
	}
	preview := tview.Escape(markup.SanitizeTerminal(it.Preview))

	badge := ""
	if it.Badge != "" {
		badge = fmt.Sprintf("[%s::b]%s[-:-:-]", ui.Tag(cl.theme.BadgeColor), it.Badge)
	}

	cl.SetCell(row, 0, tview.NewTableCell(" "+avatar).SetTextColor(cl.theme.FgColor))
	cl.SetCell(row, 1, tview.NewTableCell(" "+name).SetExpansion(1).SetTextColor(cl.theme.FgColor))
	cl.SetCell(row, 2, tview.NewTableCell(" "+preview).SetExpansion(2).SetMaxWidth(44).SetTextColor(cl.theme.SectionColor))
	cl.SetCell(row, 3, tview.NewTableCell(" "+it.TimeLabel).SetTextColor(cl.theme.FgColor).SetAlign(tview.AlignRight))
	cl.SetCell(row, 4, tview.NewTableCell(" "+badge).SetAlign(tview.AlignRight))
}

func (cl *ConversationList) firstSelectable() int {
	for i, id := range cl.rows {
		if id != "" {
			return i
		}
	}
	return 0
}

// SelectedID returns the id under the cursor, or "".
func (cl *ConversationList) SelectedID() string {
	row, _ := cl.GetSelection()
	if row < 0 || row >= len(cl.rows) {
		return ""
	}
	return cl.rows[row]
}

// IDByIndex returns the id of the Nth listed conversation (1-based).
func (cl *ConversationList) IDByIndex(n int) string {
	if n < 1 || n > len(cl.items) {
		return ""
	}
	return cl.items[n-1].ID
}

// SelectID moves the cursor to id if it is listed.
func (cl *ConversationList) SelectID(id string) {
	for row, rid := range cl.rows {
		if rid != "" && rid == id {
			cl.Select(row, 0)
			return
		}
	}
}
