package views

import (
	"fmt"
	"strings"

	"github.com/rivo/tview"

	"github.com/matheus3301/chatsim/internal/tui/ui"
)

// HelpView displays the key binding reference.
type HelpView struct {
	*tview.TextView
	theme *ui.Theme
}

// NewHelpView creates a new help view.
func NewHelpView(theme *ui.Theme) *HelpView {
	tv := tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true)
	tv.SetBorder(true)
	tv.SetBorderColor(theme.BorderColor)
	tv.SetBackgroundColor(theme.BgColor)
	tv.SetTextColor(theme.FgColor)
	tv.SetTitle(" Help ")
	tv.SetTitleColor(theme.TitleColor)

	hv := &HelpView{
		TextView: tv,
		theme:    theme,
	}
	hv.render()
	return hv
}

// Name implements ui.Component.
func (hv *HelpView) Name() string { return "Help" }

// Focus implements ui.Component.
func (hv *HelpView) Focus() tview.Primitive { return hv }

var helpSections = []struct {
	title string
	keys  [][2]string
}{
	{"Global", [][2]string{
		{"Tab", "Switch between Chat and Teams"},
		{":", "Command mode"},
		{"/", "Filter the list"},
		{"?", "Help"},
		{"Esc", "Cancel / go back"},
		{"q", "Quit"},
	}},
	{"Conversation List", [][2]string{
		{"Enter", "Open conversation"},
		{"j/k", "Move down / up"},
		{"1-9", "Open the Nth conversation"},
		{"0", "Clear the filter"},
		{"n", "New chat (or team in the Teams view)"},
		{"r", "Simulate a reply in the active chat"},
		{"d", "Conversation details"},
	}},
	{"Message Thread", [][2]string{
		{"i", "Focus composer"},
		{"Enter", "Send message (in composer)"},
		{"Esc", "Leave composer"},
	}},
	{"Commands", [][2]string{
		{":chat / :teams", "Switch view"},
		{":open <name>", "Open a conversation by name"},
		{":new [chat|team] <name>", "Create a conversation"},
		{":receive", "Simulate a reply"},
		{":read", "Mark sent messages in the active chat read"},
		{":filter [text]", "Set or clear the filter"},
		{":help", "Show this help"},
		{":quit", "Quit"},
	}},
}

func (hv *HelpView) render() {
	kc := ui.Tag(hv.theme.MenuKeyColor)
	var b strings.Builder
	for _, sec := range helpSections {
		fmt.Fprintf(&b, "\n  [::b]%s[-:-:-]\n\n", sec.title)
		for _, k := range sec.keys {
			fmt.Fprintf(&b, "  [%s]%-24s[-:-:-] %s\n", kc, tview.Escape(k[0]), k[1])
		}
	}
	_, _ = fmt.Fprint(hv, b.String())
}
