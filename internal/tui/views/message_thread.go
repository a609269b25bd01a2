package views

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/matheus3301/chatsim/internal/api/apiv1"
	"github.com/matheus3301/chatsim/internal/markup"
	"github.com/matheus3301/chatsim/internal/tui/ui"
)

// MessageThread is the content pane: the active conversation's messages,
// the typing indicator and the composer.
type MessageThread struct {
	*tview.Flex
	theme    *ui.Theme
	messages *tview.TextView
	typing   *tview.TextView
	composer *tview.InputField
	enabled  bool
	onSend   func(text string)
}

// NewMessageThread creates a new message thread view.
func NewMessageThread(theme *ui.Theme) *MessageThread {
	messages := tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true).
		SetWordWrap(true)
	messages.SetBorder(true)
	messages.SetBorderColor(theme.BorderColor)
	messages.SetBackgroundColor(theme.BgColor)
	messages.SetTextColor(theme.FgColor)
	messages.SetTitleColor(theme.TitleColor)

	typing := tview.NewTextView().SetDynamicColors(true)
	typing.SetBackgroundColor(theme.BgColor)
	typing.SetTextColor(theme.TypingColor)

	composer := tview.NewInputField().
		SetLabel(" > ").
		SetFieldWidth(0)
	composer.SetBorder(true)
	composer.SetBorderColor(theme.BorderColor)
	composer.SetBackgroundColor(theme.BgColor)
	composer.SetFieldBackgroundColor(theme.BgColor)
	composer.SetFieldTextColor(theme.FgColor)
	composer.SetLabelColor(theme.MenuKeyColor)
	composer.SetPlaceholderTextColor(theme.PlaceholderColor)
	composer.SetTitle(" Compose (i to focus) ")
	composer.SetTitleColor(theme.TitleColor)

	flex := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(messages, 0, 1, false).
		AddItem(typing, 1, 0, false).
		AddItem(composer, 3, 0, false)

	mt := &MessageThread{
		Flex:     flex,
		theme:    theme,
		messages: messages,
		typing:   typing,
		composer: composer,
	}

	composer.SetDoneFunc(func(key tcell.Key) {
		if key != tcell.KeyEnter || !mt.enabled || mt.onSend == nil {
			return
		}
		text := composer.GetText()
		if strings.TrimSpace(text) == "" {
			return
		}
		mt.onSend(text)
		composer.SetText("")
	})

	return mt
}

// SetOnSend sets the callback when a message is submitted.
func (mt *MessageThread) SetOnSend(fn func(text string)) {
	mt.onSend = fn
}

// Update renders the content pane from snap.
func (mt *MessageThread) Update(snap *apiv1.Snapshot) {
	mt.messages.Clear()
	mt.messages.SetTitle(" " + tview.Escape(mt.title(snap)) + " ")

	if snap.ContentPlaceholder != "" {
		_, _ = fmt.Fprintf(mt.messages, "\n[%s]%s[-]", ui.Tag(mt.theme.PlaceholderColor), markup.Tview(snap.ContentPlaceholder))
	}
	for _, m := range snap.Messages {
		mt.writeMessage(m)
	}
	mt.messages.ScrollToEnd()

	activeID := ""
	if snap.Active != nil {
		activeID = snap.Active.ID
	}
	mt.typing.SetText(" " + tview.Escape(TypingLine(snap.Typing, activeID)))

	mt.enabled = snap.InputEnabled
	mt.composer.SetPlaceholder(snap.InputPlaceholder)
	if !mt.enabled {
		mt.composer.SetText("")
	}
}

func (mt *MessageThread) title(snap *apiv1.Snapshot) string {
	a := snap.Active
	if a == nil {
		return snap.Title
	}
	if a.Kind == "chat" && a.Presence != "" {
		return fmt.Sprintf("%s · %s", snap.Title, a.Presence)
	}
	return snap.Title
}

func (mt *MessageThread) writeMessage(m apiv1.Message) {
	if m.DateSeparator {
		_, _ = fmt.Fprintf(mt.messages, "\n[%s]──── %s ────[-]\n", ui.Tag(mt.theme.SeparatorColor), m.DateLabel)
	}

	color := mt.theme.ReceivedColor
	if m.Direction == "sent" {
		color = mt.theme.SentColor
	}
	header := fmt.Sprintf("[%s::b]%s[-:-:-] [::d]%s[-:-:-]",
		ui.Tag(color), tview.Escape(markup.SanitizeTerminal(m.Sender)), m.TimeLabel)
	if mark := ReceiptMark(m); mark != "" {
		header += fmt.Sprintf(" [%s]%s[-]", ui.Tag(mt.theme.ReceiptColor), mark)
	}
	_, _ = fmt.Fprintf(mt.messages, "%s\n%s\n", header, markup.Tview(m.Body))
	if line := ReactionLine(m.Reactions); line != "" {
		_, _ = fmt.Fprintf(mt.messages, "  %s\n", line)
	}
	_, _ = fmt.Fprintln(mt.messages)
}

// Messages returns the messages text view (for focus management).
func (mt *MessageThread) Messages() *tview.TextView {
	return mt.messages
}

// Composer returns the composer input field (for focus management).
func (mt *MessageThread) Composer() *tview.InputField {
	return mt.composer
}

// InputEnabled reports whether the composer accepts messages.
func (mt *MessageThread) InputEnabled() bool {
	return mt.enabled
}
