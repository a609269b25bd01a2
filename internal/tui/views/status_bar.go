package views

import (
	"fmt"
	"time"

	"github.com/rivo/tview"

	"github.com/matheus3301/chatsim/internal/tui/ui"
)

// StatusBar displays the profile, engine state and flash messages.
type StatusBar struct {
	*tview.TextView
	theme   *ui.Theme
	profile string
	state   string
	now     time.Time
	flash   *ui.FlashMessage
}

// NewStatusBar creates a new status bar.
func NewStatusBar(theme *ui.Theme) *StatusBar {
	tv := tview.NewTextView().
		SetDynamicColors(true)
	tv.SetBackgroundColor(tview.Styles.MoreContrastBackgroundColor)

	return &StatusBar{TextView: tv, theme: theme}
}

// SetProfile updates the profile name display.
func (sb *StatusBar) SetProfile(name string) {
	sb.profile = name
	sb.render()
}

// SetState updates the engine state and the daemon's clock.
func (sb *StatusBar) SetState(state string, now time.Time) {
	sb.state = state
	sb.now = now
	sb.render()
}

// SetFlash sets or clears (nil) the transient message.
func (sb *StatusBar) SetFlash(msg *ui.FlashMessage) {
	sb.flash = msg
	sb.render()
}

func (sb *StatusBar) render() {
	sb.Clear()

	stateColor := "green"
	switch sb.state {
	case "DEGRADED":
		stateColor = "orange"
	case "STOPPED", "":
		stateColor = "red"
	}

	clock := ""
	if !sb.now.IsZero() {
		clock = sb.now.Format("3:04 PM")
	}

	line := fmt.Sprintf(" [::b]%s[-:-:-] | [%s]%s[-] | %s", tview.Escape(sb.profile), stateColor, sb.state, clock)
	if sb.flash != nil {
		color := ui.Tag(sb.theme.FlashColor(sb.flash.Level))
		line += fmt.Sprintf(" | [%s]%s[-]", color, tview.Escape(sb.flash.Text))
	}

	_, _ = fmt.Fprint(sb, line)
}
