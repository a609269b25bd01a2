package ui

import "github.com/gdamore/tcell/v2"

// Theme holds color constants for the TUI.
type Theme struct {
	BgColor           tcell.Color
	FgColor           tcell.Color
	BorderColor       tcell.Color
	BorderFocusColor  tcell.Color
	TableCursorFg     tcell.Color
	TableCursorBg     tcell.Color
	CrumbActiveFg     tcell.Color
	CrumbActiveBg     tcell.Color
	CrumbInactiveFg   tcell.Color
	CrumbInactiveBg   tcell.Color
	MenuKeyColor      tcell.Color
	NumericKeyColor   tcell.Color
	TitleColor        tcell.Color
	CounterColor      tcell.Color
	FlashInfoColor    tcell.Color
	FlashWarnColor    tcell.Color
	FlashErrColor     tcell.Color
	PromptBorderColor tcell.Color

	SectionColor     tcell.Color
	BadgeColor       tcell.Color
	PresenceColor    tcell.Color
	PinnedColor      tcell.Color
	SentColor        tcell.Color
	ReceivedColor    tcell.Color
	ReceiptColor     tcell.Color
	SeparatorColor   tcell.Color
	TypingColor      tcell.Color
	PlaceholderColor tcell.Color
}

// DefaultTheme returns a k9s-inspired dark theme.
func DefaultTheme() *Theme {
	return &Theme{
		BgColor:           tcell.ColorBlack,
		FgColor:           tcell.ColorCadetBlue,
		BorderColor:       tcell.ColorDodgerBlue,
		BorderFocusColor:  tcell.ColorLightSkyBlue,
		TableCursorFg:     tcell.ColorBlack,
		TableCursorBg:     tcell.ColorAqua,
		CrumbActiveFg:     tcell.ColorBlack,
		CrumbActiveBg:     tcell.ColorOrange,
		CrumbInactiveFg:   tcell.ColorBlack,
		CrumbInactiveBg:   tcell.ColorAqua,
		MenuKeyColor:      tcell.ColorDodgerBlue,
		NumericKeyColor:   tcell.ColorFuchsia,
		TitleColor:        tcell.ColorFuchsia,
		CounterColor:      tcell.ColorPapayaWhip,
		FlashInfoColor:    tcell.ColorNavajoWhite,
		FlashWarnColor:    tcell.ColorOrange,
		FlashErrColor:     tcell.ColorOrangeRed,
		PromptBorderColor: tcell.ColorDodgerBlue,

		SectionColor:     tcell.ColorGray,
		BadgeColor:       tcell.ColorOrangeRed,
		PresenceColor:    tcell.ColorLimeGreen,
		PinnedColor:      tcell.ColorGold,
		SentColor:        tcell.ColorLightSkyBlue,
		ReceivedColor:    tcell.ColorPapayaWhip,
		ReceiptColor:     tcell.ColorAqua,
		SeparatorColor:   tcell.ColorGray,
		TypingColor:      tcell.ColorNavajoWhite,
		PlaceholderColor: tcell.ColorGray,
	}
}

// Tag returns the tview color tag name for c.
func Tag(c tcell.Color) string {
	return colorName(c)
}
