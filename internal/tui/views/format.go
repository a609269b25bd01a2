package views

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/matheus3301/chatsim/internal/api/apiv1"
	"github.com/matheus3301/chatsim/internal/markup"
)

// Receipt marks for sent messages.
const (
	ReceiptDelivered = "✓"
	ReceiptRead      = "✓✓"
)

// ReceiptMark returns the delivery mark of a sent message, or "" for a
// received one.
func ReceiptMark(m apiv1.Message) string {
	if m.Direction != "sent" {
		return ""
	}
	if m.Read {
		return ReceiptRead
	}
	return ReceiptDelivered
}

// ReactionLine renders reactions as "👍 1  ❤ 2" in stored order.
func ReactionLine(rs []apiv1.Reaction) string {
	parts := make([]string, 0, len(rs))
	for _, r := range rs {
		if r.Count <= 0 {
			continue
		}
		parts = append(parts, markup.SanitizeTerminal(r.Kind)+" "+strconv.Itoa(r.Count))
	}
	return strings.Join(parts, "  ")
}

// TypingLine returns the typing indicator text for the active conversation,
// or "" when t belongs to another conversation.
func TypingLine(t *apiv1.Typing, activeID string) string {
	if t == nil || t.ConversationID != activeID {
		return ""
	}
	return t.Name + " is typing..."
}

// Initial returns the avatar letter. Generated placeholders carry it after
// the "placeholder:" prefix; anything else falls back to the name.
func Initial(avatarRef, name string) string {
	if rest, ok := strings.CutPrefix(avatarRef, "placeholder:"); ok && rest != "" {
		return rest
	}
	r, _ := utf8.DecodeRuneInString(strings.TrimSpace(name))
	if r == utf8.RuneError {
		return "?"
	}
	return strings.ToUpper(string(r))
}
