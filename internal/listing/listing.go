// Package listing turns a conversation collection into the ordered, sectioned
// list shown in the sidebar.
package listing

import (
	"cmp"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/matheus3301/chatsim/internal/domain"
	"github.com/matheus3301/chatsim/internal/timefmt"
)

// Empty describes why a list has no items.
type Empty int

const (
	// NotEmpty means at least one item is listed.
	NotEmpty Empty = iota
	// EmptyNoItems means the collection itself is empty.
	EmptyNoItems
	// EmptyNoMatches means the filter excluded everything.
	EmptyNoMatches
)

func (e Empty) String() string {
	switch e {
	case EmptyNoItems:
		return "no_items"
	case EmptyNoMatches:
		return "no_matches"
	default:
		return "not_empty"
	}
}

// Section labels.
const (
	SectionPinned = "Pinned"
	SectionRecent = "Recent"
)

// Item is one rendered row.
type Item struct {
	ID        string
	Name      string
	AvatarRef string
	Preview   string
	TimeLabel string
	Badge     string
	// Available controls the presence dot; only chats marked available show it.
	Available bool
	Pinned    bool
	Active    bool
}

// Section is a labelled group of items. Team lists use one unlabelled section.
type Section struct {
	Label string
	Items []Item
}

// List is the full sidebar projection.
type List struct {
	Kind       domain.Kind
	Sections   []Section
	Empty      Empty
	EmptyLabel string
}

// Len returns the number of items across all sections.
func (l List) Len() int {
	n := 0
	for _, s := range l.Sections {
		n += len(s.Items)
	}
	return n
}

// Items returns all items in display order.
func (l List) Items() []Item {
	out := make([]Item, 0, l.Len())
	for _, s := range l.Sections {
		out = append(out, s.Items...)
	}
	return out
}

// Build filters, orders and sections convs. activeID marks the active row and
// now anchors the time labels.
func Build(kind domain.Kind, convs []domain.Conversation, filter, activeID string, now time.Time) List {
	out := List{Kind: kind}
	matched := Filter(convs, filter)

	if len(matched) == 0 {
		out.Empty = EmptyNoItems
		if filter != "" {
			out.Empty = EmptyNoMatches
		}
		out.EmptyLabel = EmptyLabel(kind, out.Empty, filter)
		return out
	}

	switch kind {
	case domain.KindChat:
		sortByActivity(matched)
		var pinned, recent []Item
		for _, c := range matched {
			it := item(c, activeID, now)
			if it.Pinned {
				pinned = append(pinned, it)
			} else {
				recent = append(recent, it)
			}
		}
		if len(pinned) > 0 {
			out.Sections = append(out.Sections, Section{Label: SectionPinned, Items: pinned})
		}
		if len(recent) > 0 {
			out.Sections = append(out.Sections, Section{Label: SectionRecent, Items: recent})
		}
	default:
		sortByName(matched)
		items := make([]Item, 0, len(matched))
		for _, c := range matched {
			items = append(items, item(c, activeID, now))
		}
		out.Sections = []Section{{Items: items}}
	}
	return out
}

// Filter keeps conversations whose name contains filter under Unicode case
// folding. An empty filter keeps everything.
func Filter(convs []domain.Conversation, filter string) []domain.Conversation {
	out := make([]domain.Conversation, 0, len(convs))
	if filter == "" {
		return append(out, convs...)
	}
	fold := cases.Fold()
	needle := fold.String(filter)
	for _, c := range convs {
		if strings.Contains(fold.String(c.Info().Name), needle) {
			out = append(out, c)
		}
	}
	return out
}

// EmptyLabel renders the placeholder text for an empty list.
func EmptyLabel(kind domain.Kind, e Empty, filter string) string {
	noun := "chats"
	if kind == domain.KindTeams {
		noun = "teams"
	}
	switch e {
	case EmptyNoMatches:
		return fmt.Sprintf("No %s found matching %q.", noun, filter)
	case EmptyNoItems:
		return fmt.Sprintf("No %s found.", noun)
	}
	return ""
}

// Badge renders an unread count: blank for zero, capped at "9+".
func Badge(n int) string {
	switch {
	case n <= 0:
		return ""
	case n > 9:
		return "9+"
	}
	return strconv.Itoa(n)
}

func item(c domain.Conversation, activeID string, now time.Time) Item {
	h := c.Info()
	it := Item{ID: h.ID, Name: h.Name, AvatarRef: h.AvatarRef, Active: h.ID == activeID}
	if chat, ok := c.(domain.Chat); ok {
		it.Preview = chat.LastMessagePreview
		it.TimeLabel = timefmt.List(chat.LastActivity, now)
		it.Badge = Badge(chat.UnreadCount)
		it.Available = chat.Presence == domain.PresenceAvailable
		it.Pinned = chat.Pinned
	}
	return it
}

func sortByActivity(convs []domain.Conversation) {
	slices.SortStableFunc(convs, func(a, b domain.Conversation) int {
		return cmp.Compare(activity(b), activity(a))
	})
}

func sortByName(convs []domain.Conversation) {
	col := collate.New(language.Und, collate.IgnoreCase)
	slices.SortStableFunc(convs, func(a, b domain.Conversation) int {
		return col.CompareString(a.Info().Name, b.Info().Name)
	})
}

func activity(c domain.Conversation) int64 {
	if chat, ok := c.(domain.Chat); ok {
		return chat.LastActivity
	}
	return 0
}
