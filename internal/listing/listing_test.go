package listing

import (
	"testing"
	"time"

	"github.com/matheus3301/chatsim/internal/domain"
)

var now = time.Date(2026, 10, 14, 15, 30, 0, 0, time.UTC)

func chat(name string, activity time.Duration, pinned bool, unread int) domain.Chat {
	return domain.Chat{
		Header:       domain.Header{ID: "id-" + name, Name: name},
		LastActivity: now.Add(-activity).UnixMilli(),
		Pinned:       pinned,
		Presence:     domain.PresenceAvailable,
		UnreadCount:  unread,
	}
}

func names(items []Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Name
	}
	return out
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestBuildChatsSections(t *testing.T) {
	convs := []domain.Conversation{
		chat("Old pinned", 2*time.Hour, true, 0),
		chat("Older", 48*time.Hour, false, 0),
		chat("New pinned", time.Minute, true, 3),
		chat("Newest", 0, false, 12),
	}
	l := Build(domain.KindChat, convs, "", "id-Older", now)

	if l.Empty != NotEmpty {
		t.Fatalf("Empty = %v", l.Empty)
	}
	if len(l.Sections) != 2 {
		t.Fatalf("sections = %d, want 2", len(l.Sections))
	}
	if l.Sections[0].Label != SectionPinned || !equal(names(l.Sections[0].Items), []string{"New pinned", "Old pinned"}) {
		t.Errorf("pinned = %s %v", l.Sections[0].Label, names(l.Sections[0].Items))
	}
	if l.Sections[1].Label != SectionRecent || !equal(names(l.Sections[1].Items), []string{"Newest", "Older"}) {
		t.Errorf("recent = %s %v", l.Sections[1].Label, names(l.Sections[1].Items))
	}
	if got := l.Sections[1].Items[0].Badge; got != "9+" {
		t.Errorf("badge = %q, want 9+", got)
	}
	if !l.Sections[1].Items[1].Active {
		t.Error("active row not marked")
	}
	if got := l.Sections[1].Items[1].TimeLabel; got != "Mon" {
		t.Errorf("time label = %q, want Mon", got)
	}
}

func TestBuildOmitsEmptySections(t *testing.T) {
	l := Build(domain.KindChat, []domain.Conversation{chat("Solo", 0, false, 0)}, "", "", now)
	if len(l.Sections) != 1 || l.Sections[0].Label != SectionRecent {
		t.Errorf("sections = %+v", l.Sections)
	}
	l = Build(domain.KindChat, []domain.Conversation{chat("Solo", 0, true, 0)}, "", "", now)
	if len(l.Sections) != 1 || l.Sections[0].Label != SectionPinned {
		t.Errorf("sections = %+v", l.Sections)
	}
}

func TestBuildEqualActivityKeepsCollectionOrder(t *testing.T) {
	convs := []domain.Conversation{chat("B", 0, false, 0), chat("A", 0, false, 0)}
	l := Build(domain.KindChat, convs, "", "", now)
	if !equal(names(l.Items()), []string{"B", "A"}) {
		t.Errorf("order = %v", names(l.Items()))
	}
}

func TestBuildTeamsAlphabetical(t *testing.T) {
	convs := []domain.Conversation{
		domain.Team{Header: domain.Header{ID: "1", Name: "marketing Crew"}},
		domain.Team{Header: domain.Header{ID: "2", Name: "Development Team"}},
		domain.Team{Header: domain.Header{ID: "3", Name: "Émile Fans"}},
		domain.Team{Header: domain.Header{ID: "4", Name: "Zeta"}},
	}
	l := Build(domain.KindTeams, convs, "", "", now)
	if len(l.Sections) != 1 || l.Sections[0].Label != "" {
		t.Fatalf("sections = %+v", l.Sections)
	}
	want := []string{"Development Team", "Émile Fans", "marketing Crew", "Zeta"}
	if got := names(l.Items()); !equal(got, want) {
		t.Errorf("order = %v, want %v", got, want)
	}
}

func TestFilter(t *testing.T) {
	convs := []domain.Conversation{
		chat("Rohit Singh", 0, true, 0),
		chat("Group of Branding", 0, true, 0),
		chat("STRASSE", 0, false, 0),
	}
	tests := []struct {
		filter string
		want   []string
	}{
		{"", []string{"Rohit Singh", "Group of Branding", "STRASSE"}},
		{"ROHIT", []string{"Rohit Singh"}},
		{"of b", []string{"Group of Branding"}},
		{"straße", []string{"STRASSE"}},
		{"xyz", nil},
	}
	for _, tt := range tests {
		got := Filter(convs, tt.filter)
		var gotNames []string
		for _, c := range got {
			gotNames = append(gotNames, c.Info().Name)
		}
		if !equal(gotNames, tt.want) {
			t.Errorf("Filter(%q) = %v, want %v", tt.filter, gotNames, tt.want)
		}
	}
}

func TestBuildEmptyStates(t *testing.T) {
	convs := []domain.Conversation{chat("Rohit", 0, false, 0)}
	tests := []struct {
		name  string
		kind  domain.Kind
		convs []domain.Conversation
		filt  string
		empty Empty
		label string
	}{
		{"no matches", domain.KindChat, convs, "xyz", EmptyNoMatches, `No chats found matching "xyz".`},
		{"no items", domain.KindChat, nil, "", EmptyNoItems, "No chats found."},
		{"no teams", domain.KindTeams, nil, "", EmptyNoItems, "No teams found."},
		{"filter on empty collection", domain.KindTeams, nil, "dev", EmptyNoMatches, `No teams found matching "dev".`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := Build(tt.kind, tt.convs, tt.filt, "", now)
			if l.Empty != tt.empty || l.EmptyLabel != tt.label {
				t.Errorf("got %v %q, want %v %q", l.Empty, l.EmptyLabel, tt.empty, tt.label)
			}
			if l.Len() != 0 || len(l.Sections) != 0 {
				t.Errorf("empty list has sections: %+v", l.Sections)
			}
		})
	}
}

func TestBadge(t *testing.T) {
	tests := map[int]string{-1: "", 0: "", 1: "1", 9: "9", 10: "9+", 250: "9+"}
	for n, want := range tests {
		if got := Badge(n); got != want {
			t.Errorf("Badge(%d) = %q, want %q", n, got, want)
		}
	}
}
