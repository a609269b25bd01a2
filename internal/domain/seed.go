package domain

import (
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

// AvatarPlaceholder returns the placeholder avatar token for a name.
func AvatarPlaceholder(name string) string {
	r, _ := utf8.DecodeRuneInString(strings.TrimSpace(name))
	if r == utf8.RuneError {
		r = '?'
	}
	return "placeholder:" + string(unicode.ToUpper(r))
}

type seedMessage struct {
	sender    string
	body      string
	ago       time.Duration
	direction Direction
	reactions []Reaction
}

type seedChat struct {
	name     string
	pinned   bool
	unread   int
	messages []seedMessage
}

var seedChats = []seedChat{
	{
		name:   "Rohit Singh",
		pinned: true,
		messages: []seedMessage{
			{sender: "Rohit Singh", body: "**Rahul Kumar** & **Ashwin Grover**, is it an off for you guys today?", ago: 48 * time.Hour, direction: Received},
			{sender: "Ashwin Grover", body: "Hi *Rohit Singh* - Good Morning, We are working today.", ago: 6 * time.Minute, direction: Received},
			{sender: "Rohit Singh", body: "Okay", ago: 5 * time.Minute, direction: Received,
				reactions: []Reaction{{Kind: "\U0001F44D", Count: 1, Reactors: []string{LocalSender}}}},
		},
	},
	{
		name:   "Group of Branding",
		pinned: true,
		unread: 1,
		messages: []seedMessage{
			{sender: LocalSender, body: "Good Morning Team, \n How was going?", ago: 10 * time.Minute, direction: Sent},
		},
	},
	{
		name: "Project Phoenix",
		messages: []seedMessage{
			{sender: "John", body: "Meeting moved to 3 PM.", ago: 24 * time.Hour, direction: Received},
		},
	},
}

var seedTeams = []string{"Development Team", "Marketing Crew"}

// Seed builds the demonstration dataset used when nothing usable is
// persisted. IDs are derived from names, timestamps are offsets from now.
func Seed(now time.Time, previewLength int) *Store {
	s := NewStore(previewLength)
	for _, sc := range seedChats {
		id := StableID("chat/" + sc.name)
		_ = s.AddConversation(Chat{
			Header:      Header{ID: id, Name: sc.name, AvatarRef: AvatarPlaceholder(sc.name)},
			Pinned:      sc.pinned,
			Presence:    PresenceAvailable,
			UnreadCount: sc.unread,
		})
		for i, sm := range sc.messages {
			_ = s.AddMessage(Message{
				ID:             StableID(id + "/" + string(rune('a'+i))),
				ConversationID: id,
				Sender:         sm.sender,
				Body:           sm.body,
				CreatedAt:      now.Add(-sm.ago).UnixMilli(),
				Direction:      sm.direction,
				Read:           sm.direction == Received,
				Reactions:      sm.reactions,
			})
		}
	}
	for _, name := range seedTeams {
		_ = s.AddConversation(Team{Header{ID: StableID("team/" + name), Name: name, AvatarRef: AvatarPlaceholder(name)}})
	}
	return s
}
