package domain

import (
	"encoding/json"
	"errors"
	"fmt"
)

type recordDoc struct {
	Chats    []chatRecord               `json:"chats"`
	Teams    []teamRecord               `json:"teams"`
	Messages map[string][]messageRecord `json:"messages"`
}

type chatRecord struct {
	ID                 string    `json:"id"`
	Name               string    `json:"name"`
	Avatar             string    `json:"avatar"`
	LastMessagePreview string    `json:"lastMessagePreview"`
	Timestamp          int64     `json:"timestamp"`
	IsPinned           *bool     `json:"isPinned,omitempty"`
	Status             *Presence `json:"status,omitempty"`
	UnreadCount        *int      `json:"unreadCount,omitempty"`
}

type teamRecord struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
}

type messageRecord struct {
	ID        string            `json:"id"`
	ChatID    string            `json:"chatId"`
	Sender    string            `json:"sender"`
	Text      string            `json:"text"`
	Timestamp int64             `json:"timestamp"`
	Type      Direction         `json:"type"`
	IsRead    *bool             `json:"isRead,omitempty"`
	Reactions *[]reactionRecord `json:"reactions,omitempty"`
}

type reactionRecord struct {
	Type  string   `json:"type"`
	Count int      `json:"count"`
	Users []string `json:"users"`
}

// Repairs lists what Decode had to fix on the way in.
type Repairs struct {
	Backfilled       int
	MissingLists     []string
	OrphanLists      []string
	SkippedRecords   int
	DerivedRefreshed int
}

// Empty reports whether nothing was repaired.
func (r Repairs) Empty() bool {
	return r.Backfilled == 0 && len(r.MissingLists) == 0 && len(r.OrphanLists) == 0 &&
		r.SkippedRecords == 0 && r.DerivedRefreshed == 0
}

// Encode serialises the store into the domain-data blob.
func (s *Store) Encode() ([]byte, error) {
	doc := recordDoc{
		Chats:    make([]chatRecord, 0, len(s.chats)),
		Teams:    make([]teamRecord, 0, len(s.teams)),
		Messages: make(map[string][]messageRecord, len(s.messages)),
	}
	for _, c := range s.chats {
		pinned, status, unread := c.Pinned, c.Presence, c.UnreadCount
		doc.Chats = append(doc.Chats, chatRecord{
			ID:                 c.ID,
			Name:               c.Name,
			Avatar:             c.AvatarRef,
			LastMessagePreview: c.LastMessagePreview,
			Timestamp:          c.LastActivity,
			IsPinned:           &pinned,
			Status:             &status,
			UnreadCount:        &unread,
		})
	}
	for _, t := range s.teams {
		doc.Teams = append(doc.Teams, teamRecord{ID: t.ID, Name: t.Name, Avatar: t.AvatarRef})
	}
	for id, list := range s.messages {
		recs := make([]messageRecord, 0, len(list))
		for _, m := range list {
			read := m.Read
			reactions := make([]reactionRecord, 0, len(m.Reactions))
			for _, r := range m.Reactions {
				reactions = append(reactions, reactionRecord{Type: r.Kind, Count: r.Count, Users: r.Reactors})
			}
			recs = append(recs, messageRecord{
				ID:        m.ID,
				ChatID:    m.ConversationID,
				Sender:    m.Sender,
				Text:      m.Body,
				Timestamp: m.CreatedAt,
				Type:      m.Direction,
				IsRead:    &read,
				Reactions: &reactions,
			})
		}
		doc.Messages[id] = recs
	}
	return json.Marshal(doc)
}

// Decode rebuilds a store from a domain-data blob. Optional fields missing
// from older records are backfilled, chats without a message list get an
// empty one and lists keyed by unknown chats are dropped. Malformed JSON is
// returned as an error so the caller can fall back to the seed fixture, as is
// a top-level null. Records only need an id; a blank name is kept as is.
func Decode(data []byte, previewLength int) (*Store, Repairs, error) {
	var rep Repairs
	var doc *recordDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, rep, fmt.Errorf("decode domain data: %w", err)
	}
	if doc == nil {
		return nil, rep, errors.New("decode domain data: null document")
	}

	s := NewStore(previewLength)
	for _, r := range doc.Chats {
		c := Chat{
			Header:             Header{ID: r.ID, Name: r.Name, AvatarRef: r.Avatar},
			LastMessagePreview: r.LastMessagePreview,
			LastActivity:       r.Timestamp,
			Presence:           PresenceAvailable,
		}
		if r.IsPinned != nil {
			c.Pinned = *r.IsPinned
		} else {
			rep.Backfilled++
		}
		if r.Status != nil && *r.Status != "" {
			c.Presence = *r.Status
		} else {
			rep.Backfilled++
		}
		if r.UnreadCount != nil {
			c.UnreadCount = max(*r.UnreadCount, 0)
		} else {
			rep.Backfilled++
		}
		if err := s.insert(c); err != nil {
			rep.SkippedRecords++
		}
	}
	for _, r := range doc.Teams {
		if err := s.insert(Team{Header{ID: r.ID, Name: r.Name, AvatarRef: r.Avatar}}); err != nil {
			rep.SkippedRecords++
		}
	}

	for id, recs := range doc.Messages {
		if s.chat(id) == nil {
			rep.OrphanLists = append(rep.OrphanLists, id)
			continue
		}
		list := make([]*Message, 0, len(recs))
		for _, r := range recs {
			if r.Type != Sent && r.Type != Received {
				rep.SkippedRecords++
				continue
			}
			m := &Message{
				ID:             r.ID,
				ConversationID: id,
				Sender:         r.Sender,
				Body:           r.Text,
				CreatedAt:      r.Timestamp,
				Direction:      r.Type,
				Read:           r.Type == Received,
				Reactions:      []Reaction{},
			}
			if r.IsRead != nil {
				m.Read = *r.IsRead
			} else {
				rep.Backfilled++
			}
			if r.Reactions != nil {
				for _, rr := range *r.Reactions {
					m.Reactions = append(m.Reactions, Reaction{Kind: rr.Type, Count: rr.Count, Reactors: rr.Users})
				}
			} else {
				rep.Backfilled++
			}
			list = append(list, m)
		}
		s.messages[id] = list
	}

	for _, c := range s.chats {
		if _, ok := doc.Messages[c.ID]; !ok {
			rep.MissingLists = append(rep.MissingLists, c.ID)
		}
		if s.refreshDerived(c) {
			rep.DerivedRefreshed++
		}
	}
	return s, rep, nil
}

// refreshDerived makes a loaded chat's preview and activity mirror its latest
// message. Chats without messages keep their stored values.
func (s *Store) refreshDerived(c *Chat) bool {
	latest, ok := s.latest(c.ID)
	if !ok {
		return false
	}
	preview := Preview(latest.Sender, latest.Body, s.previewLength)
	if c.LastMessagePreview == preview && c.LastActivity == latest.CreatedAt {
		return false
	}
	c.LastMessagePreview = preview
	c.LastActivity = latest.CreatedAt
	return true
}
