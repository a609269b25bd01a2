package domain

import (
	"slices"
	"testing"
	"time"
)

func TestEncodeDecodePreservesState(t *testing.T) {
	now := time.Date(2026, 10, 14, 15, 30, 0, 0, time.UTC)
	orig := Seed(now, 0)
	_ = orig.SetUnreadCount(StableID("chat/Project Phoenix"), 4)

	data, err := orig.Encode()
	if err != nil {
		t.Fatal(err)
	}
	got, rep, err := Decode(data, 0)
	if err != nil {
		t.Fatal(err)
	}
	if !rep.Empty() {
		t.Errorf("repairs on a clean blob: %+v", rep)
	}

	for _, kind := range []Kind{KindChat, KindTeams} {
		a, b := orig.ListConversations(kind), got.ListConversations(kind)
		if len(a) != len(b) {
			t.Fatalf("%s count %d != %d", kind, len(a), len(b))
		}
		for i := range a {
			if a[i] != b[i] {
				t.Errorf("%s[%d] = %+v, want %+v", kind, i, b[i], a[i])
			}
		}
	}
	id := StableID("chat/Rohit Singh")
	msgs := got.ListMessages(id)
	if len(msgs) != 3 {
		t.Fatalf("messages = %d, want 3", len(msgs))
	}
	if r := msgs[2].Reactions; len(r) != 1 || r[0].Count != 1 || !slices.Equal(r[0].Reactors, []string{"You"}) {
		t.Errorf("reactions = %+v", r)
	}
}

func TestDecodeBackfillsOlderRecords(t *testing.T) {
	blob := `{
		"chats": [{"id":"c1","name":"Old","avatar":"a","lastMessagePreview":"Old: hey","timestamp":10}],
		"teams": [{"id":"t1","name":"T"}],
		"messages": {"c1": [
			{"id":"m1","chatId":"c1","sender":"Old","text":"hey","timestamp":10,"type":"received"},
			{"id":"m2","chatId":"c1","sender":"You","text":"yo","timestamp":5,"type":"sent"}
		]}
	}`
	s, rep, err := Decode([]byte(blob), 0)
	if err != nil {
		t.Fatal(err)
	}
	c, ok := s.FindChat("c1")
	if !ok {
		t.Fatal("chat missing")
	}
	if c.Pinned || c.Presence != PresenceAvailable || c.UnreadCount != 0 {
		t.Errorf("chat defaults = %+v", c)
	}
	msgs := s.ListMessages("c1")
	if !msgs[0].Read {
		t.Error("received message should default to read")
	}
	if msgs[1].Read {
		t.Error("sent message should default to unread")
	}
	for _, m := range msgs {
		if m.Reactions == nil || len(m.Reactions) != 0 {
			t.Errorf("%s reactions = %#v, want empty", m.ID, m.Reactions)
		}
	}
	// 3 chat fields + 2 fields on each of 2 messages.
	if rep.Backfilled != 7 {
		t.Errorf("Backfilled = %d, want 7", rep.Backfilled)
	}
}

func TestDecodeRepairsMessageLists(t *testing.T) {
	blob := `{
		"chats": [
			{"id":"c1","name":"A","timestamp":1,"lastMessagePreview":"stale"},
			{"id":"c2","name":"B","timestamp":7,"lastMessagePreview":"Chat created."}
		],
		"messages": {
			"c1": [{"id":"m1","chatId":"c1","sender":"A","text":"**fresh**","timestamp":9,"type":"received"}],
			"ghost": [{"id":"m2","chatId":"ghost","sender":"G","text":"boo","timestamp":3,"type":"received"}]
		}
	}`
	s, rep, err := Decode([]byte(blob), 0)
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(rep.OrphanLists, []string{"ghost"}) {
		t.Errorf("OrphanLists = %v", rep.OrphanLists)
	}
	if !slices.Equal(rep.MissingLists, []string{"c2"}) {
		t.Errorf("MissingLists = %v", rep.MissingLists)
	}
	if _, ok := s.messages["c2"]; !ok {
		t.Error("chat without list did not get one")
	}
	if _, ok := s.messages["ghost"]; ok {
		t.Error("orphan list kept")
	}
	c1, _ := s.FindChat("c1")
	if c1.LastMessagePreview != "A: fresh" || c1.LastActivity != 9 {
		t.Errorf("derived fields not refreshed: %+v", c1)
	}
	c2, _ := s.FindChat("c2")
	if c2.LastMessagePreview != "Chat created." || c2.LastActivity != 7 {
		t.Errorf("empty chat derived fields changed: %+v", c2)
	}
	if len(s.ListConversations(KindTeams)) != 0 {
		t.Error("missing teams collection should decode as empty")
	}
}

func TestDecodeRejectsCorruptBlob(t *testing.T) {
	for _, blob := range []string{"", "{", "[1,2]", `{"chats":"nope"}`, "null", "  null\n"} {
		if _, _, err := Decode([]byte(blob), 0); err == nil {
			t.Errorf("Decode(%q) should fail", blob)
		}
	}
}

func TestDecodeClampsNegativeUnread(t *testing.T) {
	s, _, err := Decode([]byte(`{"chats":[{"id":"c","name":"n","unreadCount":-3}]}`), 0)
	if err != nil {
		t.Fatal(err)
	}
	if c, _ := s.FindChat("c"); c.UnreadCount != 0 {
		t.Errorf("unread = %d, want 0", c.UnreadCount)
	}
}

func TestDecodeKeepsChatWithBlankName(t *testing.T) {
	blob := `{
		"chats": [{"id":"a","name":""}],
		"teams": [{"id":"t","name":""}],
		"messages": {"a": [{"id":"m1","chatId":"a","sender":"Ana","text":"hi","timestamp":4,"type":"received"}]}
	}`
	s, rep, err := Decode([]byte(blob), 0)
	if err != nil {
		t.Fatal(err)
	}
	if rep.SkippedRecords != 0 || len(rep.OrphanLists) != 0 {
		t.Errorf("repairs = %+v, want nothing skipped or orphaned", rep)
	}
	c, ok := s.FindChat("a")
	if !ok || c.Name != "" {
		t.Fatalf("FindChat(a) = %+v, %v", c, ok)
	}
	if msgs := s.ListMessages("a"); len(msgs) != 1 || msgs[0].ID != "m1" {
		t.Errorf("messages = %+v, want m1 kept", msgs)
	}
	if _, ok := s.FindConversation("t"); !ok {
		t.Error("team with blank name dropped")
	}

	out, err := s.Encode()
	if err != nil {
		t.Fatal(err)
	}
	again, _, err := Decode(out, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(again.ListMessages("a")) != 1 {
		t.Error("message lost after re-encode")
	}
}
