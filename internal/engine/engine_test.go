package engine

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/matheus3301/chatsim/internal/bus"
	"github.com/matheus3301/chatsim/internal/clock"
	"github.com/matheus3301/chatsim/internal/domain"
	"github.com/matheus3301/chatsim/internal/listing"
	"github.com/matheus3301/chatsim/internal/status"
)

var start = time.Date(2026, 10, 14, 15, 30, 0, 0, time.UTC)

var (
	rohitID    = domain.StableID("chat/Rohit Singh")
	brandingID = domain.StableID("chat/Group of Branding")
	phoenixID  = domain.StableID("chat/Project Phoenix")
	devTeamID  = domain.StableID("team/Development Team")
)

type memGateway struct {
	data   map[string]string
	writes map[string]int
	fail   error
}

func newMemGateway() *memGateway {
	return &memGateway{data: map[string]string{}, writes: map[string]int{}}
}

func (g *memGateway) Get(key string) (string, bool, error) {
	v, ok := g.data[key]
	return v, ok, nil
}

func (g *memGateway) Set(key, value string) error {
	if g.fail != nil {
		return g.fail
	}
	g.data[key] = value
	g.writes[key]++
	return nil
}

func (g *memGateway) total() int {
	return g.writes[KeyDomainData] + g.writes[KeyViewState]
}

func testEngine(t *testing.T, gw *memGateway) (*Engine, *clock.Manual, *bus.Bus) {
	t.Helper()
	clk := clock.NewManual(start)
	b := bus.New()
	cfg := DefaultConfig()
	cfg.Clock = clk
	cfg.Location = time.UTC
	e := New(gw, b, nil, nil, cfg)
	t.Cleanup(func() { _ = e.Close() })
	return e, clk, b
}

// rohitFixture stores one chat with a received message at T0 and an unread
// sent message, plus a second chat to switch to.
func rohitFixture(t *testing.T, gw *memGateway) {
	t.Helper()
	s := domain.NewStore(0)
	for _, c := range []domain.Chat{
		{Header: domain.Header{ID: "rohit", Name: "Rohit Singh"}, Presence: domain.PresenceAvailable},
		{Header: domain.Header{ID: "other", Name: "Other"}, Presence: domain.PresenceAvailable},
	} {
		if err := s.AddConversation(c); err != nil {
			t.Fatal(err)
		}
	}
	t0 := start.Add(-time.Hour).UnixMilli()
	if err := s.AddMessage(domain.Message{ID: "r0", ConversationID: "rohit", Sender: "Rohit Singh", Body: "hi", CreatedAt: t0, Direction: domain.Received, Read: true}); err != nil {
		t.Fatal(err)
	}
	if err := s.AddMessage(domain.Message{ID: "s0", ConversationID: "rohit", Sender: "You", Body: "hello?", CreatedAt: t0 + 1000, Direction: domain.Sent}); err != nil {
		t.Fatal(err)
	}
	data, err := s.Encode()
	if err != nil {
		t.Fatal(err)
	}
	gw.data[KeyDomainData] = string(data)
	gw.data[KeyViewState] = `{"currentView":"chat","activeConversationId":"rohit","listFilter":""}`
}

func message(t *testing.T, e *Engine, chatID, msgID string) domain.Message {
	t.Helper()
	for _, m := range e.store.ListMessages(chatID) {
		if m.ID == msgID {
			return m
		}
	}
	t.Fatalf("message %s not found in %s", msgID, chatID)
	return domain.Message{}
}

func chat(t *testing.T, e *Engine, id string) domain.Chat {
	t.Helper()
	c, ok := e.store.FindChat(id)
	if !ok {
		t.Fatalf("chat %s not found", id)
	}
	return c
}

func TestLoadSeedsEmptyGateway(t *testing.T) {
	gw := newMemGateway()
	e, _, _ := testEngine(t, gw)

	if e.Status() != status.Ready {
		t.Errorf("status = %s, want READY", e.Status())
	}
	if gw.writes[KeyDomainData] != 1 || gw.writes[KeyViewState] != 1 {
		t.Errorf("writes = %v, want one per blob", gw.writes)
	}
	snap := e.Snapshot()
	if snap.View != domain.KindChat || snap.Active == nil || snap.Active.ID != phoenixID {
		t.Errorf("initial selection = %+v, want Project Phoenix", snap.Active)
	}
	if got := len(snap.List.Sections); got != 2 {
		t.Errorf("sections = %d, want 2", got)
	}
}

func TestLoadCorruptBlobs(t *testing.T) {
	gw := newMemGateway()
	gw.data[KeyDomainData] = "{not json"
	gw.data[KeyViewState] = "also not json"
	e, _, _ := testEngine(t, gw)

	if n := len(e.store.ListConversations(domain.KindChat)); n != 3 {
		t.Errorf("chats = %d, want seeded 3", n)
	}
	if st := e.view.State(); st.View != domain.KindChat || st.ActiveID != phoenixID {
		t.Errorf("view state = %+v", st)
	}
	if !strings.HasPrefix(gw.data[KeyDomainData], "{\"chats\"") {
		t.Errorf("seed not persisted: %q", gw.data[KeyDomainData])
	}
}

func TestLoadNullDomainBlobSeeds(t *testing.T) {
	gw := newMemGateway()
	gw.data[KeyDomainData] = "null"
	e, _, _ := testEngine(t, gw)

	if n := len(e.store.ListConversations(domain.KindChat)); n != 3 {
		t.Errorf("chats = %d, want seeded 3", n)
	}
	if n := len(e.store.ListConversations(domain.KindTeams)); n == 0 {
		t.Error("teams not seeded")
	}
	if !strings.HasPrefix(gw.data[KeyDomainData], "{\"chats\"") {
		t.Errorf("seed not persisted: %q", gw.data[KeyDomainData])
	}
}

func TestReloadDoesNotRewrite(t *testing.T) {
	gw := newMemGateway()
	e, _, _ := testEngine(t, gw)
	if _, err := e.SendMessage("hello"); err != nil {
		t.Fatal(err)
	}
	_ = e.Close()

	before := gw.total()
	e2, _, _ := testEngine(t, gw)
	if gw.total() != before {
		t.Errorf("reload wrote %d blobs", gw.total()-before)
	}
	snap := e2.Snapshot()
	if n := len(snap.Messages); n != 2 || snap.Messages[1].Body != "hello" {
		t.Errorf("messages after reload = %+v", snap.Messages)
	}
}

func TestSendMessageNoops(t *testing.T) {
	gw := newMemGateway()
	e, _, _ := testEngine(t, gw)
	before := gw.total()
	msgs := len(e.store.ListMessages(phoenixID))

	for _, text := range []string{"", "   ", "\n\t"} {
		if _, err := e.SendMessage(text); !errors.Is(err, ErrEmptyInput) {
			t.Errorf("SendMessage(%q) err = %v, want ErrEmptyInput", text, err)
		}
	}
	if gw.total() != before {
		t.Error("empty send triggered a persistence write")
	}
	if err := e.SwitchView(domain.KindTeams); err != nil {
		t.Fatal(err)
	}
	before = gw.total()
	if _, err := e.SendMessage("hi"); !errors.Is(err, ErrUnavailable) {
		t.Errorf("send in teams err = %v, want ErrUnavailable", err)
	}
	if err := e.SimulateReceive(); !errors.Is(err, ErrUnavailable) {
		t.Errorf("receive in teams err = %v, want ErrUnavailable", err)
	}
	if gw.total() != before {
		t.Error("no-op triggered a persistence write")
	}
	if got := len(e.store.ListMessages(phoenixID)); got != msgs {
		t.Errorf("messages = %d, want %d", got, msgs)
	}
}

func TestSendMessageWithNoActiveChat(t *testing.T) {
	gw := newMemGateway()
	gw.data[KeyDomainData] = `{"chats":[],"teams":[],"messages":{}}`
	e, _, _ := testEngine(t, gw)
	before := gw.total()

	if _, err := e.SendMessage("hello"); !errors.Is(err, ErrUnavailable) {
		t.Errorf("err = %v, want ErrUnavailable", err)
	}
	if gw.total() != before {
		t.Error("no-op triggered a persistence write")
	}
	snap := e.Snapshot()
	if snap.InputEnabled || snap.ContentPlaceholder != PlaceholderNoSelection || snap.Title != "Select a chat" {
		t.Errorf("snapshot = %+v", snap)
	}
	if snap.List.Empty != listing.EmptyNoItems {
		t.Errorf("list empty = %v, want no items", snap.List.Empty)
	}
}

func TestSendMessage(t *testing.T) {
	gw := newMemGateway()
	e, clk, _ := testEngine(t, gw)
	clk.Advance(time.Minute)
	views := gw.writes[KeyViewState]

	m, err := e.SendMessage("  **Hey** there  ")
	if err != nil {
		t.Fatal(err)
	}
	if m.Body != "**Hey** there" || m.Sender != "You" || m.Direction != domain.Sent || m.Read {
		t.Errorf("message = %+v", m)
	}
	c := chat(t, e, phoenixID)
	if c.LastActivity != clk.Now().UnixMilli() || c.LastMessagePreview != "You: Hey there" {
		t.Errorf("chat = %+v", c)
	}
	if gw.writes[KeyViewState] != views {
		t.Error("send rewrote the unchanged view state")
	}
	snap := e.Snapshot()
	recent := snap.List.Sections[1]
	if recent.Items[0].ID != phoenixID || recent.Items[0].TimeLabel != "3:31 PM" {
		t.Errorf("recent = %+v", recent.Items)
	}
}

func TestSetActive(t *testing.T) {
	gw := newMemGateway()
	e, _, b := testEngine(t, gw)
	events, unsub := b.Subscribe("", 32)
	defer unsub()

	if err := e.SetActive(brandingID); err != nil {
		t.Fatal(err)
	}
	c := chat(t, e, brandingID)
	if c.UnreadCount != 0 {
		t.Errorf("unread = %d, want 0", c.UnreadCount)
	}
	for _, m := range e.store.ListMessages(brandingID) {
		if m.Direction == domain.Sent && !m.Read {
			t.Errorf("sent message %s not swept", m.ID)
		}
	}

	var kinds []string
	for len(events) > 0 {
		evt := <-events
		kinds = append(kinds, evt.Kind)
		if evt.Kind == bus.ReceiptsUpdated {
			if p := evt.Payload.(bus.MessagePayload); p.Count != 1 || p.ConversationID != brandingID {
				t.Errorf("receipts payload = %+v", p)
			}
		}
	}
	want := []string{bus.UnreadChanged, bus.ReceiptsUpdated, bus.ConversationActivated}
	if strings.Join(kinds, ",") != strings.Join(want, ",") {
		t.Errorf("events = %v, want %v", kinds, want)
	}

	first := e.Snapshot()
	writes := gw.total()
	if err := e.SetActive(brandingID); err != nil {
		t.Fatal(err)
	}
	if gw.total() != writes {
		t.Error("repeated SetActive wrote to the gateway")
	}
	second := e.Snapshot()
	if first.Active.ID != second.Active.ID || first.Active.UnreadCount != second.Active.UnreadCount || len(first.Messages) != len(second.Messages) {
		t.Error("repeated SetActive changed state")
	}
}

func TestSetActiveUnknown(t *testing.T) {
	gw := newMemGateway()
	e, _, _ := testEngine(t, gw)
	before := gw.total()
	for _, id := range []string{"missing", devTeamID, ""} {
		if err := e.SetActive(id); !errors.Is(err, ErrNotFound) {
			t.Errorf("SetActive(%q) err = %v, want ErrNotFound", id, err)
		}
	}
	if e.view.ActiveID() != phoenixID || gw.total() != before {
		t.Error("failed SetActive changed state")
	}
}

func TestSimulateReceiveIntoInactiveChat(t *testing.T) {
	gw := newMemGateway()
	rohitFixture(t, gw)
	e, clk, _ := testEngine(t, gw)

	if err := e.SimulateReceive(); err != nil {
		t.Fatal(err)
	}
	if snap := e.Snapshot(); snap.Typing == nil || snap.Typing.Name != "Rohit Singh" {
		t.Fatalf("typing = %+v", snap.Typing)
	}
	if err := e.SetActive("other"); err != nil {
		t.Fatal(err)
	}

	clk.Advance(800 * time.Millisecond)

	c := chat(t, e, "rohit")
	if c.UnreadCount != 1 {
		t.Errorf("unread = %d, want 1", c.UnreadCount)
	}
	if !strings.HasPrefix(c.LastMessagePreview, "Rohit Singh: Simulated reply at 3:30 PM.") {
		t.Errorf("preview = %q", c.LastMessagePreview)
	}
	msgs := e.store.ListMessages("rohit")
	reply := msgs[len(msgs)-1]
	if reply.Direction != domain.Received || reply.Read || reply.Sender != "Rohit Singh" {
		t.Errorf("reply = %+v", reply)
	}
	if reply.Body != "Simulated reply at 3:30 PM. *Sometimes* using markdown!" {
		t.Errorf("body = %q", reply.Body)
	}
	if message(t, e, "rohit", "s0").Read {
		t.Error("sent message swept while chat inactive")
	}

	if err := e.SetActive("rohit"); err != nil {
		t.Fatal(err)
	}
	if c := chat(t, e, "rohit"); c.UnreadCount != 0 {
		t.Errorf("unread after activation = %d", c.UnreadCount)
	}
	if !message(t, e, "rohit", "s0").Read {
		t.Error("sent message not swept on activation")
	}
	if message(t, e, "rohit", reply.ID).Read {
		t.Error("sweep must not flip received messages")
	}
}

func TestSimulateReceiveIntoActiveChat(t *testing.T) {
	gw := newMemGateway()
	rohitFixture(t, gw)
	e, clk, _ := testEngine(t, gw)

	if err := e.SimulateReceive(); err != nil {
		t.Fatal(err)
	}
	clk.Advance(799 * time.Millisecond)
	if n := len(e.store.ListMessages("rohit")); n != 2 {
		t.Fatalf("arrived early: %d messages", n)
	}
	clk.Advance(time.Millisecond)

	msgs := e.store.ListMessages("rohit")
	if len(msgs) != 3 || !msgs[2].Read {
		t.Fatalf("reply = %+v", msgs)
	}
	if c := chat(t, e, "rohit"); c.UnreadCount != 0 {
		t.Errorf("unread = %d, want 0", c.UnreadCount)
	}
	if !message(t, e, "rohit", "s0").Read {
		t.Error("arrival into the active chat should sweep sent messages")
	}
}

func TestOverlappingArrivals(t *testing.T) {
	gw := newMemGateway()
	e, clk, _ := testEngine(t, gw)
	before := len(e.store.ListMessages(phoenixID))

	for range 3 {
		if err := e.SimulateReceive(); err != nil {
			t.Fatal(err)
		}
	}
	clk.Advance(time.Second)
	if got := len(e.store.ListMessages(phoenixID)) - before; got != 3 {
		t.Errorf("arrivals = %d, want 3", got)
	}
}

func TestTypingLastWriterWins(t *testing.T) {
	gw := newMemGateway()
	e, clk, _ := testEngine(t, gw)

	_ = e.SimulateReceive()
	clk.Advance(time.Second)
	_ = e.SimulateReceive()
	clk.Advance(600 * time.Millisecond)
	if snap := e.Snapshot(); snap.Typing == nil {
		t.Fatal("typing cleared by the superseded timer")
	}
	clk.Advance(900 * time.Millisecond)
	if snap := e.Snapshot(); snap.Typing != nil {
		t.Errorf("typing = %+v, want cleared", snap.Typing)
	}
}

func TestStaleTypingCallbackIsNoop(t *testing.T) {
	gw := newMemGateway()
	e, _, _ := testEngine(t, gw)

	_ = e.SimulateReceive()
	stale := e.typing.gen
	_ = e.SimulateReceive()
	e.stopTyping(stale)
	if snap := e.Snapshot(); snap.Typing == nil {
		t.Error("stale callback cleared the current typing indicator")
	}
	e.stopTyping(e.typing.gen)
	if snap := e.Snapshot(); snap.Typing != nil {
		t.Error("current callback did not clear typing")
	}
}

func TestCloseDropsPendingArrivals(t *testing.T) {
	gw := newMemGateway()
	e, clk, _ := testEngine(t, gw)
	before := len(e.store.ListMessages(phoenixID))

	_ = e.SimulateReceive()
	if err := e.Close(); err != nil {
		t.Fatal(err)
	}
	clk.Advance(2 * time.Second)

	if got := len(e.store.ListMessages(phoenixID)); got != before {
		t.Errorf("messages = %d, want %d", got, before)
	}
	if clk.Pending() != 0 {
		t.Errorf("pending timers = %d", clk.Pending())
	}
	if e.Status() != status.Stopped {
		t.Errorf("status = %s, want STOPPED", e.Status())
	}
	if _, err := e.SendMessage("x"); !errors.Is(err, ErrClosed) {
		t.Errorf("send after close err = %v", err)
	}
}

func TestCreateConversation(t *testing.T) {
	gw := newMemGateway()
	e, _, _ := testEngine(t, gw)

	id, err := e.CreateConversation(domain.KindChat, "  Test ")
	if err != nil {
		t.Fatal(err)
	}
	snap := e.Snapshot()
	if snap.Active == nil || snap.Active.ID != id || snap.Active.Name != "Test" {
		t.Fatalf("active = %+v", snap.Active)
	}
	if len(snap.Messages) != 0 || snap.ContentPlaceholder != PlaceholderNoMessages {
		t.Errorf("content = %d messages, %q", len(snap.Messages), snap.ContentPlaceholder)
	}
	recent := snap.List.Sections[len(snap.List.Sections)-1]
	if recent.Label != listing.SectionRecent || recent.Items[0].ID != id || recent.Items[0].Preview != "Chat created." {
		t.Errorf("recent = %+v", recent)
	}
	c := chat(t, e, id)
	if c.Pinned || c.UnreadCount != 0 || c.Presence != domain.PresenceOffline || c.AvatarRef != "placeholder:T" {
		t.Errorf("chat = %+v", c)
	}

	for _, name := range []string{"", "   "} {
		if _, err := e.CreateConversation(domain.KindChat, name); !errors.Is(err, ErrEmptyInput) {
			t.Errorf("CreateConversation(%q) err = %v", name, err)
		}
	}
	if _, err := e.CreateConversation("channel", "x"); !errors.Is(err, ErrUnknownView) {
		t.Errorf("bad kind err = %v", err)
	}
}

func TestCreateTeamSwitchesView(t *testing.T) {
	gw := newMemGateway()
	e, _, _ := testEngine(t, gw)
	e.ChangeFilter("ro")

	id, err := e.CreateConversation(domain.KindTeams, "Alpha Squad")
	if err != nil {
		t.Fatal(err)
	}
	snap := e.Snapshot()
	if snap.View != domain.KindTeams || snap.Filter != "" || snap.Active.ID != id {
		t.Errorf("snapshot = view %s filter %q active %+v", snap.View, snap.Filter, snap.Active)
	}
	if names := snap.List.Items(); names[0].Name != "Alpha Squad" {
		t.Errorf("teams not alphabetical: %+v", names)
	}
	if _, ok := e.store.FindChat(id); ok {
		t.Error("team was stored as a chat")
	}
}

func TestSwitchView(t *testing.T) {
	gw := newMemGateway()
	e, _, _ := testEngine(t, gw)
	e.ChangeFilter("x")

	writes := gw.total()
	if err := e.SwitchView(domain.KindChat); err != nil || gw.total() != writes {
		t.Error("switching to the current view should be a silent no-op")
	}
	if err := e.SwitchView(domain.KindTeams); err != nil {
		t.Fatal(err)
	}
	snap := e.Snapshot()
	if snap.Active.ID != devTeamID || snap.Filter != "" {
		t.Errorf("after switch: active %s filter %q", snap.Active.ID, snap.Filter)
	}
	if snap.InputEnabled || snap.InputPlaceholder != "Cannot send messages in teams" {
		t.Errorf("input = %v %q", snap.InputEnabled, snap.InputPlaceholder)
	}
	if !strings.Contains(snap.ContentPlaceholder, "**Development Team**") {
		t.Errorf("placeholder = %q", snap.ContentPlaceholder)
	}
	if err := e.SwitchView("calls"); !errors.Is(err, ErrUnknownView) {
		t.Errorf("err = %v", err)
	}
}

func TestFilter(t *testing.T) {
	gw := newMemGateway()
	e, _, _ := testEngine(t, gw)

	e.ChangeFilter("xyz")
	snap := e.Snapshot()
	if snap.List.Empty != listing.EmptyNoMatches || snap.List.EmptyLabel != `No chats found matching "xyz".` {
		t.Errorf("list = %+v", snap.List)
	}
	writes := gw.total()
	e.ChangeFilter("xyz")
	if gw.total() != writes {
		t.Error("unchanged filter wrote to the gateway")
	}

	e.ChangeFilter("PHOE")
	if items := e.Snapshot().List.Items(); len(items) != 1 || items[0].ID != phoenixID {
		t.Errorf("items = %+v", items)
	}

	e.ClearFilter()
	snap = e.Snapshot()
	if snap.List.Len() != 3 || len(snap.List.Sections) != 2 || snap.List.Sections[0].Label != listing.SectionPinned {
		t.Errorf("cleared list = %+v", snap.List.Sections)
	}
}

func TestMarkConversationMessagesConsidered(t *testing.T) {
	gw := newMemGateway()
	e, _, _ := testEngine(t, gw)

	n, err := e.MarkConversationMessagesConsidered(brandingID)
	if err != nil || n != 1 {
		t.Fatalf("n = %d, err = %v", n, err)
	}
	writes := gw.total()
	if n, _ := e.MarkConversationMessagesConsidered(brandingID); n != 0 || gw.total() != writes {
		t.Error("second sweep should change nothing and write nothing")
	}
	if c := chat(t, e, brandingID); c.UnreadCount != 1 {
		t.Errorf("sweep touched unread: %d", c.UnreadCount)
	}
	if _, err := e.MarkConversationMessagesConsidered(devTeamID); !errors.Is(err, ErrNotFound) {
		t.Errorf("team err = %v", err)
	}
}

func TestPersistFailureDegradesAndRecovers(t *testing.T) {
	gw := newMemGateway()
	e, _, _ := testEngine(t, gw)

	gw.fail = errors.New("disk full")
	if _, err := e.SendMessage("kept in memory"); err != nil {
		t.Fatalf("write failure leaked to caller: %v", err)
	}
	if e.Status() != status.Degraded {
		t.Errorf("status = %s, want DEGRADED", e.Status())
	}

	gw.fail = nil
	domainWrites := gw.writes[KeyDomainData]
	e.ChangeFilter("p")
	if gw.writes[KeyDomainData] != domainWrites+1 {
		t.Error("failed domain blob was not retried")
	}
	if !strings.Contains(gw.data[KeyDomainData], "kept in memory") {
		t.Error("retried blob is missing the message")
	}
	if e.Status() != status.Ready {
		t.Errorf("status = %s, want READY", e.Status())
	}
}

func TestSnapshotDateSeparators(t *testing.T) {
	gw := newMemGateway()
	e, _, _ := testEngine(t, gw)
	if err := e.SetActive(rohitID); err != nil {
		t.Fatal(err)
	}

	snap := e.Snapshot()
	if len(snap.Messages) != 3 {
		t.Fatalf("messages = %d", len(snap.Messages))
	}
	wantSep := []bool{true, true, false}
	for i, m := range snap.Messages {
		if m.DateSeparator != wantSep[i] {
			t.Errorf("message %d separator = %v", i, m.DateSeparator)
		}
	}
	if snap.Messages[0].DateLabel != "Monday, October 12, 2026" {
		t.Errorf("date label = %q", snap.Messages[0].DateLabel)
	}
	if snap.Messages[2].TimeLabel != "3:25 PM" || len(snap.Messages[2].Reactions) != 1 {
		t.Errorf("last message = %+v", snap.Messages[2])
	}
	if !snap.InputEnabled || snap.InputPlaceholder != InputPlaceholder || snap.Title != "Rohit Singh" {
		t.Errorf("header = %+v", snap)
	}
}
