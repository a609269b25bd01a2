package apiv1

// Empty is the request or response of calls that carry nothing.
type Empty struct{}

type StatusResponse struct {
	Profile    string `json:"profile"`
	State      string `json:"state"`
	Since      int64  `json:"since"`
	Chats      int    `json:"chats"`
	Teams      int    `json:"teams"`
	Unread     int    `json:"unread"`
	DaemonPID  int    `json:"daemonPid"`
	StartedAt  int64  `json:"startedAt"`
	SocketPath string `json:"socketPath"`
}

type SendMessageRequest struct {
	Text string `json:"text"`
}

type SendMessageResponse struct {
	Message Message `json:"message"`
}

type CreateConversationRequest struct {
	Kind string `json:"kind"`
	Name string `json:"name"`
}

type CreateConversationResponse struct {
	ID string `json:"id"`
}

type SetActiveRequest struct {
	ID string `json:"id"`
}

type SwitchViewRequest struct {
	View string `json:"view"`
}

type ChangeFilterRequest struct {
	Text string `json:"text"`
}

type MarkReadRequest struct {
	ID string `json:"id"`
}

type MarkReadResponse struct {
	Changed int `json:"changed"`
}

type WatchEventsRequest struct {
	// Namespace filters events by kind prefix, e.g. "message.". Empty means all.
	Namespace string `json:"namespace"`
}

// Event is a change notification. Only the fields relevant to Kind are set.
type Event struct {
	ID             string `json:"id"`
	Kind           string `json:"kind"`
	Timestamp      int64  `json:"timestamp"`
	ConversationID string `json:"conversationId,omitempty"`
	MessageID      string `json:"messageId,omitempty"`
	Name           string `json:"name,omitempty"`
	View           string `json:"view,omitempty"`
	ActiveID       string `json:"activeId,omitempty"`
	Filter         string `json:"filter,omitempty"`
	Count          int    `json:"count,omitempty"`
	From           string `json:"from,omitempty"`
	To             string `json:"to,omitempty"`
}

// Snapshot is the renderable view of the engine.
type Snapshot struct {
	Status             string        `json:"status"`
	Now                int64         `json:"now"`
	View               string        `json:"view"`
	Filter             string        `json:"filter"`
	Sections           []Section     `json:"sections"`
	Empty              string        `json:"empty,omitempty"`
	EmptyLabel         string        `json:"emptyLabel,omitempty"`
	Active             *Conversation `json:"active,omitempty"`
	Messages           []Message     `json:"messages"`
	Typing             *Typing       `json:"typing,omitempty"`
	Title              string        `json:"title"`
	ContentPlaceholder string        `json:"contentPlaceholder,omitempty"`
	InputEnabled       bool          `json:"inputEnabled"`
	InputPlaceholder   string        `json:"inputPlaceholder"`
}

// Items flattens the sections in display order.
func (s *Snapshot) Items() []ListItem {
	var out []ListItem
	for _, sec := range s.Sections {
		out = append(out, sec.Items...)
	}
	return out
}

type Section struct {
	Label string     `json:"label,omitempty"`
	Items []ListItem `json:"items"`
}

type ListItem struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	AvatarRef string `json:"avatarRef,omitempty"`
	Preview   string `json:"preview,omitempty"`
	TimeLabel string `json:"timeLabel,omitempty"`
	Badge     string `json:"badge,omitempty"`
	Available bool   `json:"available,omitempty"`
	Pinned    bool   `json:"pinned,omitempty"`
	Active    bool   `json:"active,omitempty"`
}

type Conversation struct {
	ID          string `json:"id"`
	Kind        string `json:"kind"`
	Name        string `json:"name"`
	AvatarRef   string `json:"avatarRef,omitempty"`
	Presence    string `json:"presence,omitempty"`
	Pinned      bool   `json:"pinned,omitempty"`
	UnreadCount int    `json:"unreadCount"`
	Messages    int    `json:"messages"`
}

type Message struct {
	ID             string     `json:"id"`
	ConversationID string     `json:"conversationId"`
	Sender         string     `json:"sender"`
	Body           string     `json:"body"`
	CreatedAt      int64      `json:"createdAt"`
	Direction      string     `json:"direction"`
	Read           bool       `json:"read"`
	Reactions      []Reaction `json:"reactions,omitempty"`
	TimeLabel      string     `json:"timeLabel,omitempty"`
	DateSeparator  bool       `json:"dateSeparator,omitempty"`
	DateLabel      string     `json:"dateLabel,omitempty"`
}

type Reaction struct {
	Kind     string   `json:"kind"`
	Count    int      `json:"count"`
	Reactors []string `json:"reactors"`
}

type Typing struct {
	ConversationID string `json:"conversationId"`
	Name           string `json:"name"`
	Until          int64  `json:"until"`
}
