package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/dustin/go-humanize"

	"github.com/matheus3301/chatsim/internal/api/apiv1"
	"github.com/matheus3301/chatsim/internal/config"
	"github.com/matheus3301/chatsim/internal/lock"
	"github.com/matheus3301/chatsim/internal/markup"
	"github.com/matheus3301/chatsim/internal/profile"
	"github.com/matheus3301/chatsim/internal/store"
	"github.com/matheus3301/chatsim/internal/tui/client"
	"github.com/matheus3301/chatsim/internal/tui/views"
)

func main() {
	profileFlag := flag.String("profile", "", "profile name (overrides config default)")
	jsonFlag := flag.Bool("json", false, "output in JSON format")
	flag.Usage = printUsage
	flag.Parse()

	profileName := profile.Resolve(*profileFlag)
	if err := profile.ValidateName(profileName); err != nil {
		fail(err)
	}

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}

	// Commands that read the profile directory directly.
	switch args[0] {
	case "profiles":
		cmdProfiles(*jsonFlag)
		return
	case "blobs":
		cmdBlobs(profileName, *jsonFlag)
		return
	case "config":
		cmdConfig(*jsonFlag)
		return
	case "use":
		if len(args) != 2 {
			fmt.Fprintln(os.Stderr, "usage: chatsimctl use <profile>")
			os.Exit(1)
		}
		cmdUse(args[1])
		return
	}

	socketPath := profile.SocketPath(profileName)
	c, err := client.New(socketPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: cannot connect to daemon for profile %q: %v\n", profileName, err)
		os.Exit(1)
	}
	defer func() { _ = c.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	ctl := &ctl{engine: c.Engine, json: *jsonFlag}
	rest := strings.TrimSpace(strings.Join(args[1:], " "))
	switch args[0] {
	case "status":
		ctl.status(ctx)
	case "list":
		ctl.list(ctx)
	case "show":
		ctl.show(ctx)
	case "send":
		ctl.send(ctx, rest)
	case "receive":
		ctl.receive(ctx)
	case "open":
		ctl.open(ctx, rest)
	case "view":
		ctl.view(ctx, rest)
	case "filter":
		ctl.filter(ctx, rest)
	case "new":
		if len(args) < 3 {
			fmt.Fprintln(os.Stderr, "usage: chatsimctl new <chat|teams> <name>")
			os.Exit(1)
		}
		ctl.create(ctx, args[1], strings.Join(args[2:], " "))
	case "read":
		ctl.read(ctx)
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", args[0])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "usage: chatsimctl [--profile <name>] [--json] <command>")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "commands:")
	fmt.Fprintln(os.Stderr, "  status                 Show daemon status")
	fmt.Fprintln(os.Stderr, "  list                   List conversations of the current view")
	fmt.Fprintln(os.Stderr, "  show                   Show the active conversation")
	fmt.Fprintln(os.Stderr, "  send <text>            Send a message to the active chat")
	fmt.Fprintln(os.Stderr, "  receive                Simulate a reply in the active chat")
	fmt.Fprintln(os.Stderr, "  open <id|name>         Make a conversation active")
	fmt.Fprintln(os.Stderr, "  view <chat|teams>      Switch view")
	fmt.Fprintln(os.Stderr, "  filter [text]          Set or clear the list filter")
	fmt.Fprintln(os.Stderr, "  new <chat|teams> <name> Create a conversation")
	fmt.Fprintln(os.Stderr, "  read                   Mark the active chat's sent messages read")
	fmt.Fprintln(os.Stderr, "  profiles               List known profiles")
	fmt.Fprintln(os.Stderr, "  blobs                  Show stored blobs of the profile")
	fmt.Fprintln(os.Stderr, "  config                 Print the effective configuration")
	fmt.Fprintln(os.Stderr, "  use <profile>          Make a profile the default")
}

type ctl struct {
	engine *apiv1.EngineClient
	json   bool
}

func (c *ctl) snapshot(ctx context.Context) *apiv1.Snapshot {
	snap, err := c.engine.GetSnapshot(ctx, &apiv1.Empty{})
	if err != nil {
		fail(err)
	}
	return snap
}

func (c *ctl) status(ctx context.Context) {
	resp, err := c.engine.GetStatus(ctx, &apiv1.Empty{})
	if err != nil {
		fail(err)
	}
	if c.json {
		outputJSON(resp)
		return
	}
	fmt.Printf("Profile: %s\n", resp.Profile)
	fmt.Printf("State:   %s (since %s)\n", resp.State, humanize.Time(time.UnixMilli(resp.Since)))
	fmt.Printf("Chats:   %d (%d unread)\n", resp.Chats, resp.Unread)
	fmt.Printf("Teams:   %d\n", resp.Teams)
	fmt.Printf("Daemon:  pid %d, started %s\n", resp.DaemonPID, humanize.Time(time.UnixMilli(resp.StartedAt)))
	fmt.Printf("Socket:  %s\n", resp.SocketPath)
}

func (c *ctl) list(ctx context.Context) {
	snap := c.snapshot(ctx)
	if c.json {
		outputJSON(snap.Sections)
		return
	}
	if len(snap.Items()) == 0 {
		fmt.Println(snap.EmptyLabel)
		return
	}
	for _, sec := range snap.Sections {
		if sec.Label != "" {
			fmt.Printf("%s\n", sec.Label)
		}
		for _, it := range sec.Items {
			marker := " "
			if it.Active {
				marker = "*"
			}
			fmt.Printf("%s %-36s  %-24s %-10s %4s  %s\n", marker, it.ID, it.Name, it.TimeLabel, it.Badge, it.Preview)
		}
	}
}

func (c *ctl) show(ctx context.Context) {
	snap := c.snapshot(ctx)
	if c.json {
		outputJSON(snap)
		return
	}
	fmt.Printf("== %s ==\n", snap.Title)
	if snap.ContentPlaceholder != "" {
		fmt.Println(markup.Strip(snap.ContentPlaceholder))
	}
	for _, m := range snap.Messages {
		if m.DateSeparator {
			fmt.Printf("\n---- %s ----\n", m.DateLabel)
		}
		line := fmt.Sprintf("[%s] %s: %s", m.TimeLabel, m.Sender, markup.Strip(m.Body))
		if mark := views.ReceiptMark(m); mark != "" {
			line += " " + mark
		}
		fmt.Println(line)
		if r := views.ReactionLine(m.Reactions); r != "" {
			fmt.Printf("    %s\n", r)
		}
	}
	if snap.Active != nil {
		if line := views.TypingLine(snap.Typing, snap.Active.ID); line != "" {
			fmt.Println(line)
		}
	}
}

func (c *ctl) send(ctx context.Context, text string) {
	resp, err := c.engine.SendMessage(ctx, &apiv1.SendMessageRequest{Text: text})
	if err != nil {
		fail(err)
	}
	if c.json {
		outputJSON(resp)
		return
	}
	fmt.Printf("sent %s\n", resp.Message.ID)
}

func (c *ctl) receive(ctx context.Context) {
	if _, err := c.engine.SimulateReceive(ctx, &apiv1.Empty{}); err != nil {
		fail(err)
	}
	fmt.Println("reply scheduled")
}

func (c *ctl) open(ctx context.Context, query string) {
	id := query
	for _, it := range c.snapshot(ctx).Items() {
		if it.ID == query || strings.EqualFold(it.Name, query) {
			id = it.ID
			break
		}
	}
	if _, err := c.engine.SetActive(ctx, &apiv1.SetActiveRequest{ID: id}); err != nil {
		fail(err)
	}
	fmt.Printf("active: %s\n", id)
}

func (c *ctl) view(ctx context.Context, view string) {
	if _, err := c.engine.SwitchView(ctx, &apiv1.SwitchViewRequest{View: view}); err != nil {
		fail(err)
	}
	fmt.Printf("view: %s\n", view)
}

func (c *ctl) filter(ctx context.Context, text string) {
	var err error
	if text == "" {
		_, err = c.engine.ClearFilter(ctx, &apiv1.Empty{})
	} else {
		_, err = c.engine.ChangeFilter(ctx, &apiv1.ChangeFilterRequest{Text: text})
	}
	if err != nil {
		fail(err)
	}
	c.list(ctx)
}

func (c *ctl) create(ctx context.Context, kind, name string) {
	if kind == "team" {
		kind = "teams"
	}
	resp, err := c.engine.CreateConversation(ctx, &apiv1.CreateConversationRequest{Kind: kind, Name: name})
	if err != nil {
		fail(err)
	}
	if c.json {
		outputJSON(resp)
		return
	}
	fmt.Printf("created %s\n", resp.ID)
}

func (c *ctl) read(ctx context.Context) {
	snap := c.snapshot(ctx)
	if snap.Active == nil {
		fail(fmt.Errorf("no active conversation"))
	}
	if snap.Active.Kind != "chat" {
		fmt.Println("0 messages marked read")
		return
	}
	resp, err := c.engine.MarkRead(ctx, &apiv1.MarkReadRequest{ID: snap.Active.ID})
	if err != nil {
		fail(err)
	}
	fmt.Printf("%d messages marked read\n", resp.Changed)
}

type profileInfo struct {
	Name      string `json:"name"`
	Path      string `json:"path"`
	DaemonPID int    `json:"daemonPid,omitempty"`
}

func cmdProfiles(jsonOut bool) {
	names, err := profile.List()
	if err != nil {
		fail(err)
	}
	infos := make([]profileInfo, 0, len(names))
	for _, n := range names {
		infos = append(infos, profileInfo{Name: n, Path: profile.Dir(n), DaemonPID: lock.Holder(profile.Dir(n))})
	}
	if jsonOut {
		outputJSON(infos)
		return
	}
	if len(infos) == 0 {
		fmt.Println("No profiles found.")
		return
	}
	for _, p := range infos {
		running := "stopped"
		if p.DaemonPID != 0 {
			running = fmt.Sprintf("running, pid %d", p.DaemonPID)
		}
		fmt.Printf("%-20s %s (%s)\n", p.Name, p.Path, running)
	}
}

func cmdBlobs(profileName string, jsonOut bool) {
	db, err := store.Open(profile.DBPath(profileName))
	if err != nil {
		fail(err)
	}
	defer func() { _ = db.Close() }()

	blobs, err := db.Blobs()
	if err != nil {
		fail(err)
	}
	if jsonOut {
		outputJSON(blobs)
		return
	}
	for _, b := range blobs {
		fmt.Printf("%-12s %10s  updated %s\n", b.Key, humanize.Bytes(uint64(b.Size)), humanize.Time(time.UnixMilli(b.UpdatedAt)))
	}
}

func cmdConfig(jsonOut bool) {
	cfg, err := config.LoadOrDefault(profile.ConfigPath())
	if err != nil {
		fail(err)
	}
	if jsonOut {
		outputJSON(cfg)
		return
	}
	if err := toml.NewEncoder(os.Stdout).Encode(cfg); err != nil {
		fail(err)
	}
}

func cmdUse(name string) {
	if err := profile.ValidateName(name); err != nil {
		fail(err)
	}
	path := profile.ConfigPath()
	cfg, err := config.LoadOrDefault(path)
	if err != nil {
		fail(err)
	}
	cfg.DefaultProfile = name
	if err := config.Save(path, cfg); err != nil {
		fail(err)
	}
	fmt.Printf("default profile: %s\n", name)
}

func fail(err error) {
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}

func outputJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintf(os.Stderr, "json encode error: %v\n", err)
	}
}
