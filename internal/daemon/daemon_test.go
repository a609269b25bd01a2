package daemon

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"

	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"

	"github.com/matheus3301/chatsim/internal/api/apiv1"
	"github.com/matheus3301/chatsim/internal/lock"
	"github.com/matheus3301/chatsim/internal/profile"
	"github.com/matheus3301/chatsim/internal/status"
)

// shortHome keeps socket paths under the 104-char Unix socket limit on macOS.
func shortHome(t *testing.T) {
	t.Helper()
	dir, err := os.MkdirTemp("/tmp", "chatsim-test-*")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.RemoveAll(dir) })
	t.Setenv(profile.HomeEnv, dir)
}

func startDaemon(t *testing.T, p Params) *fxtest.App {
	t.Helper()
	app := fxtest.New(t, fx.NopLogger, Module(p))
	app.RequireStart()
	return app
}

func dial(t *testing.T, socketPath string) *apiv1.EngineClient {
	t.Helper()
	conn, err := apiv1.Dial(socketPath)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return apiv1.NewEngineClient(conn)
}

func TestDaemonLifecycle(t *testing.T) {
	shortHome(t)
	p := Params{ProfileName: "test", Quiet: true}
	app := startDaemon(t, p)

	client := dial(t, profile.SocketPath("test"))
	resp, err := client.GetStatus(context.Background(), &apiv1.Empty{})
	if err != nil {
		t.Fatalf("GetStatus error = %v", err)
	}
	if resp.Profile != "test" {
		t.Errorf("profile = %q, want test", resp.Profile)
	}
	if resp.State != string(status.Ready) {
		t.Errorf("state = %s, want READY", resp.State)
	}
	if resp.DaemonPID != os.Getpid() {
		t.Errorf("pid = %d, want %d", resp.DaemonPID, os.Getpid())
	}
	if holder := lock.Holder(profile.Dir("test")); holder != os.Getpid() {
		t.Errorf("lock holder = %d, want %d", holder, os.Getpid())
	}

	app.RequireStop()

	if _, err := os.Stat(profile.SocketPath("test")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected socket removed, stat err = %v", err)
	}
	l, err := lock.Acquire(profile.Dir("test"))
	if err != nil {
		t.Fatalf("expected lock released: %v", err)
	}
	_ = l.Release()
}

func TestSecondDaemonRefused(t *testing.T) {
	shortHome(t)
	first := startDaemon(t, Params{ProfileName: "test", Quiet: true})
	defer first.RequireStop()

	second := fx.New(fx.NopLogger, Module(Params{ProfileName: "test", Quiet: true, SocketPath: profile.Dir("test") + "/second.sock"}))
	if err := second.Err(); err == nil || !strings.Contains(err.Error(), "profile lock held") {
		t.Fatalf("expected lock held error, got %v", err)
	}
}

func TestStatePersistsAcrossRestarts(t *testing.T) {
	shortHome(t)
	ctx := context.Background()

	app := startDaemon(t, Params{ProfileName: "test", Quiet: true})
	client := dial(t, profile.SocketPath("test"))
	created, err := client.CreateConversation(ctx, &apiv1.CreateConversationRequest{Kind: "chat", Name: "Priya"})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := client.SendMessage(ctx, &apiv1.SendMessageRequest{Text: "see you tomorrow"}); err != nil {
		t.Fatal(err)
	}
	app.RequireStop()

	app = startDaemon(t, Params{ProfileName: "test", Quiet: true})
	defer app.RequireStop()
	client = dial(t, profile.SocketPath("test"))
	snap, err := client.GetSnapshot(ctx, &apiv1.Empty{})
	if err != nil {
		t.Fatal(err)
	}
	if snap.Active == nil || snap.Active.ID != created.ID {
		t.Fatalf("expected %s still active, got %+v", created.ID, snap.Active)
	}
	if len(snap.Messages) != 1 || snap.Messages[0].Body != "see you tomorrow" {
		t.Fatalf("expected the sent message back, got %+v", snap.Messages)
	}
}
