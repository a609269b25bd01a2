// Package tui is the terminal front end. It renders daemon snapshots with
// tview and turns key presses into engine calls.
package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
	"google.golang.org/grpc/codes"
	grpcstatus "google.golang.org/grpc/status"

	"github.com/matheus3301/chatsim/internal/api/apiv1"
	"github.com/matheus3301/chatsim/internal/clock"
	"github.com/matheus3301/chatsim/internal/tui/keys"
	"github.com/matheus3301/chatsim/internal/tui/model"
	"github.com/matheus3301/chatsim/internal/tui/ui"
	"github.com/matheus3301/chatsim/internal/tui/views"
)

const (
	callTimeout  = 5 * time.Second
	mainPageName = "Main"
)

// mainPage is the root page: view rail, conversation list and thread.
type mainPage struct {
	*tview.Flex
	list *views.ConversationList
}

func (m *mainPage) Name() string           { return mainPageName }
func (m *mainPage) Focus() tview.Primitive { return m.list }

// App is the main TUI application shell.
type App struct {
	app      *tview.Application
	theme    *ui.Theme
	vm       *model.ViewModel
	registry *keys.Registry
	flash    *ui.FlashModel
	profile  string

	pages     *ui.Pages
	main      *mainPage
	rail      *views.ViewRail
	list      *views.ConversationList
	thread    *views.MessageThread
	details   *views.ConversationInfo
	help      *views.HelpView
	info      *ui.ProfileInfo
	menu      *ui.Menu
	crumbs    *ui.Crumbs
	prompt    *ui.Prompt
	body      *tview.Flex
	statusBar *views.StatusBar

	promptOpen bool
	ctx        context.Context
	cancel     context.CancelFunc
}

// NewApp creates the TUI application.
func NewApp(e model.Engine, profileName string) *App {
	ctx, cancel := context.WithCancel(context.Background())
	theme := ui.DefaultTheme()

	a := &App{
		app:       tview.NewApplication(),
		theme:     theme,
		vm:        model.NewViewModel(e),
		registry:  keys.NewRegistry(),
		flash:     ui.NewFlashModel(clock.Real()),
		profile:   profileName,
		pages:     ui.NewPages(),
		rail:      views.NewViewRail(theme),
		list:      views.NewConversationList(theme),
		thread:    views.NewMessageThread(theme),
		details:   views.NewConversationInfo(theme),
		help:      views.NewHelpView(theme),
		info:      ui.NewProfileInfo(theme),
		menu:      ui.NewMenu(theme, 6),
		crumbs:    ui.NewCrumbs(theme),
		prompt:    ui.NewPrompt(theme),
		statusBar: views.NewStatusBar(theme),
		ctx:       ctx,
		cancel:    cancel,
	}

	a.statusBar.SetProfile(profileName)
	a.setupBindings()
	a.setupCallbacks()
	a.setupLayout()

	return a
}

func (a *App) setupBindings() {
	a.registry.AddGlobal(&keys.Action{
		Key: tcell.KeyRune, Rune: 'q', Label: "q", Help: "Quit", Visible: true,
		Handler: a.back,
	})
	a.registry.AddGlobal(&keys.Action{
		Key: tcell.KeyRune, Rune: '?', Label: "?", Help: "Help", Visible: true,
		Handler: func() { a.pages.Push(a.help); a.app.SetFocus(a.help) },
	})
	a.registry.AddGlobal(&keys.Action{
		Key: tcell.KeyRune, Rune: ':', Label: ":", Help: "Command", Visible: true,
		Handler: func() { a.openPrompt(ui.PromptCommand, "") },
	})
	a.registry.AddGlobal(&keys.Action{
		Key: tcell.KeyTab, Label: "Tab", Help: "Chat/Teams", Visible: true,
		Handler: func() { a.do(a.vm.ToggleView) },
	})

	main := mainPageName
	a.registry.AddPage(main, &keys.Action{
		Key: tcell.KeyRune, Rune: '/', Label: "/", Help: "Filter", Visible: true,
		Handler: func() { a.openPrompt(ui.PromptFilter, a.vm.Snapshot().Filter) },
	})
	a.registry.AddPage(main, &keys.Action{
		Key: tcell.KeyRune, Rune: 'i', Label: "i", Help: "Compose", Visible: true,
		Handler: a.focusComposer,
	})
	a.registry.AddPage(main, &keys.Action{
		Key: tcell.KeyRune, Rune: 'n', Label: "n", Help: "New", Visible: true,
		Handler: func() {
			mode := ui.PromptNewChat
			if a.vm.Snapshot().View == "teams" {
				mode = ui.PromptNewTeam
			}
			a.openPrompt(mode, "")
		},
	})
	a.registry.AddPage(main, &keys.Action{
		Key: tcell.KeyRune, Rune: 'r', Label: "r", Help: "Reply", Visible: true,
		Handler: func() { a.do(a.vm.Receive) },
	})
	a.registry.AddPage(main, &keys.Action{
		Key: tcell.KeyRune, Rune: 'd', Label: "d", Help: "Details", Visible: true,
		Handler: func() { a.pages.Push(a.details); a.app.SetFocus(a.details) },
	})
	a.registry.AddPage(main, &keys.Action{
		Key: tcell.KeyRune, Rune: '0', Label: "0", Help: "Clear filter", Visible: true,
		Handler: func() { a.do(func(ctx context.Context) error { return a.vm.SetFilter(ctx, "") }) },
	})
	for n := 1; n <= 9; n++ {
		a.registry.AddPage(main, &keys.Action{
			Key: tcell.KeyRune, Rune: rune('0' + n),
			Handler: func() { a.open(a.list.IDByIndex(n)) },
		})
	}
}

func (a *App) setupCallbacks() {
	a.list.SetSelectedFunc(func(_, _ int) {
		a.open(a.list.SelectedID())
	})

	a.thread.SetOnSend(func(text string) {
		a.do(func(ctx context.Context) error { return a.vm.Send(ctx, text) })
	})

	a.prompt.SetOnChange(func(mode ui.PromptMode, text string) {
		if mode == ui.PromptFilter {
			a.do(func(ctx context.Context) error { return a.vm.SetFilter(ctx, text) })
		}
	})
	a.prompt.SetOnSubmit(func(mode ui.PromptMode, text string) {
		a.closePrompt()
		switch mode {
		case ui.PromptCommand:
			a.runCommand(ParseCommand(text))
		case ui.PromptNewChat:
			a.create("chat", text)
		case ui.PromptNewTeam:
			a.create("teams", text)
		}
	})
	a.prompt.SetOnCancel(func() {
		if a.prompt.Mode() == ui.PromptFilter {
			a.do(func(ctx context.Context) error { return a.vm.SetFilter(ctx, "") })
		}
		a.closePrompt()
	})

	a.pages.SetOnChange(func(ui.Component, []string) {
		a.renderChrome()
	})
}

func (a *App) setupLayout() {
	a.main = &mainPage{
		Flex: tview.NewFlex().
			AddItem(a.rail, 12, 0, false).
			AddItem(a.list, 0, 2, true).
			AddItem(a.thread, 0, 3, false),
		list: a.list,
	}
	a.pages.AddPage(a.main.Name(), a.main, true, true)
	a.pages.AddPage(a.help.Name(), a.help, true, false)
	a.pages.AddPage(a.details.Name(), a.details, true, false)
	a.pages.Push(a.main)

	header := tview.NewFlex().
		AddItem(a.info, 0, 1, false).
		AddItem(a.menu, 0, 2, false).
		AddItem(ui.NewLogo(a.theme), 14, 0, false)

	a.body = tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(header, 7, 0, false).
		AddItem(a.crumbs, 1, 0, false).
		AddItem(a.pages, 0, 1, true).
		AddItem(a.statusBar, 1, 0, false)

	a.app.SetRoot(a.body, true)
	a.app.SetInputCapture(a.handleKey)
}

func (a *App) handleKey(event *tcell.EventKey) *tcell.EventKey {
	focused := a.app.GetFocus()
	if focused == a.prompt.InputField {
		return event
	}
	if focused == a.thread.Composer() {
		if event.Key() == tcell.KeyEscape {
			a.app.SetFocus(a.list)
			return nil
		}
		return event
	}
	if event.Key() == tcell.KeyEscape {
		a.back()
		return nil
	}
	if a.registry.HandleEvent(a.pages.Current(), event) {
		return nil
	}
	return event
}

// back pops the top page, or quits from the root page.
func (a *App) back() {
	if a.pages.Pop() != nil {
		a.app.SetFocus(a.pages.Top().Focus())
		return
	}
	a.Stop()
}

func (a *App) focusComposer() {
	if !a.thread.InputEnabled() {
		a.flash.Warn(a.vm.Snapshot().InputPlaceholder)
		a.renderChrome()
		return
	}
	a.app.SetFocus(a.thread.Composer())
}

func (a *App) openPrompt(mode ui.PromptMode, initial string) {
	if !a.promptOpen {
		a.body.AddItem(a.prompt, 3, 0, false)
		a.promptOpen = true
	}
	a.prompt.Activate(mode, initial)
	a.app.SetFocus(a.prompt)
}

func (a *App) closePrompt() {
	if a.promptOpen {
		a.body.RemoveItem(a.prompt)
		a.promptOpen = false
	}
	a.app.SetFocus(a.pages.Top().Focus())
}

func (a *App) runCommand(cmd Command) {
	switch cmd.Name {
	case "q", "quit":
		a.Stop()
	case "h", "help":
		a.pages.Push(a.help)
		a.app.SetFocus(a.help)
	case "chat", "chats", "teams", "team":
		view := "chat"
		if cmd.Name == "teams" || cmd.Name == "team" {
			view = "teams"
		}
		a.do(func(ctx context.Context) error { return a.vm.SwitchView(ctx, view) })
	case "open", "o":
		it, ok := a.vm.FindItem(cmd.Args)
		if !ok {
			a.flash.Warn(fmt.Sprintf("no %s named %q", a.vm.Snapshot().View, cmd.Args))
			a.renderChrome()
			return
		}
		a.open(it.ID)
	case "new":
		kind, name := cmd.NewArgs()
		if name == "" {
			mode := ui.PromptNewChat
			if kind == "teams" {
				mode = ui.PromptNewTeam
			}
			a.openPrompt(mode, "")
			return
		}
		a.create(kind, name)
	case "receive", "r":
		a.do(a.vm.Receive)
	case "read":
		a.do(func(ctx context.Context) error {
			n, err := a.vm.MarkRead(ctx)
			if err == nil {
				a.flash.Info(fmt.Sprintf("%d messages marked read", n))
			}
			return err
		})
	case "filter", "f":
		a.do(func(ctx context.Context) error { return a.vm.SetFilter(ctx, cmd.Args) })
	case "details", "d":
		a.pages.Push(a.details)
		a.app.SetFocus(a.details)
	case "":
	default:
		a.flash.Warn("unknown command: " + cmd.Name)
		a.renderChrome()
	}
}

func (a *App) open(id string) {
	if id == "" {
		return
	}
	a.do(func(ctx context.Context) error {
		if err := a.vm.Open(ctx, id); err != nil {
			return err
		}
		a.app.QueueUpdate(func() { a.list.SelectID(id) })
		return nil
	})
}

func (a *App) create(kind, name string) {
	a.do(func(ctx context.Context) error {
		id, err := a.vm.Create(ctx, kind, name)
		if err != nil {
			return err
		}
		a.flash.Info("created " + name)
		a.app.QueueUpdate(func() { a.list.SelectID(id) })
		return nil
	})
}

// do runs fn off the UI goroutine and reports failures in the flash bar.
func (a *App) do(fn func(ctx context.Context) error) {
	go func() {
		ctx, cancel := context.WithTimeout(a.ctx, callTimeout)
		defer cancel()
		if err := fn(ctx); err != nil {
			a.report(err)
		}
	}()
}

func (a *App) report(err error) {
	switch grpcstatus.Code(err) {
	case codes.InvalidArgument, codes.FailedPrecondition, codes.NotFound:
		a.flash.Warn(grpcstatus.Convert(err).Message())
	default:
		a.flash.Err(err)
	}
	a.app.QueueUpdateDraw(a.renderChrome)
}

// render redraws every view from the cached snapshot. Must run on the UI
// goroutine.
func (a *App) render() {
	snap := a.vm.Snapshot()
	a.list.Update(snap)
	a.thread.Update(snap)
	a.details.Update(snap)
	a.renderChrome()
}

func (a *App) renderChrome() {
	snap := a.vm.Snapshot()
	unread := 0
	if st := a.vm.Status(); st != nil {
		unread = st.Unread
		a.info.Update(&ui.ProfileData{
			Profile:   st.Profile,
			State:     st.State,
			View:      snap.View,
			Chats:     st.Chats,
			Teams:     st.Teams,
			Unread:    st.Unread,
			StartedAt: time.UnixMilli(st.StartedAt),
		})
	}
	a.rail.Update(snap.View, unread)

	trail := []string{a.profile, viewLabel(snap.View)}
	if snap.Active != nil {
		trail = append(trail, snap.Active.Name)
	}
	if top := a.pages.Current(); top != mainPageName {
		trail = append(trail, top)
	}
	a.crumbs.Update(trail)
	a.menu.Update(a.registry.Hints(a.pages.Current()))

	if snap.Now != 0 {
		a.statusBar.SetState(snap.Status, time.UnixMilli(snap.Now))
	}
	a.statusBar.SetFlash(a.flash.GetMessage())
}

func viewLabel(view string) string {
	if view == "teams" {
		return "Teams"
	}
	return "Chat"
}

// Run loads the first snapshot, starts watching daemon events and blocks
// until the UI exits.
func (a *App) Run() error {
	go func() {
		ctx, cancel := context.WithTimeout(a.ctx, callTimeout)
		err := a.vm.Refresh(ctx)
		cancel()
		if err != nil {
			a.report(err)
		}
		a.watch()
	}()
	go a.redrawLoop()
	return a.app.Run()
}

// watch keeps an event stream open, reconnecting after failures.
func (a *App) watch() {
	for a.ctx.Err() == nil {
		err := a.vm.Watch(a.ctx, func(evt *apiv1.Event) {
			if evt.Kind == "engine.persist_failed" {
				a.flash.Warn("could not save " + evt.Name)
			}
		})
		if err != nil && a.ctx.Err() == nil {
			a.flash.Err(fmt.Errorf("event stream: %w", err))
			a.app.QueueUpdateDraw(a.renderChrome)
		}
		select {
		case <-time.After(2 * time.Second):
		case <-a.ctx.Done():
			return
		}
	}
}

// redrawLoop renders on every model or flash change and refreshes relative
// time labels once a minute.
func (a *App) redrawLoop() {
	minute := time.NewTicker(time.Minute)
	defer minute.Stop()
	for {
		select {
		case <-a.vm.RefreshCh():
			a.app.QueueUpdateDraw(a.render)
		case <-a.flash.Watch():
			a.app.QueueUpdateDraw(a.renderChrome)
		case <-minute.C:
			a.do(a.vm.Refresh)
		case <-a.ctx.Done():
			return
		}
	}
}

// Stop gracefully shuts down the TUI.
func (a *App) Stop() {
	a.cancel()
	a.app.Stop()
}
