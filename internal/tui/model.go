// Package tui is the terminal quiz player.
package tui

import (
	"context"
	"strconv"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"quiz-widget-service/internal/domain"
	"quiz-widget-service/internal/quiz"
)

// Catalog lists the quizzes the player offers.
type Catalog interface {
	ListQuizzes(ctx context.Context, topic, query string) ([]domain.QuizMetadata, error)
}

// Options configures the player UI.
type Options struct {
	Topic   string
	NoColor bool
	// Updates receives a value whenever the player changes on its own (a celebration
	// expiring). Wire it to quiz.PlayerOptions.OnUpdate via Notify.
	Updates <-chan struct{}
}

// Notify returns an OnUpdate callback and the channel it signals. Signals coalesce.
func Notify() (func(), <-chan struct{}) {
	ch := make(chan struct{}, 1)
	return func() {
		select {
		case ch <- struct{}{}:
		default:
		}
	}, ch
}

// Model renders a quiz player using Bubble Tea. It caches the last view so rendering
// never waits on the player's lock.
type Model struct {
	ctx     context.Context
	player  *quiz.Player
	catalog Catalog
	topic   string
	updates <-chan struct{}

	quizzes    []domain.QuizMetadata
	catalogErr string
	cursor     int
	view       quiz.PlayerView
	busy       bool
	confirming bool
	lastErr    string

	keys    keyMap
	help    help.Model
	spinner spinner.Model
	noColor bool
}

// NewModel constructs a player UI for one learner session.
func NewModel(ctx context.Context, player *quiz.Player, catalog Catalog, opts Options) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	return Model{
		ctx:     ctx,
		player:  player,
		catalog: catalog,
		topic:   opts.Topic,
		updates: opts.Updates,
		view:    player.View(),
		busy:    true,
		keys:    defaultKeys(),
		help:    help.New(),
		spinner: sp,
		noColor: opts.NoColor,
	}
}

// catalogMsg carries the quiz list.
type catalogMsg struct {
	quizzes []domain.QuizMetadata
	err     error
}

// viewMsg carries a player view produced off the UI goroutine.
type viewMsg struct {
	view quiz.PlayerView
	err  error
}

// Init loads the catalog and starts listening for player updates.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.loadCatalog(), waitForUpdate(m.updates, m.player), m.spinner.Tick)
}

// Update handles keys, catalog loads and player views.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch typed := msg.(type) {
	case tea.WindowSizeMsg:
		m.help.Width = typed.Width
		return m, nil
	case catalogMsg:
		m.busy = false
		m.quizzes = typed.quizzes
		m.catalogErr = ""
		if typed.err != nil {
			m.catalogErr = typed.err.Error()
		}
		m.cursor = min(m.cursor, max(len(m.quizzes)-1, 0))
		return m, nil
	case viewMsg:
		m.busy = false
		m = m.applyView(typed.view, typed.err)
		return m, nil
	case updateMsg:
		m.view = typed.view
		return m, waitForUpdate(m.updates, m.player)
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(typed)
		return m, cmd
	case tea.KeyMsg:
		return m.handleKey(typed)
	}
	return m, nil
}

func (m Model) applyView(view quiz.PlayerView, err error) Model {
	if view.Status != m.view.Status || view.QuestionNumber != m.view.QuestionNumber {
		m.cursor = 0
	}
	m.view = view
	m.lastErr = ""
	if err != nil {
		m.lastErr = err.Error()
	}
	return m
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}
	if m.busy {
		return m, nil
	}
	if m.confirming {
		switch {
		case key.Matches(msg, m.keys.Yes):
			m.confirming = false
			return m.leave()
		case key.Matches(msg, m.keys.No):
			m.confirming = false
		}
		return m, nil
	}

	switch m.view.Status {
	case quiz.StatusNotStarted:
		return m.handleSelectorKey(msg)
	case quiz.StatusError:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Enter), key.Matches(msg, m.keys.Back):
			return m.leave()
		}
	case quiz.StatusInProgress:
		return m.handleQuestionKey(msg)
	case quiz.StatusCompleted:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Restart):
			return m.run(func() (quiz.PlayerView, error) { return m.player.Restart(m.ctx), nil })
		case key.Matches(msg, m.keys.Enter), key.Matches(msg, m.keys.Back):
			return m.leave()
		}
	}
	return m, nil
}

func (m Model) handleSelectorKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Up):
		m.cursor = max(m.cursor-1, 0)
	case key.Matches(msg, m.keys.Down):
		m.cursor = min(m.cursor+1, max(len(m.quizzes)-1, 0))
	case key.Matches(msg, m.keys.Restart):
		m.busy = true
		return m, m.loadCatalog()
	case key.Matches(msg, m.keys.Enter):
		if len(m.quizzes) == 0 {
			return m, nil
		}
		id := m.quizzes[m.cursor].ID
		return m.run(func() (quiz.PlayerView, error) { return m.player.SelectQuiz(m.ctx, id, m.topic), nil })
	}
	return m, nil
}

func (m Model) handleQuestionKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	q := m.view.Question
	if q == nil {
		return m, nil
	}
	switch {
	case key.Matches(msg, m.keys.Quit), key.Matches(msg, m.keys.Back):
		if m.view.ConfirmLeave {
			m.confirming = true
			return m, nil
		}
		return m.leave()
	case key.Matches(msg, m.keys.Restart):
		return m.run(func() (quiz.PlayerView, error) { return m.player.Restart(m.ctx), nil })
	case q.Selection != nil:
		if key.Matches(msg, m.keys.Enter) {
			return m.run(func() (quiz.PlayerView, error) { return m.player.Continue(m.ctx) })
		}
	case key.Matches(msg, m.keys.Up):
		m.cursor = max(m.cursor-1, 0)
	case key.Matches(msg, m.keys.Down):
		m.cursor = min(m.cursor+1, len(q.Options)-1)
	case key.Matches(msg, m.keys.Shortcut):
		n, _ := strconv.Atoi(msg.String())
		if n < 1 || n > len(q.Options) {
			return m, nil
		}
		m.cursor = n - 1
		view, err := m.player.Select(m.cursor)
		return m.applyView(view, err), nil
	case key.Matches(msg, m.keys.Enter):
		view, err := m.player.Select(m.cursor)
		return m.applyView(view, err), nil
	}
	return m, nil
}

func (m Model) leave() (tea.Model, tea.Cmd) {
	return m.run(func() (quiz.PlayerView, error) { return m.player.Leave(m.ctx), nil })
}

// run executes a player call that may block (catalog load, score reporting) off the
// UI goroutine.
func (m Model) run(call func() (quiz.PlayerView, error)) (tea.Model, tea.Cmd) {
	m.busy = true
	return m, func() tea.Msg {
		view, err := call()
		return viewMsg{view: view, err: err}
	}
}

func (m Model) loadCatalog() tea.Cmd {
	return func() tea.Msg {
		quizzes, err := m.catalog.ListQuizzes(m.ctx, m.topic, "")
		return catalogMsg{quizzes: quizzes, err: err}
	}
}

// updateMsg is a view refreshed after a player-initiated change.
type updateMsg struct {
	view quiz.PlayerView
}

// waitForUpdate blocks until the player signals a change.
func waitForUpdate(updates <-chan struct{}, player *quiz.Player) tea.Cmd {
	if updates == nil {
		return nil
	}
	return func() tea.Msg {
		if _, ok := <-updates; !ok {
			return nil
		}
		return updateMsg{view: player.View()}
	}
}
