package cli

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/liqwen/framegrab/internal/core/acquire"
)

var (
	acquireDoneStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	acquireErrStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	acquireDimStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("248"))
)

// acquireState holds download state shared between the worker goroutine and
// the TUI.
type acquireState struct {
	mu    sync.RWMutex
	done  bool
	err   error
	media *acquire.Media
}

func (s *acquireState) setDone(media *acquire.Media) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.done = true
	s.media = media
}

func (s *acquireState) setError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
	s.done = true
}

func (s *acquireState) get() (bool, error, *acquire.Media) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.done, s.err, s.media
}

type acquireTickMsg time.Time

type acquireModel struct {
	spinner spinner.Model
	url     string
	state   *acquireState
	cancel  context.CancelFunc
}

func newAcquireModel(url string, state *acquireState, cancel context.CancelFunc) acquireModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	return acquireModel{
		spinner: s,
		url:     url,
		state:   state,
		cancel:  cancel,
	}
}

func acquireTickCmd() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg {
		return acquireTickMsg(t)
	})
}

func (m acquireModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, acquireTickCmd())
}

func (m acquireModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			m.cancel()
			return m, tea.Quit
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case acquireTickMsg:
		done, _, _ := m.state.get()
		if done {
			return m, tea.Quit
		}
		return m, acquireTickCmd()
	}

	return m, nil
}

func (m acquireModel) View() string {
	done, err, media := m.state.get()

	if err != nil {
		return fmt.Sprintf("\n  %s download failed: %v\n\n",
			acquireErrStyle.Render("✗"), err)
	}
	if done && media != nil {
		return fmt.Sprintf("\n  %s downloaded %q\n\n",
			acquireDoneStyle.Render("✓"), media.Title)
	}
	return fmt.Sprintf("\n  %s downloading %s\n  %s\n\n",
		m.spinner.View(), m.url,
		acquireDimStyle.Render("press q to cancel"))
}

// runAcquireWithSpinner downloads url while showing a spinner.
func runAcquireWithSpinner(engine *acquire.Engine, url string) (*acquire.Media, error) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	state := &acquireState{}
	go func() {
		media, err := engine.Acquire(ctx, url)
		if err != nil {
			state.setError(err)
			return
		}
		state.setDone(media)
	}()

	p := tea.NewProgram(newAcquireModel(url, state, cancel))
	if _, err := p.Run(); err != nil {
		return nil, err
	}

	done, err, media := state.get()
	if err != nil {
		return nil, err
	}
	if !done || media == nil {
		return nil, context.Canceled
	}
	return media, nil
}
