package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	bubbleprogress "github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"fdescout/internal/aggregator"
	"fdescout/internal/model"
	"fdescout/internal/progress"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39")).
			MarginBottom(1)

	stepStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	currentStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")).
			Italic(true)

	statStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))

	errStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))
)

// tickMsg drives the poll of the shared tracker.
type tickMsg time.Time

// runDoneMsg is sent when the aggregation goroutine finishes.
type runDoneMsg struct {
	summary *model.RunSummary
	err     error
}

type runModel struct {
	bar     bubbleprogress.Model
	tracker *progress.Tracker
	snap    progress.Snapshot
	summary *model.RunSummary
	err     error
	done    bool
}

func newRunModel(tracker *progress.Tracker) runModel {
	bar := bubbleprogress.New(bubbleprogress.WithDefaultGradient())
	bar.Width = 50
	return runModel{bar: bar, tracker: tracker}
}

func tickCmd() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m runModel) Init() tea.Cmd {
	return tickCmd()
}

func (m runModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		width := msg.Width - 4
		if width > 60 {
			width = 60
		}
		if width > 0 {
			m.bar.Width = width
		}

	case tickMsg:
		m.snap = m.tracker.Snapshot()
		if m.done {
			return m, tea.Quit
		}
		return m, tickCmd()

	case runDoneMsg:
		m.summary = msg.summary
		m.err = msg.err
		m.done = true
		m.snap = m.tracker.Snapshot()
		return m, tea.Quit
	}

	return m, nil
}

func (m runModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("fdescout") + "\n")
	b.WriteString(m.bar.ViewAs(float64(m.snap.Percent)/100) + "\n\n")

	if m.err != nil {
		b.WriteString(errStyle.Render("run failed: "+m.err.Error()) + "\n")
		return b.String()
	}

	if m.done && m.summary != nil {
		b.WriteString(stepStyle.Render(fmt.Sprintf(
			"done: %d found, %d unique, %d saved, %d already known",
			m.summary.TotalFound, m.summary.Unique, m.summary.Saved, m.summary.Skipped,
		)) + "\n")
		return b.String()
	}

	b.WriteString(stepStyle.Render(m.snap.Step))
	if m.snap.Current != "" {
		b.WriteString("  " + currentStyle.Render(m.snap.Current))
	}
	b.WriteString("\n")
	b.WriteString(statStyle.Render(fmt.Sprintf("%d saved", m.snap.Added)) + "\n")

	return b.String()
}

// runWithTUI renders live progress while the aggregation runs in its
// own goroutine.
func runWithTUI(ctx context.Context, agg *aggregator.Aggregator, q model.SearchQuery, tracker *progress.Tracker) (*model.RunSummary, error) {
	p := tea.NewProgram(newRunModel(tracker), tea.WithContext(ctx))

	go func() {
		summary, err := agg.Run(ctx, q)
		tracker.Finish()
		p.Send(runDoneMsg{summary: summary, err: err})
	}()

	final, err := p.Run()
	if err != nil {
		return nil, fmt.Errorf("render progress: %w", err)
	}

	m := final.(runModel)
	if m.err != nil {
		return nil, m.err
	}
	if m.summary == nil {
		// The user quit before the run finished.
		return nil, context.Canceled
	}
	return m.summary, nil
}
