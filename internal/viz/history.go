package viz

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/san-kum/phaseavg/internal/caseio"
	"github.com/san-kum/phaseavg/internal/storage"
)

// SampleLoader fetches the samples of one run.
type SampleLoader func(runID string) ([]storage.Sample, error)

const (
	stateList = iota
	stateDetail
)

// HistoryBrowser is a Bubble Tea model listing past runs.
type HistoryBrowser struct {
	state, cursor int
	runs          []storage.RunMetadata
	load          SampleLoader
	samples       []storage.Sample
	err           error
	width, height int
}

func NewHistoryBrowser(runs []storage.RunMetadata, load SampleLoader) HistoryBrowser {
	return HistoryBrowser{runs: runs, load: load, width: 80, height: 24}
}

// Selected returns the run under the cursor.
func (m HistoryBrowser) Selected() (storage.RunMetadata, bool) {
	if len(m.runs) == 0 {
		return storage.RunMetadata{}, false
	}
	return m.runs[m.cursor], true
}

func (m HistoryBrowser) Init() tea.Cmd { return nil }

func (m HistoryBrowser) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
	}
	return m, nil
}

func (m HistoryBrowser) handleKey(msg tea.KeyMsg) (HistoryBrowser, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	}
	switch m.state {
	case stateList:
		return m.listKey(msg)
	case stateDetail:
		return m.detailKey(msg)
	}
	return m, nil
}

func (m HistoryBrowser) listKey(msg tea.KeyMsg) (HistoryBrowser, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.runs)-1 {
			m.cursor++
		}
	case "enter", " ":
		run, ok := m.Selected()
		if !ok {
			return m, nil
		}
		m.samples, m.err = nil, nil
		if m.load != nil {
			m.samples, m.err = m.load(run.ID)
		}
		m.state = stateDetail
	}
	return m, nil
}

func (m HistoryBrowser) detailKey(msg tea.KeyMsg) (HistoryBrowser, tea.Cmd) {
	switch msg.String() {
	case "esc", "backspace":
		m.state = stateList
	}
	return m, nil
}

func (m HistoryBrowser) View() string {
	if m.state == stateDetail {
		return m.viewDetail()
	}
	return m.viewList()
}

func (m HistoryBrowser) viewList() string {
	var b strings.Builder
	b.WriteString("\n  " + Title.Render("PHASE AVERAGE HISTORY") + "\n  " + Separator(40) + "\n\n")
	if len(m.runs) == 0 {
		b.WriteString("  " + Subtle.Render("no runs recorded") + "\n")
	}
	for i, run := range m.runs {
		line := fmt.Sprintf("%-28s %-10s %3d/%-3d %s",
			run.Output, run.Kind, run.Count, run.Visited, run.Timestamp.Format("2006-01-02 15:04"))
		if i == m.cursor {
			b.WriteString("  " + Selected.Render("▸ "+line) + "\n")
		} else {
			b.WriteString("    " + Subtle.Render(line) + "\n")
		}
	}
	b.WriteString("\n  " + KeyHint.Render("j/k navigate  enter details  q quit") + "\n")
	return b.String()
}

func (m HistoryBrowser) viewDetail() string {
	run, _ := m.Selected()
	var b strings.Builder
	b.WriteString("\n  " + Title.Render(run.Output) + "\n  " + Subtle.Render(run.ID) + "\n\n")

	metric := func(label, value string) {
		b.WriteString("  " + MetricLabel.Render(fmt.Sprintf("%-14s", label)) + MetricValue.Render(value) + "\n")
	}
	metric("case", run.Case)
	metric("region", run.Region)
	metric("phase start", caseio.FormatTime(run.PhaseStart, caseio.DefaultTimePrecision))
	metric("cycle", caseio.FormatTime(run.CycleTime, caseio.DefaultTimePrecision))
	metric("written at", run.WrittenAt)
	metric("averaged", fmt.Sprintf("%d", run.Count))
	metric("|mean| avg", fmt.Sprintf("%.6g", run.Summary.Mean))

	switch {
	case m.err != nil:
		b.WriteString("\n  " + StatusBad.Render(m.err.Error()) + "\n")
	case len(m.samples) > 0:
		b.WriteString("\n")
		for _, s := range m.samples {
			b.WriteString(fmt.Sprintf("  %-12s %s\n",
				caseio.FormatTime(s.Time, caseio.DefaultTimePrecision),
				StatusStyle(s.Status).Render(s.Status)))
		}
		if plot := PlotSamples(m.samples); plot != "" {
			b.WriteString("\n" + plot + "\n")
		}
	}

	b.WriteString("\n  " + KeyHint.Render("esc back  q quit") + "\n")
	return b.String()
}

// RunHistoryBrowser runs the browser full screen until the user quits.
func RunHistoryBrowser(runs []storage.RunMetadata, load SampleLoader) error {
	_, err := tea.NewProgram(NewHistoryBrowser(runs, load), tea.WithAltScreen()).Run()
	return err
}
