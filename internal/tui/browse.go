// internal/tui/browse.go
// Package tui provides the interactive terminal browser over scanned runs.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mwiater/yolometrics/internal/aliases"
	"github.com/mwiater/yolometrics/internal/resolve"
	"github.com/mwiater/yolometrics/internal/scan"
	"github.com/mwiater/yolometrics/internal/util"
)

// ScanFunc produces the runs to browse.
type ScanFunc func(ctx context.Context) ([]scan.Run, error)

// viewState represents the current screen of the browser.
type viewState int

const (
	// viewScanning is shown while the root is being scanned.
	viewScanning viewState = iota
	// viewRunSelector lists the discovered runs.
	viewRunSelector
	// viewConfigSelector lists the configurations of the selected run.
	viewConfigSelector
	// viewDetail shows how one configuration resolved.
	viewDetail
)

type model struct {
	ctx            context.Context
	root           string
	table          *aliases.Table
	scan           ScanFunc
	state          viewState
	isLoading      bool
	err            error
	runs           []scan.Run
	runList        list.Model
	configList     list.Model
	viewport       viewport.Model
	spinner        spinner.Model
	selectedRun    int
	selectedConfig *resolve.Record
	width, height  int
	startTime      time.Time
}

func initialModel(ctx context.Context, root string, table *aliases.Table, scanFn ScanFunc) *model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	runList := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	runList.Title = "Select a Run"
	runList.SetFilteringEnabled(false)

	configList := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	configList.SetFilteringEnabled(false)

	return &model{
		ctx:        ctx,
		root:       root,
		table:      table,
		scan:       scanFn,
		state:      viewScanning,
		isLoading:  true,
		runList:    runList,
		configList: configList,
		viewport:   viewport.New(100, 5),
		spinner:    s,
		startTime:  time.Now(),
	}
}

// item represents a selectable entry in a Bubble Tea list.
type item struct {
	title string
	desc  string
}

func (i item) Title() string       { return i.title }
func (i item) Description() string { return i.desc }
func (i item) FilterValue() string { return i.title }

// runsReadyMsg carries the finished scan.
type runsReadyMsg struct {
	runs []scan.Run
}

// scanErr reports a failed scan.
type scanErr struct{ error }

func scanCmd(ctx context.Context, scanFn ScanFunc) tea.Cmd {
	return func() tea.Msg {
		runs, err := scanFn(ctx)
		if err != nil {
			return scanErr{error: err}
		}
		return runsReadyMsg{runs: runs}
	}
}

// Init starts the spinner and the scan.
func (m *model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, scanCmd(m.ctx, m.scan))
}

// Update is the central update function for the Bubble Tea model.
func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var (
		cmd  tea.Cmd
		cmds []tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "esc", "backspace":
			m.back()
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.runList.SetSize(msg.Width-4, msg.Height-2)
		m.configList.SetSize(msg.Width-4, msg.Height-2)
		headerHeight := 3
		footerHeight := 2
		m.viewport.Width = msg.Width
		m.viewport.Height = msg.Height - headerHeight - footerHeight

	case runsReadyMsg:
		m.isLoading = false
		m.runs = msg.runs
		items := make([]list.Item, 0, len(msg.runs))
		for _, run := range msg.runs {
			items = append(items, item{
				title: run.Name,
				desc:  fmt.Sprintf("%d configurations · %s", len(run.Configs), run.Path),
			})
		}
		m.runList.SetItems(items)
		if len(items) == 0 {
			m.runList.Title = fmt.Sprintf("No runs found under %s", m.root)
		}
		m.state = viewRunSelector
		return m, nil

	case scanErr:
		m.isLoading = false
		m.err = msg.error
		return m, nil
	}

	switch m.state {
	case viewRunSelector:
		m.runList, cmd = m.runList.Update(msg)
		cmds = append(cmds, cmd)
		if msg, ok := msg.(tea.KeyMsg); ok && msg.String() == "enter" && len(m.runs) > 0 {
			m.openRun(m.runList.Index())
		}

	case viewConfigSelector:
		m.configList, cmd = m.configList.Update(msg)
		cmds = append(cmds, cmd)
		if msg, ok := msg.(tea.KeyMsg); ok && msg.String() == "enter" {
			configs := m.runs[m.selectedRun].Configs
			if idx := m.configList.Index(); idx >= 0 && idx < len(configs) {
				m.openConfig(configs[idx])
			}
		}

	case viewDetail:
		m.viewport, cmd = m.viewport.Update(msg)
		cmds = append(cmds, cmd)
	}

	if m.isLoading {
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m *model) openRun(idx int) {
	if idx < 0 || idx >= len(m.runs) {
		return
	}
	m.selectedRun = idx
	run := m.runs[idx]
	items := make([]list.Item, 0, len(run.Configs))
	for _, rec := range run.Configs {
		items = append(items, item{title: rec.Name, desc: configSummary(rec, m.table)})
	}
	m.configList.SetItems(items)
	m.configList.Select(0)
	m.configList.Title = fmt.Sprintf("Configurations of %s", run.Name)
	m.state = viewConfigSelector
}

func (m *model) openConfig(rec *resolve.Record) {
	m.selectedConfig = rec
	m.viewport.SetContent(detailContent(rec, m.table))
	m.viewport.GotoTop()
	m.state = viewDetail
}

func (m *model) back() {
	switch m.state {
	case viewDetail:
		m.state = viewConfigSelector
		m.selectedConfig = nil
	case viewConfigSelector:
		m.state = viewRunSelector
	}
}

// View renders the browser based on the current state of the model.
func (m *model) View() string {
	if m.width == 0 {
		return "Initializing..."
	}

	if m.err != nil {
		errorStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Padding(1)
		return errorStyle.Render(fmt.Sprintf("Error: %v", m.err))
	}

	switch m.state {
	case viewScanning:
		timer := fmt.Sprintf("%.1f", time.Since(m.startTime).Seconds())
		return fmt.Sprintf("\n  %s Scanning %s... %ss\n", m.spinner.View(), m.root, timer)

	case viewRunSelector:
		return lipgloss.NewStyle().Margin(1, 2).Render(m.runList.View())

	case viewConfigSelector:
		return lipgloss.NewStyle().Margin(1, 2).Render(m.configList.View())

	case viewDetail:
		return m.detailView()

	default:
		return "Unknown state"
	}
}

func (m *model) detailView() string {
	headerStyle := lipgloss.NewStyle().Background(lipgloss.Color("62")).Foreground(lipgloss.Color("230")).Padding(0, 1)
	run := m.runs[m.selectedRun]
	header := lipgloss.JoinHorizontal(lipgloss.Top,
		headerStyle.Render(fmt.Sprintf("Run: %s", run.Name)),
		headerStyle.MarginLeft(1).Render(fmt.Sprintf("Config: %s", m.selectedConfig.Name)),
		renderCountBadge(countFound(m.selectedConfig), len(m.selectedConfig.Metrics)),
	)
	help := lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Render(" (esc to go back, q to quit)")

	var b strings.Builder
	b.WriteString(header + "\n\n")
	b.WriteString(m.viewport.View())
	b.WriteString("\n" + help)
	return b.String()
}

func configSummary(rec *resolve.Record, table *aliases.Table) string {
	images := 0
	for _, tag := range []string{aliases.LabelsTag, aliases.PredTag, aliases.GenericTag} {
		if e, ok := rec.Entry(tag); ok {
			images += len(e.Images())
		}
	}
	return fmt.Sprintf("%d/%d metrics · %d gallery images", countFound(rec), len(table.Keys()), images)
}

// detailContent renders one configuration: each metric with its status and source file, then the
// galleries with their image names.
func detailContent(rec *resolve.Record, table *aliases.Table) string {
	keyStyle := lipgloss.NewStyle().Bold(true).Width(6)
	sectionStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("5"))

	var b strings.Builder
	b.WriteString(sectionStyle.Render("Metrics") + "\n")
	for _, m := range rec.Metrics {
		line := keyStyle.Render(string(m.Key)) + " " + renderStatusBadge(deriveStatus(m))
		if m.Found() {
			line += " " + m.File
			if ref := m.Ref; ref != nil {
				line += fmt.Sprintf(" (%s", util.HumanBytes(ref.Size()))
				if ref.Width > 0 && ref.Height > 0 {
					line += fmt.Sprintf(", %dx%d", ref.Width, ref.Height)
				}
				line += ")"
			}
			if m.Fallback {
				line += fmt.Sprintf(" -> %s", m.OutputKey)
			}
		} else {
			line += " expected " + table.CanonicalKey(m.Key)
		}
		b.WriteString(line + "\n")
	}

	galleries := []struct {
		tag   string
		label string
	}{
		{aliases.LabelsTag, "Validation Batches (Labels)"},
		{aliases.PredTag, "Validation Batches (Pred)"},
		{aliases.GenericTag, "All Images"},
	}
	for _, g := range galleries {
		e, ok := rec.Entry(g.tag)
		if !ok {
			continue
		}
		b.WriteString("\n" + sectionStyle.Render(g.label) + "\n")
		switch e := e.(type) {
		case resolve.Categorized:
			for _, cat := range e.Categories {
				for _, ref := range cat.Refs {
					b.WriteString(fmt.Sprintf("  %-10s %s\n", cat.Label, ref.Name))
				}
			}
		default:
			for _, ref := range e.Images() {
				b.WriteString("  " + util.TruncateRunes(ref.Name, 72) + "\n")
			}
		}
	}
	return b.String()
}

// Run starts the browser and blocks until the user quits.
func Run(ctx context.Context, root string, table *aliases.Table, scanFn ScanFunc) error {
	p := tea.NewProgram(initialModel(ctx, root, table, scanFn), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}
