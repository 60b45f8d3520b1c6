// Package reportui provides the Bubble Tea report browser.
package reportui

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/polygrade/internal/report"
)

const (
	tabOverview = iota
	tabDegrees
	tabConvergence
)

var (
	activeNavStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F0F0F0")).
			Bold(true).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A"))
	inactiveNavStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#B0B0B0")).
				Padding(0, 1).
				Border(lipgloss.RoundedBorder(), true).
				BorderForeground(lipgloss.Color("#4A4A4A"))
	headerStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	tableMutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#B8B8B8"))
)

// Model implements the Bubble Tea report browser.
type Model struct {
	report     report.Report
	plotHeight int

	tabs        []string
	activeTab   int
	viewports   []viewport.Model
	degreeTable table.Model

	width  int
	height int
}

// NewModel constructs a report browser model.
func NewModel(r report.Report, plotHeight int) *Model {
	m := &Model{
		report:     r,
		plotHeight: plotHeight,
		tabs:       []string{"Overview", "Degrees", "Convergence"},
	}
	m.viewports = make([]viewport.Model, len(m.tabs))
	for i := range m.viewports {
		m.viewports[i] = viewport.New(0, 0)
	}
	m.degreeTable = buildDegreeTable(r)
	m.renderTabContents()
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateLayout()
		m.renderTabContents()
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.String() == "q" {
			return m, tea.Quit
		}
		switch msg.String() {
		case "left", "h":
			m.moveTab(-1)
			return m, tea.ClearScreen
		case "right", "l":
			m.moveTab(1)
			return m, tea.ClearScreen
		case "g", "home":
			if m.activeTab == tabDegrees {
				m.degreeTable.GotoTop()
			} else {
				m.viewports[m.activeTab].GotoTop()
			}
			return m, nil
		case "G", "end":
			if m.activeTab == tabDegrees {
				m.degreeTable.GotoBottom()
			} else {
				m.viewports[m.activeTab].GotoBottom()
			}
			return m, nil
		default:
			if m.activeTab == tabDegrees {
				var cmd tea.Cmd
				m.degreeTable, cmd = m.degreeTable.Update(msg)
				return m, cmd
			}
			vp := m.viewports[m.activeTab]
			var cmd tea.Cmd
			vp, cmd = vp.Update(msg)
			m.viewports[m.activeTab] = vp
			return m, cmd
		}
	}
	return m, nil
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	headerHeight, bodyHeight, footerHeight := m.layoutHeights()
	header := fitLines(m.renderHeader(), m.width, headerHeight)
	body := fitLines(m.renderBody(), m.width, bodyHeight)
	footer := fitLines(m.renderFooter(), m.width, footerHeight)
	return strings.Join([]string{header, body, footer}, "\n")
}

func (m *Model) layoutHeights() (headerHeight, bodyHeight, footerHeight int) {
	tabsHeight := lipgloss.Height(activeNavStyle.Render("X"))
	if tabsHeight < 1 {
		tabsHeight = 1
	}
	headerHeight = tabsHeight + 1
	footerHeight = 1
	bodyHeight = m.height - headerHeight - footerHeight
	if bodyHeight < 1 {
		bodyHeight = 1
	}
	return headerHeight, bodyHeight, footerHeight
}

func (m *Model) updateLayout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	_, bodyHeight, _ := m.layoutHeights()
	for i := range m.viewports {
		m.viewports[i].Width = m.width
		m.viewports[i].Height = bodyHeight
	}
	m.degreeTable.SetWidth(m.width)
	m.degreeTable.SetHeight(maxInt(1, bodyHeight-1))
}

func (m *Model) moveTab(delta int) {
	count := len(m.tabs)
	if count == 0 {
		return
	}
	next := m.activeTab + delta
	if next < 0 {
		next = count - 1
	}
	if next >= count {
		next = 0
	}
	m.activeTab = next
	if m.activeTab == tabDegrees {
		m.degreeTable.Focus()
	} else {
		m.degreeTable.Blur()
	}
}

func (m *Model) renderHeader() string {
	parts := make([]string, 0, len(m.tabs))
	for i, tab := range m.tabs {
		if i == m.activeTab {
			parts = append(parts, activeNavStyle.Render(tab))
		} else {
			parts = append(parts, inactiveNavStyle.Render(tab))
		}
	}
	tabs := lipgloss.JoinHorizontal(lipgloss.Top, parts...)
	summary := headerStyle.Render(truncateLine(m.renderExperimentLine(), m.width))
	return tabs + "\n" + summary
}

func (m *Model) renderExperimentLine() string {
	truth := "no truth"
	if m.report.Truth != nil {
		truth = fmt.Sprintf("truth dim %d", len(m.report.Truth))
	}
	verdict := "converging"
	if m.report.Stagnation.IsStagnant {
		verdict = "stagnant"
	}
	return fmt.Sprintf("Experiment: %s  %s  %d degrees  %s",
		m.report.Experiment, truth, len(m.report.Rows), verdict)
}

func (m *Model) renderFooter() string {
	return headerStyle.Render("Nav: left/right  Scroll: up/down/pgup/pgdn  Quit: q")
}

func (m *Model) renderBody() string {
	if m.activeTab == tabDegrees {
		if len(m.report.Rows) == 0 {
			return "No degree artifacts found."
		}
		return tableMutedStyle.Render(m.degreeTable.View())
	}
	return m.viewports[m.activeTab].View()
}

func (m *Model) renderTabContents() {
	m.viewports[tabOverview].SetContent(renderOverview(m.report))
	m.viewports[tabConvergence].SetContent(renderConvergence(m.report, m.plotHeight))
}

func renderOverview(r report.Report) string {
	var buf bytes.Buffer
	if err := report.RenderSummary(&buf, r); err != nil {
		return fmt.Sprintf("Failed to render summary: %v", err)
	}
	return strings.TrimRight(buf.String(), "\n")
}

func renderConvergence(r report.Report, plotHeight int) string {
	var buf bytes.Buffer
	if err := report.RenderConvergence(&buf, r, plotHeight); err != nil {
		return fmt.Sprintf("Failed to render convergence: %v", err)
	}
	return strings.TrimRight(buf.String(), "\n")
}

func buildDegreeTable(r report.Report) table.Model {
	columns := []table.Column{
		{Title: "Degree", Width: 6},
		{Title: "L2 Error", Width: 10},
		{Title: "Band", Width: 10},
		{Title: "Points", Width: 6},
		{Title: "Min Dist", Width: 9},
		{Title: "Mean Dist", Width: 9},
		{Title: "Recovered", Width: 9},
		{Title: "Outliers", Width: 8},
		{Title: "Quality", Width: 17},
	}
	rows := make([]table.Row, 0, len(r.Rows))
	for _, row := range r.Rows {
		minDist, meanDist, recovered := "-", "-", "-"
		if row.Recovery != nil {
			minDist = fmt.Sprintf("%.3g", row.Recovery.MinDistance)
			meanDist = fmt.Sprintf("%.3g", row.Recovery.MeanDistance)
			recovered = fmt.Sprintf("%d/%d", row.Recovery.NumRecoveries, len(row.Recovery.AllDistances))
		}
		rows = append(rows, table.Row{
			strconv.Itoa(row.Degree),
			fmt.Sprintf("%.3g", row.L2Error),
			row.Band.String(),
			strconv.Itoa(row.Points),
			minDist,
			meanDist,
			recovered,
			strconv.Itoa(row.Distribution.NumOutliers),
			row.Distribution.Quality.String(),
		})
	}
	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithHeight(maxInt(1, len(rows))),
	)
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("#4A4A4A")).
		Foreground(lipgloss.Color("#C0C0C0")).
		Bold(true).
		Padding(0, 1).
		PaddingLeft(0)
	styles.Cell = styles.Cell.
		Padding(0, 1).
		PaddingLeft(0)
	styles.Selected = styles.Cell.
		Foreground(lipgloss.Color("#F0F0F0")).
		Bold(true)
	t.SetStyles(styles)
	return t
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func padLine(line string, width int) string {
	lineWidth := lipgloss.Width(line)
	if lineWidth < width {
		return line + strings.Repeat(" ", width-lineWidth)
	}
	return line
}

func fitLines(s string, width, height int) string {
	if width <= 0 || height <= 0 {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = padLine(line, width)
	}
	if len(lines) > height {
		lines = lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, strings.Repeat(" ", width))
	}
	return strings.Join(lines, "\n")
}

func truncateLine(s string, width int) string {
	if width <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	if width <= 3 {
		return string(runes[:width])
	}
	return string(runes[:width-3]) + "..."
}
