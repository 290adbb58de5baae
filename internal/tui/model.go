package tui

import (
	"fmt"
	"strconv"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	humanize "github.com/dustin/go-humanize"

	"github.com/varalys/scour/internal/dupes"
	"github.com/varalys/scour/internal/types"
)

var (
	tableBorderStyle = lipgloss.NewStyle().
				BorderStyle(lipgloss.NormalBorder()).
				BorderForeground(lipgloss.Color("240"))

	detailPaneBorderStyle = lipgloss.NewStyle().
				BorderStyle(lipgloss.NormalBorder()).
				BorderForeground(lipgloss.Color("240"))

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("6")).
			Bold(true).
			Padding(0, 1)

	originalStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("10")).
			Bold(true)

	wastedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9")).
			Bold(true)

	statusStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("236")).
			Foreground(lipgloss.Color("7"))

	emptyTextStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("15")).
			Align(lipgloss.Center)
)

// RescanFunc re-runs the duplicate scan, forwarding progress snapshots to
// onProgress as it goes.
type RescanFunc func(onProgress func(*types.DuplicateProgress)) (types.DuplicateResult, error)

type scanProgressMsg *types.DuplicateProgress

type scanDoneMsg struct {
	result types.DuplicateResult
	err    error
}

type statusMsg string

// Model is the state of the duplicate-group browser.
type Model struct {
	table    table.Model
	viewport viewport.Model
	spinner  spinner.Model
	progress progress.Model

	result   types.DuplicateResult
	rescan   RescanFunc
	progCh   chan *types.DuplicateProgress
	scanning bool
	percent  float64
	phase    string
	ready    bool
	quitting bool
	status   string
	width    int
	height   int
}

// NewModel builds the browser over an existing result.
func NewModel(result types.DuplicateResult, rescan RescanFunc) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot

	columns := []table.Column{
		{Title: "#", Width: 4},
		{Title: "Files", Width: 6},
		{Title: "Size", Width: 10},
		{Title: "Wasted", Width: 10},
		{Title: "Original", Width: 60},
	}
	t := table.New(
		table.WithColumns(columns),
		table.WithRows(groupRows(result.Groups)),
		table.WithFocused(true),
	)

	return Model{
		table:    t,
		spinner:  sp,
		progress: progress.New(progress.WithDefaultGradient()),
		result:   result,
		rescan:   rescan,
	}
}

func groupRows(groups []types.DuplicateGroup) []table.Row {
	rows := make([]table.Row, len(groups))
	for i, g := range groups {
		orig := ""
		for _, f := range g.Files {
			if f.IsOriginal {
				orig = f.Path
			}
		}
		rows[i] = table.Row{
			strconv.Itoa(i + 1),
			strconv.Itoa(len(g.Files)),
			humanize.IBytes(uint64(g.Size)),
			humanize.IBytes(uint64(g.WastedSpace)),
			orig,
		}
	}
	return rows
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m Model) startRescan() (Model, tea.Cmd) {
	if m.scanning || m.rescan == nil {
		return m, nil
	}
	m.scanning = true
	m.percent = 0
	m.status = "scanning…"
	ch := make(chan *types.DuplicateProgress, 16)
	m.progCh = ch
	rescan := m.rescan
	runScan := func() tea.Msg {
		res, err := rescan(func(p *types.DuplicateProgress) {
			select {
			case ch <- p:
			default:
			}
		})
		close(ch)
		return scanDoneMsg{result: res, err: err}
	}
	return m, tea.Batch(runScan, listenProgress(ch), m.spinner.Tick)
}

func listenProgress(ch chan *types.DuplicateProgress) tea.Cmd {
	return func() tea.Msg {
		p, ok := <-ch
		if !ok {
			return nil
		}
		return scanProgressMsg(p)
	}
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.layout()
		m.refreshDetail()
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		case "r":
			return m.startRescan()
		case "c":
			return m.copySelectedPath()
		case "s":
			m.showSuggestions()
			return m, nil
		}

	case scanProgressMsg:
		if msg != nil {
			m.percent = msg.Percent / 100
			m.phase = msg.Phase
		}
		if m.progCh != nil {
			return m, listenProgress(m.progCh)
		}
		return m, nil

	case scanDoneMsg:
		m.scanning = false
		m.progCh = nil
		if msg.err != nil {
			m.status = "scan failed: " + msg.err.Error()
			return m, nil
		}
		m.result = msg.result
		m.table.SetRows(groupRows(m.result.Groups))
		m.table.SetCursor(0)
		m.refreshDetail()
		m.status = fmt.Sprintf("found %d groups, %s wasted",
			m.result.TotalGroups, humanize.IBytes(uint64(m.result.WastedSpace)))
		return m, nil

	case statusMsg:
		m.status = string(msg)
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	m.refreshDetail()
	return m, cmd
}

func (m *Model) layout() {
	tableHeight := m.height/2 - 3
	if tableHeight < 4 {
		tableHeight = 4
	}
	m.table.SetHeight(tableHeight)
	m.viewport = viewport.New(m.width-2, m.height-tableHeight-5)
}

func (m *Model) selectedGroup() (types.DuplicateGroup, bool) {
	i := m.table.Cursor()
	if i < 0 || i >= len(m.result.Groups) {
		return types.DuplicateGroup{}, false
	}
	return m.result.Groups[i], true
}

func (m *Model) refreshDetail() {
	g, ok := m.selectedGroup()
	if !ok {
		m.viewport.SetContent("")
		return
	}
	var s string
	s += fmt.Sprintf("hash %s\n", g.Hash[:min(16, len(g.Hash))])
	s += fmt.Sprintf("%d files × %s, %s\n\n",
		len(g.Files), humanize.IBytes(uint64(g.Size)),
		wastedStyle.Render(humanize.IBytes(uint64(g.WastedSpace))+" wasted"))
	for _, f := range g.Files {
		line := f.Path
		mod := time.Unix(f.ModifiedTime, 0).Format("2006-01-02 15:04")
		if f.IsOriginal {
			line = originalStyle.Render("* " + line + "  (original)")
		} else {
			line = "  " + line
		}
		s += fmt.Sprintf("%s  %s\n", line, mod)
	}
	m.viewport.SetContent(s)
}

func (m *Model) showSuggestions() {
	g, ok := m.selectedGroup()
	if !ok {
		return
	}
	suggested := dupes.SuggestDeletions(g)
	var s string
	s += "suggested deletions (original always kept):\n\n"
	for _, p := range suggested {
		s += "  " + p + "\n"
	}
	m.viewport.SetContent(s)
}

// View implements tea.Model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return "loading…"
	}

	title := titleStyle.Render("scour — duplicate files")
	var body string
	if len(m.result.Groups) == 0 && !m.scanning {
		body = emptyTextStyle.Width(m.width).Render("\nno duplicate groups — press r to rescan, q to quit\n")
	} else {
		body = tableBorderStyle.Render(m.table.View()) + "\n" +
			detailPaneBorderStyle.Render(m.viewport.View())
	}

	status := m.status
	if m.scanning {
		status = fmt.Sprintf("%s %s %s", m.spinner.View(), m.phase,
			m.progress.ViewAs(m.percent))
	}
	bar := statusStyle.Width(m.width).Render(
		" " + status + "  [r] rescan  [c] copy path  [s] suggestions  [q] quit")

	return title + "\n" + body + "\n" + bar
}
