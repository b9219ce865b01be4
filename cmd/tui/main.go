package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"nexus2fasta/internal/fasta"
)

// dataFile is the FASTA file to browse; the first CLI argument overrides it.
var dataFile = "alignment.fasta"

// Colors for modern design
var (
	primaryColor   = lipgloss.Color("#7C3AED") // Purple
	secondaryColor = lipgloss.Color("#10B981") // Green
	accentColor    = lipgloss.Color("#F59E0B") // Amber
	surfaceColor   = lipgloss.Color("#1F2937") // Dark gray
	textColor      = lipgloss.Color("#F3F4F6") // Light gray
	mutedColor     = lipgloss.Color("#9CA3AF") // Muted gray
	borderColor    = lipgloss.Color("#374151") // Border gray
)

// Styles
var (
	containerStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(borderColor)

	titleStyle = lipgloss.NewStyle().
			Foreground(primaryColor).
			Bold(true).
			Align(lipgloss.Center)

	statusBarStyle = lipgloss.NewStyle().
			Foreground(textColor).
			Background(surfaceColor).
			Padding(0, 1)

	sequenceStyle = lipgloss.NewStyle().
			Foreground(textColor).
			Background(lipgloss.Color("#111827")).
			Padding(1).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(borderColor)

	labelStyle  = lipgloss.NewStyle().Foreground(mutedColor)
	lengthStyle = lipgloss.NewStyle().Foreground(secondaryColor).Bold(true)
	gcStyle     = lipgloss.NewStyle().Foreground(accentColor).Bold(true)
)

type listItem struct {
	record fasta.Record
}

func (i listItem) FilterValue() string {
	return i.record.Header
}

func (i listItem) Title() string {
	return i.record.Header
}

func (i listItem) Description() string {
	// Metadata line shown below the header in the selector list
	length := lengthStyle.Render(fmt.Sprintf("%d bp", len(i.record.Sequence)))
	gc := gcStyle.Render(fmt.Sprintf("GC: %.1f%%", gcContent(i.record.Sequence)))
	return labelStyle.Render("Length: ") + length + labelStyle.Render("    ") + gc
}

type mode int

const (
	modeSequence mode = iota
	modeComposition
	modeInfo
)

func (m mode) String() string {
	switch m {
	case modeSequence:
		return "🧬 Sequence"
	case modeComposition:
		return "📊 Composition"
	case modeInfo:
		return "📋 Info"
	default:
		return "Unknown"
	}
}

type model struct {
	list          list.Model
	records       []fasta.Record
	currentMode   mode
	showHelp      bool
	width         int
	height        int
	totalRecords  int
	selectedIndex int
}

func initialModel() model {
	records := loadRecords(dataFile)

	// Create list items
	items := make([]list.Item, len(records))
	for i, record := range records {
		items[i] = listItem{record: record}
	}

	// Create list
	l := list.New(items, list.NewDefaultDelegate(), 0, 0)
	l.Title = "FASTA Records"
	l.SetShowStatusBar(false)
	l.SetShowPagination(true)
	l.SetFilteringEnabled(true)

	return model{
		list:         l,
		records:      records,
		currentMode:  modeSequence,
		totalRecords: len(records),
	}
}

// loadRecords reads the FASTA file to browse. A missing or unreadable file
// yields an empty browser rather than an error.
func loadRecords(path string) []fasta.Record {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()
	return fasta.ParseFasta(f)
}

func (m model) Init() tea.Cmd {
	return nil
}

// cycleMode advances to the next view mode, wrapping around.
func (m model) cycleMode() model {
	m.currentMode = (m.currentMode + 1) % 3
	return m
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		// Calculate list dimensions (left panel takes 1/3 of width)
		listWidth := msg.Width / 3
		listHeight := msg.Height - 4 // Account for borders and status

		m.list.SetWidth(listWidth)
		m.list.SetHeight(listHeight)

		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit

		case "h":
			m.showHelp = !m.showHelp
			return m, nil

		case "tab":
			return m.cycleMode(), nil

		case "1":
			m.currentMode = modeSequence
			return m, nil

		case "2":
			m.currentMode = modeComposition
			return m, nil

		case "3":
			m.currentMode = modeInfo
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	m.selectedIndex = m.list.Index()
	return m, cmd
}

func (m model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	// Help modal overlay
	if m.showHelp {
		return m.renderHelpModal()
	}

	// Main layout
	leftPanel := m.renderLeftPanel()
	rightPanel := m.renderRightPanel()
	statusBar := m.renderStatusBar()

	main := lipgloss.JoinHorizontal(
		lipgloss.Top,
		leftPanel,
		rightPanel,
	)

	return lipgloss.JoinVertical(
		lipgloss.Left,
		main,
		statusBar,
	)
}

func (m model) renderLeftPanel() string {
	listWidth := m.width / 3

	listContainer := containerStyle.
		Width(listWidth - 2). // Account for padding
		Height(m.height - 4). // Account for status bar
		Render(m.list.View())

	return listContainer
}

func (m model) renderRightPanel() string {
	rightWidth := (m.width * 2) / 3

	if len(m.records) == 0 {
		return containerStyle.
			Width(rightWidth - 2).
			Height(m.height - 4).
			Render("No records available")
	}

	selectedItem := m.list.SelectedItem()
	if selectedItem == nil {
		return containerStyle.
			Width(rightWidth - 2).
			Height(m.height - 4).
			Render("No item selected")
	}

	record := selectedItem.(listItem).record

	header := titleStyle.Render(record.Header)

	length := lengthStyle.Render(fmt.Sprintf("%d bp", len(record.Sequence)))
	gc := gcStyle.Render(fmt.Sprintf("GC: %.1f%%", gcContent(record.Sequence)))
	metaStr := labelStyle.Render("Length: ") + length + labelStyle.Render("    ") + gc

	var content string
	switch m.currentMode {
	case modeSequence:
		content = m.renderSequence(record)
	case modeComposition:
		content = m.renderComposition(record)
	case modeInfo:
		content = m.renderInfo(record)
	}

	panelContent := lipgloss.JoinVertical(
		lipgloss.Left,
		header,
		metaStr,
		"",
		content,
	)

	return containerStyle.
		Width(rightWidth - 2).
		Height(m.height - 4).
		Render(panelContent)
}

// wrapWidth is the usable width of the right panel content area.
func (m model) wrapWidth() int {
	w := m.width*2/3 - 6 // Account for padding and borders
	if w <= 0 {
		w = 60
	}
	return w
}

// buildRightLines wraps a record's sequence to the right panel width.
func (m model) buildRightLines(rec fasta.Record) []string {
	seq := strings.ReplaceAll(rec.Sequence, "\n", "")
	seq = strings.ReplaceAll(seq, "\r", "")
	width := m.wrapWidth()
	var lines []string
	for start := 0; start < len(seq); start += width {
		end := start + width
		if end > len(seq) {
			end = len(seq)
		}
		lines = append(lines, seq[start:end])
	}
	return lines
}

func (m model) renderSequence(rec fasta.Record) string {
	if rec.Sequence == "" {
		return labelStyle.Render("No sequence available")
	}

	titleStr := lipgloss.NewStyle().
		Foreground(accentColor).
		Bold(true).
		Render("Sequence:")

	sequenceContent := sequenceStyle.Render(strings.Join(m.buildRightLines(rec), "\n"))

	return lipgloss.JoinVertical(
		lipgloss.Left,
		titleStr,
		"",
		sequenceContent,
	)
}

func (m model) renderComposition(rec fasta.Record) string {
	titleStr := lipgloss.NewStyle().
		Foreground(accentColor).
		Bold(true).
		Render("Base composition:")

	return lipgloss.JoinVertical(
		lipgloss.Left,
		titleStr,
		"",
		sequenceStyle.Render(strings.Join(compositionLines(rec.Sequence), "\n")),
	)
}

func (m model) renderInfo(rec fasta.Record) string {
	titleStr := lipgloss.NewStyle().
		Foreground(accentColor).
		Bold(true).
		Render("Record info:")

	lines := []string{
		fmt.Sprintf("Header: %s", rec.Header),
		fmt.Sprintf("Length: %d", len(rec.Sequence)),
		fmt.Sprintf("File:   %s", dataFile),
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		titleStr,
		"",
		sequenceStyle.Render(strings.Join(lines, "\n")),
	)
}

// compositionLines counts the residues of a nucleotide sequence.
func compositionLines(seq string) []string {
	var a, c, g, t, gaps, other int
	for _, r := range strings.ToUpper(seq) {
		switch r {
		case 'A':
			a++
		case 'C':
			c++
		case 'G':
			g++
		case 'T':
			t++
		case '-':
			gaps++
		default:
			other++
		}
	}
	lines := []string{
		fmt.Sprintf("A: %d", a),
		fmt.Sprintf("C: %d", c),
		fmt.Sprintf("G: %d", g),
		fmt.Sprintf("T: %d", t),
		fmt.Sprintf("Gaps:  %d", gaps),
		fmt.Sprintf("Other: %d", other),
	}
	if total := a + c + g + t; total > 0 {
		lines = append(lines, "", fmt.Sprintf("GC content: %.1f%%", float64(g+c)/float64(total)*100))
	}
	return lines
}

// gcContent is the GC percentage over the defined bases, gaps excluded.
func gcContent(seq string) float64 {
	var gc, total int
	for _, r := range strings.ToUpper(seq) {
		switch r {
		case 'G', 'C':
			gc++
			total++
		case 'A', 'T':
			total++
		}
	}
	if total == 0 {
		return 0
	}
	return float64(gc) / float64(total) * 100
}

func (m model) renderStatusBar() string {
	// Left side - navigation info
	leftInfo := fmt.Sprintf("📊 %d/%d records", m.selectedIndex+1, m.totalRecords)

	// Center - current mode
	centerInfo := fmt.Sprintf("Mode: %s", m.currentMode.String())

	// Right side - help hint
	rightInfo := "Press 'h' for help • 'q' to quit"

	// Calculate spacing
	totalUsed := len(leftInfo) + len(centerInfo) + len(rightInfo)
	spacing := m.width - totalUsed - 6 // Account for padding

	var statusContent string
	if spacing > 0 {
		leftSpacing := spacing / 2
		rightSpacing := spacing - leftSpacing

		statusContent = fmt.Sprintf("%s%s%s%s%s",
			leftInfo,
			strings.Repeat(" ", leftSpacing),
			centerInfo,
			strings.Repeat(" ", rightSpacing),
			rightInfo,
		)
	} else {
		// Fallback for narrow terminals
		statusContent = fmt.Sprintf("%s | %s", leftInfo, centerInfo)
	}

	return statusBarStyle.
		Width(m.width).
		Render(statusContent)
}

func (m model) renderHelpModal() string {
	helpContent := `🧬 FASTA Records Browser - Help

Navigation:
  ↑/↓, j/k     Navigate list
  /            Filter records
  Enter        Select record

View Modes:
  1            Show sequence
  2            Show base composition
  3            Show record info
  Tab          Cycle modes

General:
  h            Toggle this help
  q, Ctrl+C    Quit application

Current Mode: ` + m.currentMode.String() + `
Total Records: ` + fmt.Sprintf("%d", m.totalRecords) + `
`

	modalStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(primaryColor).
		Padding(1, 2).
		Background(surfaceColor).
		Foreground(textColor).
		Width(60).
		Align(lipgloss.Center)

	modal := modalStyle.Render(helpContent)

	return lipgloss.Place(
		m.width,
		m.height,
		lipgloss.Center,
		lipgloss.Center,
		modal,
	)
}

func main() {
	if len(os.Args) > 1 {
		dataFile = os.Args[1]
	}
	p := tea.NewProgram(initialModel(), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Printf("Error: %v", err)
		os.Exit(1)
	}
}
