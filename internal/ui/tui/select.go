package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/klauern/agenttransfer/internal/compare"
	"github.com/klauern/agenttransfer/internal/model"
)

// SelectAction represents the action chosen in the import selection.
type SelectAction int

const (
	// SelectActionNone means the user quit without importing.
	SelectActionNone SelectAction = iota
	// SelectActionImport means the user confirmed the selection.
	SelectActionImport
)

// SelectResult contains the outcome of the import selection.
type SelectResult struct {
	Action   SelectAction
	Selected []*model.Comparison
}

type selectPhase int

const (
	phaseSelect selectPhase = iota
	phaseConfirm
)

type selectKeyMap struct {
	Toggle    key.Binding
	ToggleAll key.Binding
	Select    key.Binding
	Back      key.Binding
	Confirm   key.Binding
	Filter    key.Binding
	ClearFlt  key.Binding
	Help      key.Binding
	Quit      key.Binding
}

func defaultSelectKeyMap() selectKeyMap {
	return selectKeyMap{
		Toggle: key.NewBinding(
			key.WithKeys(" ", "tab"),
			key.WithHelp("space/tab", "toggle"),
		),
		ToggleAll: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "toggle all"),
		),
		Select: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "review"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc", "backspace"),
			key.WithHelp("esc", "back"),
		),
		Confirm: key.NewBinding(
			key.WithKeys("y", "Y"),
			key.WithHelp("y", "confirm import"),
		),
		Filter: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "filter"),
		),
		ClearFlt: key.NewBinding(
			key.WithKeys("ctrl+u"),
			key.WithHelp("ctrl+u", "clear filter"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// PreviewSelectModel lets the user pick which archive items to import.
// New and changed items start selected; identical items start cleared.
type PreviewSelectModel struct {
	table    table.Model
	preview  *compare.Preview
	items    []*model.Comparison
	filtered []*model.Comparison
	selected map[string]bool

	keys      selectKeyMap
	result    SelectResult
	phase     selectPhase
	filter    string
	filtering bool
	showHelp  bool
	width     int
	quitting  bool
}

var selectStyles = struct {
	Title       lipgloss.Style
	Help        lipgloss.Style
	Filter      lipgloss.Style
	FilterInput lipgloss.Style
	Confirm     lipgloss.Style
	Status      lipgloss.Style
	Detail      lipgloss.Style
	Path        lipgloss.Style
}{
	Title:       lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("6")).Padding(0, 1),
	Help:        lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
	Filter:      lipgloss.NewStyle().Foreground(lipgloss.Color("6")),
	FilterInput: lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Bold(true),
	Confirm:     lipgloss.NewStyle().Foreground(lipgloss.Color("3")).Bold(true).Padding(1, 2),
	Status:      lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Padding(0, 1),
	Detail:      lipgloss.NewStyle().Foreground(lipgloss.Color("244")).Padding(0, 1),
	Path:        lipgloss.NewStyle().Foreground(lipgloss.Color("4")).Italic(true),
}

const descriptionWidth = 80

// NewPreviewSelectModel creates a selection over the comparisons of p.
func NewPreviewSelectModel(p *compare.Preview) PreviewSelectModel {
	m := PreviewSelectModel{
		preview:  p,
		items:    p.Comparisons,
		filtered: p.Comparisons,
		selected: make(map[string]bool, len(p.Comparisons)),
		keys:     defaultSelectKeyMap(),
		phase:    phaseSelect,
	}
	for _, c := range p.Comparisons {
		m.selected[c.Item.ID()] = c.Status != model.StatusIdentical
	}
	m.initTable()
	return m
}

// Init implements tea.Model.
func (m PreviewSelectModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m PreviewSelectModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.table.SetHeight(max(msg.Height-12, 5))
		return m, nil

	case tea.KeyMsg:
		if m.filtering {
			return m.updateFilter(msg)
		}
		if key.Matches(msg, m.keys.Quit) {
			m.quitting = true
			return m, tea.Quit
		}
		switch m.phase {
		case phaseSelect:
			return m.updateSelect(msg)
		case phaseConfirm:
			return m.updateConfirm(msg)
		}
	}
	return m, nil
}

func (m PreviewSelectModel) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.filtering = false
	case "esc":
		m.filter = ""
		m.filtering = false
		m.applyFilter()
	case "backspace":
		if len(m.filter) > 0 {
			m.filter = m.filter[:len(m.filter)-1]
			m.applyFilter()
		}
	default:
		if len(msg.String()) == 1 {
			m.filter += msg.String()
			m.applyFilter()
		}
	}
	return m, nil
}

func (m PreviewSelectModel) updateSelect(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Help):
		m.showHelp = !m.showHelp
		return m, nil

	case key.Matches(msg, m.keys.Filter):
		m.filtering = true
		return m, nil

	case key.Matches(msg, m.keys.ClearFlt):
		m.filter = ""
		m.applyFilter()
		return m, nil

	case key.Matches(msg, m.keys.Toggle):
		if c := m.current(); c != nil {
			k := c.Item.ID()
			m.selected[k] = !m.selected[k]
			m.table.SetRows(m.toRows(m.filtered))
		}
		return m, nil

	case key.Matches(msg, m.keys.ToggleAll):
		count := 0
		for _, c := range m.filtered {
			if m.selected[c.Item.ID()] {
				count++
			}
		}
		selectAll := count < len(m.filtered)
		for _, c := range m.filtered {
			m.selected[c.Item.ID()] = selectAll
		}
		m.table.SetRows(m.toRows(m.filtered))
		return m, nil

	case key.Matches(msg, m.keys.Select):
		if len(m.Selected()) > 0 {
			m.phase = phaseConfirm
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m PreviewSelectModel) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Confirm):
		m.result = SelectResult{Action: SelectActionImport, Selected: m.Selected()}
		m.quitting = true
		return m, tea.Quit
	case key.Matches(msg, m.keys.Back), msg.String() == "n", msg.String() == "N":
		m.phase = phaseSelect
	}
	return m, nil
}

func (m *PreviewSelectModel) initTable() {
	columns := []table.Column{
		{Title: " ", Width: 3},
		{Title: "Status", Width: 10},
		{Title: "Kind", Width: 6},
		{Title: "Scope", Width: 8},
		{Title: "Name", Width: 28},
		{Title: "Changes", Width: 14},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithRows(m.toRows(m.filtered)),
		table.WithFocused(true),
		table.WithHeight(15),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	m.table = t
}

func (m PreviewSelectModel) toRows(items []*model.Comparison) []table.Row {
	rows := make([]table.Row, len(items))
	for i, c := range items {
		checkbox := "[ ]"
		if m.selected[c.Item.ID()] {
			checkbox = "[✓]"
		}
		rows[i] = table.Row{
			checkbox,
			c.Status.Label(),
			c.Item.Kind.String(),
			c.Item.Scope.String(),
			truncateText(c.Item.Name, 28),
			truncateText(c.Summary, 14),
		}
	}
	return rows
}

func (m *PreviewSelectModel) applyFilter() {
	if m.filter == "" {
		m.filtered = m.items
	} else {
		var filtered []*model.Comparison
		lower := strings.ToLower(m.filter)
		for _, c := range m.items {
			if strings.Contains(strings.ToLower(c.Item.Name), lower) ||
				strings.Contains(strings.ToLower(c.Item.Description), lower) ||
				strings.Contains(c.Status.String(), lower) {
				filtered = append(filtered, c)
			}
		}
		m.filtered = filtered
	}
	m.table.SetRows(m.toRows(m.filtered))
	m.table.SetCursor(0)
}

func (m PreviewSelectModel) current() *model.Comparison {
	cursor := m.table.Cursor()
	if cursor >= 0 && cursor < len(m.filtered) {
		return m.filtered[cursor]
	}
	return nil
}

// Selected returns the selected comparisons in preview order, regardless
// of the active filter.
func (m PreviewSelectModel) Selected() []*model.Comparison {
	var out []*model.Comparison
	for _, c := range m.items {
		if m.selected[c.Item.ID()] {
			out = append(out, c)
		}
	}
	return out
}

// View implements tea.Model.
func (m PreviewSelectModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(selectStyles.Title.Render("Import from archive"))
	b.WriteString("\n")
	b.WriteString(selectStyles.Path.Render(m.preview.Archive))
	b.WriteString("\n\n")

	switch m.phase {
	case phaseSelect:
		b.WriteString(m.viewSelect())
	case phaseConfirm:
		b.WriteString(m.viewConfirm())
	}

	b.WriteString("\n")
	if m.showHelp {
		b.WriteString(m.renderFullHelp())
	} else {
		b.WriteString(m.renderShortHelp())
	}
	return b.String()
}

func (m PreviewSelectModel) viewSelect() string {
	var b strings.Builder

	if m.filter != "" || m.filtering {
		val := selectStyles.FilterInput.Render(m.filter)
		if m.filtering {
			val += "█"
		}
		b.WriteString(selectStyles.Filter.Render("Filter: ") + val + "\n\n")
	}

	b.WriteString(m.table.View())
	b.WriteString("\n")

	if c := m.current(); c != nil && c.Item.Description != "" {
		width := descriptionWidth
		if m.width > 0 {
			width = min(width, m.width-2)
		}
		b.WriteString(selectStyles.Detail.Render(formatDescription(c.Item.Description, width)))
		b.WriteString("\n")
	}

	status := fmt.Sprintf("%d of %d item(s) selected (%d new, %d changed, %d identical)",
		len(m.Selected()), len(m.items), m.preview.New, m.preview.Changed, m.preview.Identical)
	b.WriteString(selectStyles.Status.Render(status))
	return b.String()
}

func (m PreviewSelectModel) viewConfirm() string {
	var b strings.Builder
	selected := m.Selected()
	b.WriteString(selectStyles.Confirm.Render(fmt.Sprintf("Import %d item(s)? (y/n)", len(selected))))
	conflicts := 0
	for _, c := range selected {
		if c.Conflicting() {
			conflicts++
		}
	}
	if conflicts > 0 {
		b.WriteString("\n")
		b.WriteString(selectStyles.Status.Render(fmt.Sprintf("%d conflict(s) will need a decision", conflicts)))
	}
	b.WriteString("\n\n")
	for i, c := range selected {
		if i >= 10 {
			b.WriteString(fmt.Sprintf("  ... and %d more\n", len(selected)-10))
			break
		}
		b.WriteString(fmt.Sprintf("  • %s %s (%s)\n", c.Item.Kind, c.Item.Name, c.Status))
	}
	return b.String()
}

func (m PreviewSelectModel) renderShortHelp() string {
	var keys []string
	switch m.phase {
	case phaseSelect:
		keys = []string{"↑/↓ navigate", "space toggle", "a toggle all", "/ filter", "enter review", "? help", "q quit"}
	case phaseConfirm:
		keys = []string{"y confirm", "n/esc back", "q quit"}
	}
	return selectStyles.Help.Render(strings.Join(keys, " • "))
}

func (m PreviewSelectModel) renderFullHelp() string {
	help := `Navigation:
  ↑/k      Move up
  ↓/j      Move down

Selection:
  Space/Tab  Toggle current item
  a          Toggle all visible items
  /          Start filtering
  Ctrl+u     Clear filter

Flow:
  Enter    Review selection
  y        Confirm import
  n/Esc    Back to selection

General:
  ?        Toggle full help
  q        Quit without importing`
	return selectStyles.Help.Render(help)
}

// Result returns the result of the user interaction.
func (m PreviewSelectModel) Result() SelectResult {
	return m.result
}

// RunPreviewSelect runs the selection for p and returns the user's choice.
func RunPreviewSelect(p *compare.Preview) (SelectResult, error) {
	final, err := Run(NewPreviewSelectModel(p))
	if err != nil {
		return SelectResult{}, err
	}
	if m, ok := final.(PreviewSelectModel); ok {
		return m.Result(), nil
	}
	return SelectResult{}, nil
}
