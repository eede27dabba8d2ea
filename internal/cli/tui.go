package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// List styles
var (
	listDimStyle = lipgloss.NewStyle().Foreground(colorDim)
)

// FamilyRow is one entry in the interactive family list.
type FamilyRow struct {
	Hash   string
	Nodes  int
	Links  int
	Status string // "fresh", "stale" or "missing"
	Score  float64
	Lanes  int
}

// FamilyListModel is the bubbletea model for interactive family selection.
type FamilyListModel struct {
	Families []FamilyRow
	Cursor   int
	Selected *FamilyRow
	Height   int
	Offset   int
}

// NewFamilyListModel creates a new family list model.
func NewFamilyListModel(families []FamilyRow) FamilyListModel {
	return FamilyListModel{
		Families: families,
		Height:   15,
	}
}

func (m FamilyListModel) Init() tea.Cmd {
	return nil
}

func (m FamilyListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Families)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "enter":
			row := m.Families[m.Cursor]
			m.Selected = &row
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 6
		if m.Height < 5 {
			m.Height = 5
		}
	}
	return m, nil
}

func (m FamilyListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Family"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ select  q quit"))
	b.WriteString("\n\n")

	end := m.Offset + m.Height
	if end > len(m.Families) {
		end = len(m.Families)
	}

	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		f := m.Families[i]

		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}

		score := "-"
		lanes := "-"
		if f.Status != "missing" {
			score = fmt.Sprintf("%.2f", f.Score)
			lanes = fmt.Sprint(f.Lanes)
		}

		rows = append(rows, []string{cursor, shortHash(f.Hash), fmt.Sprint(f.Nodes), fmt.Sprint(f.Links), lanes, score, f.Status})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Family", "Nodes", "Links", "Lanes", "Score", "Layout").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}

			actualIdx := m.Offset + row
			if actualIdx >= len(m.Families) {
				return lipgloss.NewStyle()
			}
			f := m.Families[actualIdx]
			isCurrent := actualIdx == m.Cursor

			base := lipgloss.NewStyle()
			if col == 6 {
				switch f.Status {
				case "fresh":
					base = base.Foreground(colorGreen)
				case "stale":
					base = base.Foreground(colorYellow)
				default:
					base = base.Foreground(colorDim)
				}
			}
			if isCurrent {
				return base.Foreground(colorCyan).Bold(true)
			}
			return base
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Families))))

	return b.String()
}
