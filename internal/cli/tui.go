package cli

import (
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/dnamaps/arlequin/pkg/figure"
	"github.com/dnamaps/arlequin/pkg/render"
)

// List styles
var (
	listTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listDimStyle   = lipgloss.NewStyle().Foreground(colorDim)
)

// PanelListModel is the bubbletea model for interactive pair-panel
// selection. It lists every coordinate pair of a correlation figure; the
// selected panel is written out as its own SVG.
type PanelListModel struct {
	Figure   *figure.Correlation
	Cursor   int
	Selected *int
	Height   int
	Offset   int
}

// NewPanelListModel creates a new panel list model.
func NewPanelListModel(f *figure.Correlation) PanelListModel {
	return PanelListModel{
		Figure: f,
		Cursor: 0,
		Height: 15,
		Offset: 0,
	}
}

func (m PanelListModel) Init() tea.Cmd {
	return nil
}

func (m PanelListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
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
			if m.Cursor < len(m.Figure.Panels)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "enter":
			idx := m.Cursor
			m.Selected = &idx
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

func (m PanelListModel) View() string {
	var b strings.Builder

	b.WriteString(listTitleStyle.Render("Select Pair Panel"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ write SVG  q quit"))
	b.WriteString("\n\n")

	end := m.Offset + m.Height
	if end > len(m.Figure.Panels) {
		end = len(m.Figure.Panels)
	}

	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		p := m.Figure.Panels[i]

		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}

		size := fmt.Sprintf("%d×%d", len(p.RowUnits), len(p.ColUnits))
		self := ""
		if p.RowCoordinate == p.ColCoordinate {
			self = "self"
		}
		rows = append(rows, []string{cursor, p.RowCoordinate, p.ColCoordinate, size, self})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Rows", "Columns", "Units", "").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			actualIdx := m.Offset + row
			if actualIdx == m.Cursor {
				return lipgloss.NewStyle().Foreground(colorGreen).Bold(true)
			}
			if col >= 3 {
				return lipgloss.NewStyle().Foreground(colorDim)
			}
			return lipgloss.NewStyle().Foreground(colorWhite)
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Figure.Panels))))
	return b.String()
}

// browsePanels runs the interactive panel browser and writes the selected
// panel, if any, next to base.
func browsePanels(f *figure.Correlation, base string, cell float64) error {
	p := tea.NewProgram(NewPanelListModel(f))
	final, err := p.Run()
	if err != nil {
		return err
	}
	m, ok := final.(PanelListModel)
	if !ok || m.Selected == nil {
		return nil
	}

	panel := f.Panels[*m.Selected]
	path := fmt.Sprintf("%s_%s_%s.svg", base, panel.RowCoordinate, panel.ColCoordinate)
	data := render.RenderPanelSVG(panel, f.Scale, render.WithCell(cell))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return err
	}
	printFile(path)
	return nil
}
