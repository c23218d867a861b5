package cli

import (
	"fmt"
	"io"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// DiagramPickerModel is the bubbletea model for choosing a built-in diagram.
type DiagramPickerModel struct {
	Diagrams []diagramSummary
	Cursor   int
	Selected string
	Quit     bool
}

// NewDiagramPickerModel creates a picker over rows.
func NewDiagramPickerModel(rows []diagramSummary) DiagramPickerModel {
	return DiagramPickerModel{Diagrams: rows}
}

func (m DiagramPickerModel) Init() tea.Cmd {
	return nil
}

func (m DiagramPickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "q", "ctrl+c", "esc":
		m.Quit = true
		return m, tea.Quit
	case "up", "k":
		if m.Cursor > 0 {
			m.Cursor--
		}
	case "down", "j":
		if m.Cursor < len(m.Diagrams)-1 {
			m.Cursor++
		}
	case "enter":
		if len(m.Diagrams) > 0 {
			m.Selected = m.Diagrams[m.Cursor].Name
		}
		return m, tea.Quit
	}
	return m, nil
}

func (m DiagramPickerModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Diagram"))
	b.WriteString("\n")
	b.WriteString(StyleDim.Render("↑/↓ navigate  ⏎ render  q quit"))
	b.WriteString("\n\n")
	b.WriteString(diagramTable(m.Diagrams, m.Cursor))
	b.WriteString("\n\n")
	b.WriteString(StyleDim.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Diagrams))))
	b.WriteString("\n")

	return b.String()
}

// pickDiagram runs the picker on in/out and returns the chosen name, or ""
// if the user quit.
func pickDiagram(in io.Reader, out io.Writer) (string, error) {
	rows, err := summarize()
	if err != nil {
		return "", err
	}

	final, err := tea.NewProgram(NewDiagramPickerModel(rows), tea.WithInput(in), tea.WithOutput(out)).Run()
	if err != nil {
		return "", fmt.Errorf("diagram picker: %w", err)
	}
	m, ok := final.(DiagramPickerModel)
	if !ok || m.Quit {
		return "", nil
	}
	return m.Selected, nil
}
