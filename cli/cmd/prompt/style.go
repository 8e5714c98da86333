package prompt

import "github.com/charmbracelet/lipgloss"

const (
	questionMark = "? "
	pointer      = "❯ "
	filterPrompt = "/ "
)

// Styles.
var (
	questionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("6")).
			Bold(true)
	messageStyle  = lipgloss.NewStyle().Bold(true)
	itemStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
	hintStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	answerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("4")).
			Bold(true)
	matchStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("4")).
			Underline(true)
)
