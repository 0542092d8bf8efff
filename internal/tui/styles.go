// ABOUTME: lipgloss styles and fixed copy for the Clara terminal chat
// ABOUTME: Title, speaker labels, status line, tips panel and help footer
package tui

import "github.com/charmbracelet/lipgloss"

const (
	// Title is the header shown above the conversation
	Title = "👩🏻‍⚕️ Clara | Smart Health Assistant"
	// Placeholder is the input hint
	Placeholder = "Ask Clara... 💬"
	// SpinnerText is shown while a reply is outstanding
	SpinnerText = "Checking with Clara..."
	// Disclaimer reminds users Clara is not a doctor
	Disclaimer = "I'm your Smart health Assistant, not a certified doctor, consult a professional for serious concerns 🌱"
)

// Tips are the quick tips shown in the tips panel
var Tips = []string{
	"Describe your symptoms (severity, duration, etc...)",
	"Ask about health tips (Healthy Snacks, Fatfree Foods..)",
	"Need urgent help? 🚨 Contact Professional!",
}

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39")).
			Padding(0, 1)

	userLabelStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212"))

	claraLabelStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("42"))

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")).
			Italic(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	tipsStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("39")).
			Padding(0, 1)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))
)
