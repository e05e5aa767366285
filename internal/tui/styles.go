package tui

import "github.com/charmbracelet/lipgloss"

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7D56F4"))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#7D56F4")).
			Padding(1, 2)

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#5A4FCF"))

	cellStyle = lipgloss.NewStyle().
			Underline(true).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#04B575"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF4672"))

	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#767676"))

	totalStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7D56F4"))

	savedBadge   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FAFAFA")).Background(lipgloss.Color("#04B575")).Padding(0, 1)
	editingBadge = lipgloss.NewStyle().Foreground(lipgloss.Color("#1A1A1A")).Background(lipgloss.Color("#F5C542")).Padding(0, 1)
)

var categoryColors = map[string]lipgloss.Color{
	"camera":       lipgloss.Color("#4C8DF6"),
	"nvr":          lipgloss.Color("#A66CFF"),
	"cable":        lipgloss.Color("#04B575"),
	"accessory":    lipgloss.Color("#F5C542"),
	"installation": lipgloss.Color("#FF8C42"),
	"other":        lipgloss.Color("#9E9E9E"),
}

// renderCategory pads before colouring so columns stay aligned. Nested
// backend categories such as cameras/ip_cameras fall back to grey.
func renderCategory(c string, width int) string {
	color, ok := categoryColors[c]
	if !ok {
		color = categoryColors["other"]
	}
	return lipgloss.NewStyle().Foreground(color).Width(width).Render(c)
}
