package tui

import "github.com/charmbracelet/lipgloss"

// Color palette.
var (
	colorRed       = lipgloss.Color("#ff5555")
	colorGreen     = lipgloss.Color("#50fa7b")
	colorYellow    = lipgloss.Color("#f1fa8c")
	colorBlue      = lipgloss.Color("#8be9fd")
	colorPurple    = lipgloss.Color("#bd93f9")
	colorDim       = lipgloss.Color("#6272a4")
	colorBgLight   = lipgloss.Color("#343746")
	colorFg        = lipgloss.Color("#f8f8f2")
	colorBorder    = lipgloss.Color("#44475a")
	colorHighlight = lipgloss.Color("#44475a")
)

// Style definitions.
var (
	// Score panel styles
	scorePanelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder).
			Padding(0, 1)

	scoreGoodStyle = lipgloss.NewStyle().
			Foreground(colorGreen).
			Bold(true)

	scoreWarnStyle = lipgloss.NewStyle().
			Foreground(colorYellow).
			Bold(true)

	scoreBadStyle = lipgloss.NewStyle().
			Foreground(colorRed).
			Bold(true)

	signalNameStyle = lipgloss.NewStyle().
			Foreground(colorFg)

	signalWeakStyle = lipgloss.NewStyle().
			Foreground(colorRed)

	barFillStyle = lipgloss.NewStyle().
			Foreground(colorPurple)

	barEmptyStyle = lipgloss.NewStyle().
			Foreground(colorDim)

	// Scene list styles
	scenePanelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder).
			Padding(0, 1)

	sceneIndexStyle = lipgloss.NewStyle().
			Foreground(colorDim).
			Width(4).
			Align(lipgloss.Right)

	hookLineStyle = lipgloss.NewStyle().
			Foreground(colorGreen).
			Bold(true)

	sceneLineStyle = lipgloss.NewStyle().
			Foreground(colorFg)

	sceneSelectedStyle = lipgloss.NewStyle().
				Foreground(colorFg).
				Background(colorHighlight)

	keywordStyle = lipgloss.NewStyle().
			Foreground(colorBlue)

	toneStyle = lipgloss.NewStyle().
			Foreground(colorYellow)

	titleStyle = lipgloss.NewStyle().
			Foreground(colorBlue).
			Bold(true).
			Padding(0, 0, 1, 0)

	exhaustedStyle = lipgloss.NewStyle().
			Foreground(colorRed).
			Bold(true)

	// Status bar
	statusBarStyle = lipgloss.NewStyle().
			Foreground(colorFg).
			Background(colorBgLight).
			Padding(0, 1)

	// Edit mode
	editHeaderStyle = lipgloss.NewStyle().
			Foreground(colorPurple).
			Bold(true).
			Padding(0, 0, 1, 0)

	// Help bar
	helpBarStyle = lipgloss.NewStyle().
			Foreground(colorDim)

	helpKeyStyle = lipgloss.NewStyle().
			Foreground(colorYellow)
)
