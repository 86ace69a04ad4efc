package tui

import (
	"fmt"
	"hash/fnv"

	"github.com/charmbracelet/lipgloss"

	"github.com/fakeyudi/cliptag/internal/annotation"
)

// ── Styles ────────────

var (
	// Title bar at the very top
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("62")).
			Padding(0, 2)

	draftBadgeStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("16")).
			Background(lipgloss.Color("214")).
			Padding(0, 1)

	warnStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("16")).
			Background(lipgloss.Color("203")).
			Padding(0, 1)

	// Section heading inside the body
	sectionHeader = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("86"))

	// Key=value label
	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("33")).
			Bold(true)

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	timeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("178"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	statusBarStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("235")).
			Foreground(lipgloss.Color("245")).
			Padding(0, 1)

	// Timeline cells
	trackStyle     = lipgloss.NewStyle().Background(lipgloss.Color("236"))
	windowStyle    = lipgloss.NewStyle().Background(lipgloss.Color("238"))
	draftStyle     = lipgloss.NewStyle().Background(lipgloss.Color("214"))
	playheadStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15"))
	handleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	barLabelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	edgeCellMarker = "▏"

	// Selected row in the interval list and the label editor
	selectedRowStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("15")).
				Background(lipgloss.Color("237"))

	checkedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("82")).Bold(true)
)

// unlabeledColor is used for intervals without a posture.
const unlabeledColor = "#808080"

// PostureColor returns a stable colour for posture. Channels stay within
// 100-230 and at least one pair differs by more than 20 so no posture is
// rendered grey like an unlabeled interval.
func PostureColor(posture string) string {
	if posture == "" || posture == annotation.PostureUnlabeled {
		return unlabeledColor
	}
	for salt := uint32(0); ; salt++ {
		h := fnv.New32a()
		fmt.Fprintf(h, "%d:%s", salt, posture)
		sum := h.Sum32()
		r := 100 + int(sum&0xff)%131
		g := 100 + int(sum>>8&0xff)%131
		b := 100 + int(sum>>16&0xff)%131
		if abs(r-g) > 20 || abs(g-b) > 20 || abs(b-r) > 20 {
			return fmt.Sprintf("#%02x%02x%02x", r, g, b)
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func postureStyle(posture string) lipgloss.Style {
	return lipgloss.NewStyle().Background(lipgloss.Color(PostureColor(posture)))
}
