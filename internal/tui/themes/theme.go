package themes

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/Veraticus/trash-scanner/internal/model"
)

// Theme defines the visual style for the TUI.
type Theme struct {
	Title         lipgloss.Style
	Subtitle      lipgloss.Style
	Normal        lipgloss.Style
	Bold          lipgloss.Style
	Italic        lipgloss.Style
	Selected      lipgloss.Style
	Highlighted   lipgloss.Style
	RoundedBox    lipgloss.Style
	StatusInfo    lipgloss.Style
	StatusError   lipgloss.Style
	StatusWarning lipgloss.Style
	StatusSuccess lipgloss.Style
	StatusPending lipgloss.Style
	ProgressFull  lipgloss.Style
	ProgressEmpty lipgloss.Style
	Primary       lipgloss.Color
	Secondary     lipgloss.Color
	Muted         lipgloss.Color
	Border        lipgloss.Color
	Foreground    lipgloss.Color
	Background    lipgloss.Color
	Info          lipgloss.Color
	Error         lipgloss.Color
	Warning       lipgloss.Color
	Success       lipgloss.Color
}

type palette struct {
	primary, secondary, success, warning, danger, info lipgloss.Color
	background, foreground, subtle, border, muted     lipgloss.Color
	onPrimary                                         lipgloss.Color
}

func build(p palette) Theme {
	return Theme{
		Primary:    p.primary,
		Secondary:  p.secondary,
		Success:    p.success,
		Warning:    p.warning,
		Error:      p.danger,
		Info:       p.info,
		Background: p.background,
		Foreground: p.foreground,
		Border:     p.border,
		Muted:      p.muted,

		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(p.primary).
			MarginBottom(1),
		Subtitle: lipgloss.NewStyle().
			Foreground(p.subtle).
			MarginBottom(1),
		Normal: lipgloss.NewStyle().
			Foreground(p.foreground),
		Bold: lipgloss.NewStyle().
			Bold(true).
			Foreground(p.foreground),
		Italic: lipgloss.NewStyle().
			Italic(true).
			Foreground(p.foreground),
		Selected: lipgloss.NewStyle().
			Background(p.primary).
			Foreground(p.onPrimary).
			Bold(true),
		Highlighted: lipgloss.NewStyle().
			Background(p.border).
			Foreground(p.foreground),
		RoundedBox: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(p.border).
			Padding(1, 2),
		ProgressFull: lipgloss.NewStyle().
			Foreground(p.primary),
		ProgressEmpty: lipgloss.NewStyle().
			Foreground(p.border),

		StatusSuccess: lipgloss.NewStyle().
			Foreground(p.success).
			Bold(true),
		StatusWarning: lipgloss.NewStyle().
			Foreground(p.warning).
			Bold(true),
		StatusError: lipgloss.NewStyle().
			Foreground(p.danger).
			Bold(true),
		StatusInfo: lipgloss.NewStyle().
			Foreground(p.info).
			Bold(true),
		StatusPending: lipgloss.NewStyle().
			Foreground(p.muted).
			Italic(true),
	}
}

// Default is the green recycling theme.
var Default = build(palette{
	primary:    lipgloss.Color("#16a34a"),
	secondary:  lipgloss.Color("#4ade80"),
	success:    lipgloss.Color("#10b981"),
	warning:    lipgloss.Color("#f59e0b"),
	danger:     lipgloss.Color("#ef4444"),
	info:       lipgloss.Color("#3b82f6"),
	background: lipgloss.Color("#f0fdf4"),
	foreground: lipgloss.Color("#14532d"),
	subtle:     lipgloss.Color("#4b5563"),
	border:     lipgloss.Color("#bbf7d0"),
	muted:      lipgloss.Color("#6b7280"),
	onPrimary:  lipgloss.Color("#ffffff"),
})

// Ocean is the blue theme.
var Ocean = build(palette{
	primary:    lipgloss.Color("#0284c7"),
	secondary:  lipgloss.Color("#38bdf8"),
	success:    lipgloss.Color("#14b8a6"),
	warning:    lipgloss.Color("#f59e0b"),
	danger:     lipgloss.Color("#e11d48"),
	info:       lipgloss.Color("#0ea5e9"),
	background: lipgloss.Color("#f0f9ff"),
	foreground: lipgloss.Color("#0c4a6e"),
	subtle:     lipgloss.Color("#475569"),
	border:     lipgloss.Color("#bae6fd"),
	muted:      lipgloss.Color("#64748b"),
	onPrimary:  lipgloss.Color("#ffffff"),
})

// Sunset is the warm orange theme.
var Sunset = build(palette{
	primary:    lipgloss.Color("#ea580c"),
	secondary:  lipgloss.Color("#fb923c"),
	success:    lipgloss.Color("#65a30d"),
	warning:    lipgloss.Color("#d97706"),
	danger:     lipgloss.Color("#dc2626"),
	info:       lipgloss.Color("#db2777"),
	background: lipgloss.Color("#fff7ed"),
	foreground: lipgloss.Color("#7c2d12"),
	subtle:     lipgloss.Color("#57534e"),
	border:     lipgloss.Color("#fed7aa"),
	muted:      lipgloss.Color("#78716c"),
	onPrimary:  lipgloss.Color("#ffffff"),
})

// Dark is the dark theme.
var Dark = build(palette{
	primary:    lipgloss.Color("#22c55e"),
	secondary:  lipgloss.Color("#86efac"),
	success:    lipgloss.Color("#10b981"),
	warning:    lipgloss.Color("#fbbf24"),
	danger:     lipgloss.Color("#f87171"),
	info:       lipgloss.Color("#60a5fa"),
	background: lipgloss.Color("#111827"),
	foreground: lipgloss.Color("#f9fafb"),
	subtle:     lipgloss.Color("#9ca3af"),
	border:     lipgloss.Color("#374151"),
	muted:      lipgloss.Color("#6b7280"),
	onPrimary:  lipgloss.Color("#111827"),
})

// Get returns the theme for a settings value. Unknown values get Default.
func Get(t model.Theme) Theme {
	switch t {
	case model.ThemeOcean:
		return Ocean
	case model.ThemeSunset:
		return Sunset
	case model.ThemeDark:
		return Dark
	default:
		return Default
	}
}

// RecyclableIcons maps recyclability to a badge.
var RecyclableIcons = map[model.Recyclable]string{
	model.RecyclableYes:         "♻",
	model.RecyclableNo:          "🗑",
	model.RecyclableConditional: "⚠",
}

// RecyclableIcon returns the badge for r.
func RecyclableIcon(r model.Recyclable) string {
	if icon, ok := RecyclableIcons[r]; ok {
		return icon
	}
	return "?"
}

// RecyclableStyle colors a recyclability value.
func (t Theme) RecyclableStyle(r model.Recyclable) lipgloss.Style {
	switch r {
	case model.RecyclableYes:
		return t.StatusSuccess
	case model.RecyclableConditional:
		return t.StatusWarning
	default:
		return t.StatusError
	}
}
