// Package cli provides styled line-mode terminal output for the commands
// that do not open the full-screen interface.
package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Veraticus/trash-scanner/internal/i18n"
	"github.com/Veraticus/trash-scanner/internal/model"
)

var (
	// PrimaryColor is the main theme color (recycling green).
	PrimaryColor = lipgloss.Color("#16A34A")
	// SuccessColor indicates successful operations.
	SuccessColor = lipgloss.Color("#10B981")
	// WarningColor indicates warnings or caution messages.
	WarningColor = lipgloss.Color("#F59E0B")
	// ErrorColor indicates errors or failure messages.
	ErrorColor = lipgloss.Color("#EF4444")
	// InfoColor indicates informational messages.
	InfoColor = lipgloss.Color("#3B82F6")
	// SubtleColor indicates less prominent text.
	SubtleColor = lipgloss.Color("#6B7280")

	// TitleStyle is used for section titles.
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(PrimaryColor).
			MarginBottom(1)

	// SuccessStyle formats success messages.
	SuccessStyle = lipgloss.NewStyle().Foreground(SuccessColor)

	// WarningStyle formats warning messages.
	WarningStyle = lipgloss.NewStyle().Foreground(WarningColor)

	// ErrorStyle formats error messages.
	ErrorStyle = lipgloss.NewStyle().Foreground(ErrorColor)

	// InfoStyle formats informational messages.
	InfoStyle = lipgloss.NewStyle().Foreground(InfoColor)

	// SubtleStyle formats less prominent text.
	SubtleStyle = lipgloss.NewStyle().Foreground(SubtleColor)

	// BoldStyle makes text bold.
	BoldStyle = lipgloss.NewStyle().Bold(true)

	// BoxStyle is used for bordered content boxes.
	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#BBF7D0")).
			Padding(0, 1)

	// PromptStyle is used for user prompts.
	PromptStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(PrimaryColor)
)

// Icons.
const (
	SuccessIcon = "✓"
	ErrorIcon   = "✗"
	WarningIcon = "⚠"
	InfoIcon    = "ℹ"
	RecycleIcon = "♻"
	BinIcon     = "🗑"
)

// FormatSuccess formats a success message with icon.
func FormatSuccess(message string) string {
	return SuccessStyle.Render(SuccessIcon + " " + message)
}

// FormatError formats an error message with icon.
func FormatError(message string) string {
	return ErrorStyle.Render(ErrorIcon + " " + message)
}

// FormatWarning formats a warning message with icon.
func FormatWarning(message string) string {
	return WarningStyle.Render(WarningIcon + " " + message)
}

// FormatInfo formats an info message with icon.
func FormatInfo(message string) string {
	return InfoStyle.Render(InfoIcon + " " + message)
}

// FormatTitle formats a title with the recycling icon.
func FormatTitle(title string) string {
	return TitleStyle.Render(RecycleIcon + " " + title)
}

// FormatPrompt formats a prompt message.
func FormatPrompt(prompt string) string {
	return PromptStyle.Render(prompt + " → ")
}

// RenderBox renders content in a styled box.
func RenderBox(title, content string) string {
	boxTitle := TitleStyle.UnsetMargins().Render(title)
	return BoxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, boxTitle, content))
}

// FormatItem renders one classified item as a card with localized labels.
func FormatItem(item model.WasteInfo, loc *i18n.Localizer) string {
	icon := BinIcon
	style := ErrorStyle
	switch item.Recyclable {
	case model.RecyclableYes:
		icon, style = RecycleIcon, SuccessStyle
	case model.RecyclableConditional:
		icon, style = WarningIcon, WarningStyle
	}

	lines := []string{
		fmt.Sprintf("%s: %s", loc.T("result.material"), item.Material),
		fmt.Sprintf("%s: %s", loc.T("result.recyclable"), style.Render(loc.T("result.recyclableValue."+string(item.Recyclable)))),
		fmt.Sprintf("%s: %s", loc.T("result.instructions"), item.DisposalInstructions),
	}
	if item.FunFact != "" {
		lines = append(lines, SubtleStyle.Render(loc.T("result.funFact")+" "+item.FunFact))
	}
	if item.ImageURL != "" {
		lines = append(lines, SubtleStyle.Render(item.ImageURL))
	}
	return RenderBox(icon+" "+item.WasteType, strings.Join(lines, "\n"))
}
