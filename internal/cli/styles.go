package cli

import (
	catppuccin "github.com/catppuccin/go"
	"github.com/charmbracelet/lipgloss"
)

// Styles renders explain output in a catppuccin flavor.
type Styles struct {
	flavor   catppuccin.Flavor
	renderer *lipgloss.Renderer
}

// NewStyles builds styles for the named flavor. The renderer decides the color
// profile; nil uses lipgloss's default (stdout).
func NewStyles(themeName string, r *lipgloss.Renderer) *Styles {
	if r == nil {
		r = lipgloss.DefaultRenderer()
	}
	return &Styles{flavor: flavorFromName(themeName), renderer: r}
}

func flavorFromName(name string) catppuccin.Flavor {
	switch name {
	case "latte":
		return catppuccin.Latte
	case "frappe":
		return catppuccin.Frappe
	case "macchiato":
		return catppuccin.Macchiato
	case "mocha":
		return catppuccin.Mocha
	default:
		return catppuccin.Mocha
	}
}

func (s *Styles) TitleStyle() lipgloss.Style {
	return s.renderer.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(s.flavor.Mauve().Hex))
}

func (s *Styles) DirStyle() lipgloss.Style {
	return s.renderer.NewStyle().
		Foreground(lipgloss.Color(s.flavor.Text().Hex))
}

func (s *Styles) MutedStyle() lipgloss.Style {
	return s.renderer.NewStyle().
		Foreground(lipgloss.Color(s.flavor.Overlay0().Hex))
}

func (s *Styles) WorkspaceStyle() lipgloss.Style {
	return s.renderer.NewStyle().
		Foreground(lipgloss.Color(s.flavor.Teal().Hex))
}

func (s *Styles) BoundaryStyle() lipgloss.Style {
	return s.renderer.NewStyle().
		Foreground(lipgloss.Color(s.flavor.Peach().Hex))
}

func (s *Styles) RootStyle() lipgloss.Style {
	return s.renderer.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(s.flavor.Green().Hex))
}

func (s *Styles) BoxStyle() lipgloss.Style {
	return s.renderer.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(s.flavor.Surface1().Hex)).
		Padding(0, 1)
}
