package cli

import (
	"github.com/spf13/cobra"

	"github.com/ytget/movie-editor/internal/engine"
)

func newThemesCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "themes",
		Short: "List the built-in themes",
		RunE: func(cmd *cobra.Command, args []string) error {
			type theme struct {
				ID   string `json:"id"`
				Name string `json:"name"`
			}
			var out []theme
			for _, t := range engine.Themes() {
				out = append(out, theme{ID: t.ID, Name: t.Name})
			}
			return writeOut(cmd, a, map[string]any{"data": out, "default": a.Settings().GetDefaultTheme()})
		},
	}
}
