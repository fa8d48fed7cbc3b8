package cli

import (
	"github.com/spf13/cobra"

	"github.com/ytget/movie-editor/internal/catalog"
)

func newProjectsCmd(a *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "projects",
		Short: "List known projects, most recently saved first",
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := catalog.Open(cmd.Context(), a.projectsDir())
			if err != nil {
				return writeErr(cmd, err)
			}
			defer cat.Close()

			entries, err := cat.List(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			if entries == nil {
				entries = []catalog.Entry{}
			}
			return writeOut(cmd, a, map[string]any{"data": entries})
		},
	}
	return cmd
}
