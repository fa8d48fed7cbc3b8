package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"github.com/spf13/cobra"

	"github.com/ytget/movie-editor/internal/config"
)

// AppID identifies the preferences store
const AppID = "com.ytget.movie-editor"

type App struct {
	ProjectsDir string
	ExportDir   string
	PrettyJSON  bool
	Verbose     bool

	// NewFyneApp opens the preferences store; tests swap in fyne's test app
	NewFyneApp func() fyne.App

	settings *config.Settings
}

func NewRootCmd() *cobra.Command {
	a := &App{NewFyneApp: func() fyne.App { return app.NewWithID(AppID) }}

	cmd := &cobra.Command{
		Use:          "movie-editor",
		Short:        "Headless movie project editor",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Apply edit requests from a file and print the resulting events
  movie-editor run --input edits.jsonl

  # Pipe requests on stdin
  echo '{"op":"create-project","project":"trip"}' | movie-editor run

  # List known projects, most recently saved first
  movie-editor projects
`),
	}

	cmd.PersistentFlags().StringVar(&a.ProjectsDir, "projects-dir", envOr("MOVIE_EDITOR_PROJECTS", ""), "Folder holding one subfolder per project (default: from settings)")
	cmd.PersistentFlags().StringVar(&a.ExportDir, "export-dir", envOr("MOVIE_EDITOR_EXPORTS", ""), "Folder receiving exported movies (default: the Movies folder)")
	cmd.PersistentFlags().BoolVar(&a.PrettyJSON, "pretty", false, "Pretty-print JSON output")
	cmd.PersistentFlags().BoolVarP(&a.Verbose, "verbose", "v", false, "Log export and download job progress")

	cmd.AddCommand(newRunCmd(a))
	cmd.AddCommand(newProjectsCmd(a))
	cmd.AddCommand(newThemesCmd(a))
	return cmd
}

// Settings returns the persisted settings, opening the store on first use
func (a *App) Settings() *config.Settings {
	if a.settings == nil {
		a.settings = config.NewSettings(a.NewFyneApp())
	}
	return a.settings
}

// projectsDir returns the folder projects live in
func (a *App) projectsDir() string {
	if a.ProjectsDir != "" {
		return a.ProjectsDir
	}
	return a.Settings().GetProjectsDirectory()
}

// projectPath resolves a project reference: absolute paths are kept, names
// live in the projects folder.
func (a *App) projectPath(ref string) string {
	if ref == "" || filepath.IsAbs(ref) {
		return ref
	}
	return filepath.Join(a.projectsDir(), ref)
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func writeOut(cmd *cobra.Command, a *App, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	if a.PrettyJSON {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}

func writeErr(cmd *cobra.Command, err error) error {
	fmt.Fprintln(cmd.ErrOrStderr(), err.Error())
	return err
}
