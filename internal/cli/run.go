package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ytget/movie-editor/internal/catalog"
	"github.com/ytget/movie-editor/internal/download"
	"github.com/ytget/movie-editor/internal/editor"
	"github.com/ytget/movie-editor/internal/engine"
	"github.com/ytget/movie-editor/internal/export"
	"github.com/ytget/movie-editor/internal/model"
	"github.com/ytget/movie-editor/internal/platform"
	"github.com/ytget/movie-editor/internal/waveform"
)

// MaxRequestSize bounds a single input line
const MaxRequestSize = 1 << 20

func newRunCmd(a *App) *cobra.Command {
	var input string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Apply edit requests read as JSON lines and print events as JSON lines",
		Long: `Reads one request per line: {"op": "...", "project": "...", "args": {...}}.
Every event the editor emits is printed as one JSON line. After the input ends
the command waits until no request is pending for the idle grace period, then exits.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			in := cmd.InOrStdin()
			if input != "" && input != "-" {
				f, err := os.Open(input)
				if err != nil {
					return writeErr(cmd, err)
				}
				defer f.Close()
				in = f
			}
			return a.runSession(cmd, in)
		},
	}
	cmd.Flags().StringVarP(&input, "input", "i", "-", "Request file, - for stdin")
	return cmd
}

func (a *App) runSession(cmd *cobra.Command, in io.Reader) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	settings := a.Settings()

	cat, err := catalog.Open(ctx, a.projectsDir())
	if err != nil {
		return writeErr(cmd, err)
	}
	defer cat.Close()

	exporter := export.NewService()
	downloader := download.NewService()
	if a.Verbose {
		exporter.SetUpdateCallback(logJob)
		downloader.SetUpdateCallback(logJob)
	}

	idle := make(chan struct{}, 1)
	svc := editor.New(editor.Options{
		Engine:        engine.NewFFmpegMemory(exporter, waveform.Options{FrameDuration: settings.GetWaveformFrame()}),
		Catalog:       cat,
		Downloader:    downloader,
		Gallery:       platform.RegisterWithGallery,
		ExportDir:     a.ExportDir,
		ExportHeight:  settings.GetExportHeight(),
		ExportBitrate: settings.GetExportBitrate(),
		IdleGrace:     settings.GetIdleGrace(),
		OnIdle: func() {
			select {
			case idle <- struct{}{}:
			default:
			}
		},
		DisableThumbnailDedup: !settings.GetThumbnailDedup(),
	})

	out := newEventWriter(cmd.OutOrStdout(), a.PrettyJSON)
	defer out.close()
	svc.AddObserver(out)

	if err := svc.Start(ctx); err != nil {
		return writeErr(cmd, err)
	}

	readDone := make(chan error, 1)
	go func(done chan<- error) { done <- a.submitAll(svc, in, out) }(readDone)

	var readErr error
	eof := false
wait:
	for {
		select {
		case readErr = <-readDone:
			eof = true
			readDone = nil
			if svc.Pending() == 0 {
				break wait
			}
		case <-idle:
			if eof && svc.Pending() == 0 {
				break wait
			}
		case <-ctx.Done():
			break wait
		}
	}

	if err := svc.Stop(); err != nil {
		log.Printf("Editor stopped: %v", err)
	}
	if readErr != nil {
		return writeErr(cmd, readErr)
	}
	return nil
}

// submitAll submits every request line of in. Bad lines are reported on the
// output and skipped.
func (a *App) submitAll(svc *editor.Service, in io.Reader, out *eventWriter) error {
	sc := bufio.NewScanner(in)
	sc.Buffer(make([]byte, 0, 64*1024), MaxRequestSize)
	for sc.Scan() {
		line := sc.Bytes()
		if len(line) == 0 {
			continue
		}
		req, cmd, err := a.parseRequest(line)
		if err != nil {
			out.write(rejectedLine(req, err))
			continue
		}
		id, err := svc.Submit(cmd)
		if err != nil {
			out.write(rejectedLine(req, err))
			continue
		}
		out.write(eventLine{Event: "Submitted", Path: cmd.Project(), RequestID: id, Ref: req.Ref, Data: map[string]string{"op": req.Op}})
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("failed to read requests: %w", err)
	}
	return nil
}

func rejectedLine(req Request, err error) eventLine {
	return eventLine{Event: "Rejected", Ref: req.Ref, Final: true, Error: err.Error(), Data: map[string]string{"op": req.Op}}
}

func logJob(job *model.Job) {
	log.Printf("%s %s: %s %d%% (eta %s, elapsed %v)", job.Kind, job.DisplayTitle(), job.State, job.Percent, job.ETAString(), job.Elapsed().Round(time.Second))
}
