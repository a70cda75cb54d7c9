package main

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/disintegration/imaging"
	"github.com/pkg/errors"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/esimov/facetrack"
	"github.com/esimov/facetrack/utils"
)

// trackOptions holds the flags of the track command.
type trackOptions struct {
	Source   string
	Dest     string
	Cascade  string
	Backend  string
	Matcher  string
	Width    int
	Fallback time.Duration
	Dwell    time.Duration
	FPS      float64
	Realtime bool
}

var trackOpts trackOptions

var trackCmd = &cobra.Command{
	Use:   "track",
	Short: "Track a face over a sequence of image frames",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTrack(cmd, trackOpts)
	},
}

func init() {
	trackCmd.Flags().StringVar(&trackOpts.Source, "in", "", "Directory containing the frames, processed in file name order")
	trackCmd.Flags().StringVar(&trackOpts.Dest, "out", "", "Directory where the annotated frames are saved")
	trackCmd.Flags().StringVar(&trackOpts.Cascade, "cc", "", "Cascade classifier file or URL")
	trackCmd.Flags().StringVar(&trackOpts.Backend, "backend", "pigo", "Detector backend: pigo or haar")
	trackCmd.Flags().StringVar(&trackOpts.Matcher, "matcher", "native", "Template matcher used when the face is lost: native or opencv")
	trackCmd.Flags().IntVar(&trackOpts.Width, "width", facetrack.DefaultResizedWidth, "Working frame width")
	trackCmd.Flags().DurationVar(&trackOpts.Fallback, "fallback", facetrack.DefaultFallbackTimeout, "Maximum template matching duration")
	trackCmd.Flags().DurationVar(&trackOpts.Dwell, "dwell", facetrack.DefaultDwellTime, "Time a face has to stay in place before it is confirmed")
	trackCmd.Flags().Float64Var(&trackOpts.FPS, "fps", 30, "Frame rate of the sequence")
	trackCmd.Flags().BoolVar(&trackOpts.Realtime, "realtime", false, "Use the wall clock instead of the sequence frame rate")

	trackCmd.MarkFlagRequired("in")
	trackCmd.MarkFlagRequired("cc")
	rootCmd.AddCommand(trackCmd)
}

func runTrack(cmd *cobra.Command, opts trackOptions) error {
	logger, err := newLogger(debug)
	if err != nil {
		return errors.Wrap(err, "unable to create the logger")
	}
	defer logger.Sync()

	det, closeDet, err := newDetector(opts.Backend, opts.Cascade)
	if err != nil {
		return err
	}
	defer closeDet()

	paths, err := facetrack.ListFrames(opts.Source)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return errors.Errorf("no supported frames found in %s", opts.Source)
	}

	if opts.Dest != "" {
		if err := os.MkdirAll(opts.Dest, 0755); err != nil {
			return errors.Wrap(err, "unable to create the destination directory")
		}
	}

	reloc, err := newRelocalizer(opts.Matcher)
	if err != nil {
		return err
	}

	var mock *clock.Mock
	trackerOpts := []facetrack.Option{
		facetrack.WithLogger(logger),
		facetrack.WithRelocalizer(reloc),
	}
	if !opts.Realtime {
		mock = clock.NewMock()
		trackerOpts = append(trackerOpts, facetrack.WithClock(mock))
	}

	tracker, err := facetrack.NewTracker(det, facetrack.Config{
		ResizedWidth:    opts.Width,
		FallbackTimeout: opts.Fallback,
		DwellTime:       opts.Dwell,
	}, trackerOpts...)
	if err != nil {
		return err
	}

	var bar *progressbar.ProgressBar
	if term.IsTerminal(int(os.Stderr.Fd())) {
		bar = progressbar.NewOptions(len(paths),
			progressbar.OptionSetDescription(utils.DecorateText("⚡ FACETRACK", utils.StatusMessage)),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionShowCount(),
		)
	}

	out := bufio.NewWriter(cmd.OutOrStdout())
	defer out.Flush()

	var found int
	start := time.Now()

	err = facetrack.Replay(cmd.Context(), tracker, paths, opts.FPS, mock, func(res facetrack.Result) error {
		if res.Found {
			found++
		}
		fmt.Fprintln(out, formatResult(res))

		if opts.Dest != "" {
			name := strings.TrimSuffix(filepath.Base(res.Path), filepath.Ext(res.Path)) + ".png"
			annotated := facetrack.Annotate(res.Frame, res.Face, res.Position, res.State)
			if err := imaging.Save(annotated, filepath.Join(opts.Dest, name)); err != nil {
				return errors.Wrapf(err, "unable to save %s", name)
			}
		}
		if bar != nil {
			bar.Add(1)
		}
		return nil
	})
	if bar != nil {
		bar.Finish()
	}
	if err != nil {
		return err
	}

	logger.Info("sequence processed",
		zap.Int("frames", len(paths)),
		zap.Int("found", found),
	)
	fmt.Fprintf(os.Stderr, "\nTracked the face in %s of %d frames. Execution time: %s\n",
		utils.DecorateText(fmt.Sprintf("%d", found), utils.SuccessMessage),
		len(paths),
		utils.DecorateText(utils.FormatTime(time.Since(start)), utils.SuccessMessage),
	)
	return nil
}

// newDetector builds the detector backend. The cascade may be a local file or an URL.
func newDetector(backend, cascade string) (facetrack.Detector, func(), error) {
	closeFn := func() {}
	if utils.IsValidUrl(cascade) {
		f, err := utils.DownloadFile(cascade)
		if err != nil {
			return nil, closeFn, errors.Wrap(err, "failed to download the cascade file")
		}
		f.Close()
		cascade = f.Name()
		closeFn = func() { os.Remove(f.Name()) }
	}

	switch backend {
	case "pigo":
		det, err := facetrack.LoadPigoDetector(cascade, facetrack.DefaultPigoConfig())
		if err != nil {
			closeFn()
			return nil, func() {}, err
		}
		return det, closeFn, nil
	case "haar":
		det, err := facetrack.NewHaarDetector(cascade)
		if err != nil {
			closeFn()
			return nil, func() {}, err
		}
		return det, func() {
			det.Close()
			closeFn()
		}, nil
	}
	closeFn()
	return nil, func() {}, errors.Wrapf(facetrack.ErrInvalidConfig, "unknown detector backend %q", backend)
}

// newRelocalizer returns the template matcher named by matcher.
func newRelocalizer(matcher string) (facetrack.Relocalizer, error) {
	switch matcher {
	case "native":
		return facetrack.RelocalizerFunc(facetrack.Match), nil
	case "opencv":
		// Builds without OpenCV report the missing backend even for nil images.
		if _, _, err := facetrack.MatchOpenCV(nil, nil); errors.Is(err, facetrack.ErrBackendUnavailable) {
			return nil, err
		}
		return facetrack.RelocalizerFunc(facetrack.MatchOpenCV), nil
	}
	return nil, errors.Wrapf(facetrack.ErrInvalidConfig, "unknown template matcher %q", matcher)
}

// formatResult renders one result as: index,file,found,x,y,left,top,width,height,state
func formatResult(res facetrack.Result) string {
	return fmt.Sprintf("%d,%s,%t,%d,%d,%s,%s",
		res.Index,
		filepath.Base(res.Path),
		res.Found,
		res.Position.X, res.Position.Y,
		utils.FormatRect(res.Face),
		res.State,
	)
}
