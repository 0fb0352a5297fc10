package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mpvsource/mpvsource/color"
	"github.com/mpvsource/mpvsource/filesystem"
	"github.com/mpvsource/mpvsource/host"
	"github.com/mpvsource/mpvsource/icon"
	"github.com/mpvsource/mpvsource/key"
	"github.com/mpvsource/mpvsource/log"
	"github.com/mpvsource/mpvsource/source"
	"github.com/mpvsource/mpvsource/style"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"
)

const statusEvery = time.Second

var errPlaylistEmpty = errors.New("playlist is empty")

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().IntP("start", "s", 0, "Playlist index to start from")
	runCmd.Flags().StringP("audio-out", "o", "", "Write the paced audio as raw f32le stereo to this file")
	runCmd.Flags().Bool("auto-fps", false, "Match the output frame rate to each item")
	runCmd.Flags().Bool("no-save", false, "Do not persist the playlist when done")
	runCmd.Flags().BoolP("quiet", "q", false, "Do not print playback status")
	runCmd.Flags().Bool("log", false, "Write logs to stderr")
}

var runCmd = &cobra.Command{
	Use:   "run [paths...]",
	Short: "Play the saved playlist, plus any given files, through a headless host",
	Long: "Host a media source without presentation: frames are counted, audio can be dumped,\n" +
		"and the playlist plays to its end. Given paths are appended to the saved playlist.",
	Run: func(cmd *cobra.Command, args []string) {
		var (
			start    = lo.Must(cmd.Flags().GetInt("start"))
			audioOut = lo.Must(cmd.Flags().GetString("audio-out"))
			noSave   = lo.Must(cmd.Flags().GetBool("no-save"))
			quiet    = lo.Must(cmd.Flags().GetBool("quiet"))
		)

		if lo.Must(cmd.Flags().GetBool("log")) {
			viper.Set(key.LogsStderr, true)
			handleErr(log.Setup())
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		settings := loadSettings()
		if cmd.Flags().Changed("auto-fps") {
			settings.Set(source.KeyAutoFPS, lo.Must(cmd.Flags().GetBool("auto-fps")))
		}

		h := host.NewHeadlessFromConfig()
		if audioOut != "" {
			f, err := filesystem.API().Create(audioOut)
			handleErr(err)
			defer f.Close()
			h.DumpAudio(f)
		}

		s, err := source.Info.Create(h, settings)
		handleErr(err)

		// handleErr exits, so the source is torn down before reporting.
		err = playAll(ctx, h, s, args, start, quiet)
		s.Destroy()
		handleErr(err)

		if !quiet {
			stats := h.Stats()
			fmt.Printf("%s %d frames, %d audio frames\n", icon.Get(icon.Stopped), stats.Frames, stats.AudioFrames)
		}
		if !noSave {
			s.Save(settings)
			saveSettings(settings)
		}
	},
}

// playAll adds paths to the playlist and plays it from start.
func playAll(ctx context.Context, h *host.Headless, s *source.Source, paths []string, start int, quiet bool) error {
	if len(paths) > 0 {
		s.Add(ctx, paths...)
	}
	if s.Count() == 0 {
		return errPlaylistEmpty
	}
	if err := s.PlayIndex(start); err != nil {
		return err
	}
	return play(ctx, h, s, quiet)
}

// play ticks the source until the playlist ends or ctx is cancelled.
func play(ctx context.Context, h *host.Headless, s *source.Source, quiet bool) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	finished := make(chan struct{})
	lastStatus := time.Now()

	tick := func() {
		s.Tick()
		if done(s) {
			select {
			case <-finished:
			default:
				close(finished)
			}
			return
		}
		if !quiet && time.Since(lastStatus) >= statusEvery {
			lastStatus = time.Now()
			printStatus(s)
		}
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return h.Run(ctx, tick)
	})
	g.Go(func() error {
		select {
		case <-finished:
			log.Infof("playlist finished")
			cancel()
		case <-ctx.Done():
		}
		return nil
	})
	return g.Wait()
}

// done reports whether nothing is left to play: the playlist ran out, or the
// current item failed to load and playback went idle.
func done(s *source.Source) bool {
	if s.Loading() {
		return false
	}
	return s.CurrentIndex() < 0 || s.State() == host.StateStopped
}

func printStatus(s *source.Source) {
	item, err := s.Item(s.CurrentIndex())
	if err != nil {
		return
	}

	state := s.State()
	glyph := map[host.MediaState]icon.Icon{
		host.StatePlaying: icon.Playing,
		host.StatePaused:  icon.Paused,
		host.StateStopped: icon.Stopped,
	}[state]

	fmt.Printf("%s %s %s / %s\n",
		icon.Get(glyph),
		style.Fg(color.Purple)(item.Name),
		formatSeconds(s.TimePos()),
		formatSeconds(s.DurationSeconds()),
	)
}
