package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/mpvsource/mpvsource/color"
	"github.com/mpvsource/mpvsource/icon"
	"github.com/mpvsource/mpvsource/log"
	"github.com/mpvsource/mpvsource/playlist"
	"github.com/mpvsource/mpvsource/probe"
	"github.com/mpvsource/mpvsource/style"
	"github.com/mpvsource/mpvsource/util"
	"github.com/mpvsource/mpvsource/where"
	"github.com/muesli/reflow/indent"
	"github.com/muesli/reflow/wordwrap"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

const (
	defaultWidth = 80
	trackIndent  = 4
)

func init() {
	rootCmd.AddCommand(probeCmd)
	probeCmd.Flags().BoolP("json", "j", false, "Format the output as JSON")
	probeCmd.Flags().BoolP("refresh", "r", false, "Ignore the metadata cache for these files")
	probeCmd.SetOut(os.Stdout)
}

var probeCmd = &cobra.Command{
	Use:   "probe paths...",
	Short: "Print duration, frame rate and tracks of media files",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if lo.Must(cmd.Flags().GetBool("refresh")) {
			cache := probe.NewCache(where.ProbeCache())
			for _, path := range args {
				if err := cache.Delete(path); err != nil {
					log.Warnf("drop cached metadata of %s: %v", path, err)
				}
			}
		}

		items := newProber().Items(cmd.Context(), args...)

		if lo.Must(cmd.Flags().GetBool("json")) {
			type probed struct {
				Path     string            `json:"path"`
				Metadata playlist.Metadata `json:"metadata"`
			}
			encoder := json.NewEncoder(cmd.OutOrStdout())
			encoder.SetIndent("", "  ")
			lo.Must0(encoder.Encode(lo.Map(items, func(item playlist.Item, _ int) probed {
				return probed{Path: item.Path, Metadata: item.Metadata}
			})))
			return
		}

		width := defaultWidth
		if w, _, err := util.TerminalSize(); err == nil && w > 0 {
			width = w
		}

		for i, item := range items {
			cmd.Print(describe(item, width))
			if i < len(items)-1 {
				cmd.Println()
			}
		}
	},
}

// describe renders an item's metadata, wrapping long track lists to width.
func describe(item playlist.Item, width int) string {
	var b strings.Builder
	meta := item.Metadata

	b.WriteString(style.Bold(style.Fg(color.Purple)(item.Name)) + "\n")
	fmt.Fprintf(&b, "  %s %s\n", style.Faint("Path"), item.Path)
	fmt.Fprintf(&b, "  %s %s\n", style.Faint("Duration"), formatSeconds(meta.Duration))
	if meta.FPS > 0 {
		rate := playlist.Rational(meta.FPS)
		fmt.Fprintf(&b, "  %s %.3f (%d/%d)\n", style.Faint("Frame rate"), meta.FPS, rate.Num, rate.Den)
	}
	if meta.Channels > 0 {
		fmt.Fprintf(&b, "  %s %s\n", style.Faint("Audio"), util.Quantify(meta.Channels, "channel", "channels"))
	}

	writeTracks(&b, icon.Get(icon.Audio), meta.AudioTracks, width)
	writeTracks(&b, icon.Get(icon.Subtitle), meta.SubTracks, width)
	return b.String()
}

func writeTracks(b *strings.Builder, glyph string, tracks []playlist.Track, width int) {
	if len(tracks) == 0 {
		return
	}
	labels := lo.Map(tracks, func(t playlist.Track, _ int) string {
		return fmt.Sprintf("%d: %s", t.ID, t.Label())
	})
	text := wordwrap.String(strings.Join(labels, ", "), util.Max(width-trackIndent, 20))
	fmt.Fprintf(b, "  %s\n%s\n", glyph, indent.String(text, trackIndent))
}
