package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/invopop/jsonschema"
	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/mpvsource/mpvsource/color"
	"github.com/mpvsource/mpvsource/host"
	"github.com/mpvsource/mpvsource/icon"
	"github.com/mpvsource/mpvsource/playlist"
	"github.com/mpvsource/mpvsource/source"
	"github.com/mpvsource/mpvsource/style"
	"github.com/mpvsource/mpvsource/util"
	"github.com/muesli/reflow/truncate"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

// openPlaylist loads the saved playlist together with its settings store.
func openPlaylist() (*host.Settings, *playlist.Playlist) {
	settings := loadSettings()
	p := playlist.New()
	p.Replace(playlist.Load(settings))
	return settings, p
}

func savePlaylist(settings *host.Settings, p *playlist.Playlist) {
	playlist.Save(settings, p)
	saveSettings(settings)
}

// resolveIndex accepts an index or a fuzzy query matched against item names.
func resolveIndex(p *playlist.Playlist, arg string) (int, error) {
	if i, err := strconv.Atoi(arg); err == nil {
		if _, err := p.Get(i); err != nil {
			return 0, err
		}
		return i, nil
	}

	ranks := rank(p, arg)
	if len(ranks) == 0 {
		return 0, fmt.Errorf("no item matches %q", arg)
	}
	return ranks[0].OriginalIndex, nil
}

func rank(p *playlist.Playlist, query string) fuzzy.Ranks {
	names := lo.Map(p.Items(), func(item playlist.Item, _ int) string { return item.Name })
	ranks := fuzzy.RankFindNormalizedFold(query, names)
	sort.Sort(ranks)
	return ranks
}

func confirm(cmd *cobra.Command, message string) bool {
	if lo.Must(cmd.Flags().GetBool("yes")) {
		return true
	}
	var ok bool
	handleErr(survey.AskOne(&survey.Confirm{Message: message}, &ok))
	return ok
}

func itemLine(i int, item playlist.Item, width int) string {
	var flags []string
	if item.Loop {
		flags = append(flags, icon.Get(icon.Loop))
	}
	if item.Volume != 100 {
		flags = append(flags, fmt.Sprintf("%s %.0f", icon.Get(icon.Audio), item.Volume))
	}
	if item.ExtSubPath != "" {
		flags = append(flags, icon.Get(icon.Subtitle))
	}
	if stages := playlist.Stages(&item); len(stages) > 0 {
		flags = append(flags, style.Faint(util.Quantify(len(stages), "fade", "fades")))
	}

	line := fmt.Sprintf("%s %s %s %s",
		style.Fg(color.Yellow)(fmt.Sprintf("%3d", i)),
		style.Fg(color.Purple)(item.Name),
		style.Faint(formatSeconds(item.Duration())),
		strings.Join(flags, " "),
	)
	return truncate.StringWithTail(line, uint(width), "…")
}

func init() {
	rootCmd.AddCommand(playlistCmd)
	playlistCmd.PersistentFlags().BoolP("yes", "y", false, "Do not ask for confirmation")
}

var playlistCmd = &cobra.Command{
	Use:     "playlist",
	Aliases: []string{"pl"},
	Short:   "Manage the saved playlist",
}

func init() {
	playlistCmd.AddCommand(playlistListCmd)
	playlistListCmd.SetOut(os.Stdout)
}

var playlistListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the saved playlist",
	Run: func(cmd *cobra.Command, args []string) {
		_, p := openPlaylist()
		if p.Len() == 0 {
			cmd.Println(style.Faint("playlist is empty"))
			return
		}

		width := defaultWidth
		if w, _, err := util.TerminalSize(); err == nil && w > 0 {
			width = w
		}
		for i, item := range p.Items() {
			cmd.Println(itemLine(i, item, width))
		}
	},
}

func init() {
	playlistCmd.AddCommand(playlistAddCmd)
	playlistAddCmd.Flags().Bool("no-probe", false, "Add without probing the files")
	playlistAddCmd.Flags().BoolP("duplicates", "d", false, "Add paths already in the playlist again")
}

var playlistAddCmd = &cobra.Command{
	Use:   "add paths...",
	Short: "Append files to the saved playlist",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		settings, p := openPlaylist()

		if !lo.Must(cmd.Flags().GetBool("duplicates")) {
			items := p.Items()
			existing := lo.Map(p.Find(args...), func(i int, _ int) string { return items[i].Path })
			args = lo.Without(args, existing...)
			if len(args) == 0 {
				fmt.Println(style.Faint("every path is already in the playlist"))
				return
			}
		}

		if lo.Must(cmd.Flags().GetBool("no-probe")) {
			p.Add(lo.Map(args, func(path string, _ int) playlist.Item { return playlist.NewItem(path) })...)
		} else {
			p.Add(newProber().Items(cmd.Context(), args...)...)
		}
		savePlaylist(settings, p)

		fmt.Printf("%s added %s\n", icon.Get(icon.Success), util.Quantify(len(args), "item", "items"))
	},
}

func init() {
	playlistCmd.AddCommand(playlistRemoveCmd)
}

var playlistRemoveCmd = &cobra.Command{
	Use:   "remove index|query",
	Short: "Remove an item by index or by fuzzy name match",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		settings, p := openPlaylist()
		i, err := resolveIndex(p, args[0])
		handleErr(err)

		item, _ := p.Get(i)
		if !confirm(cmd, fmt.Sprintf("Remove %s?", item.Name)) {
			return
		}
		_, err = p.Remove(i)
		handleErr(err)
		savePlaylist(settings, p)

		fmt.Printf("%s removed %s\n", icon.Get(icon.Success), style.Fg(color.Purple)(item.Name))
	},
}

func init() {
	playlistCmd.AddCommand(playlistMoveCmd)
}

var playlistMoveCmd = &cobra.Command{
	Use:   "move from to",
	Short: "Move an item to another position",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		settings, p := openPlaylist()
		from, err := resolveIndex(p, args[0])
		handleErr(err)
		to, err := strconv.Atoi(args[1])
		handleErr(err)

		handleErr(p.Move(from, to))
		savePlaylist(settings, p)
		fmt.Printf("%s moved %d to %d\n", icon.Get(icon.Success), from, to)
	},
}

func init() {
	playlistCmd.AddCommand(playlistFindCmd)
	playlistFindCmd.SetOut(os.Stdout)
}

var playlistFindCmd = &cobra.Command{
	Use:   "find query",
	Short: "Fuzzy search the playlist by name",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		_, p := openPlaylist()
		items := p.Items()
		for _, r := range rank(p, args[0]) {
			cmd.Println(itemLine(r.OriginalIndex, items[r.OriginalIndex], defaultWidth))
		}
	},
}

func init() {
	playlistCmd.AddCommand(playlistClearCmd)
}

var playlistClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every item from the saved playlist",
	Run: func(cmd *cobra.Command, args []string) {
		settings, p := openPlaylist()
		if p.Len() == 0 {
			return
		}
		if !confirm(cmd, fmt.Sprintf("Remove all %s?", util.Quantify(p.Len(), "item", "items"))) {
			return
		}
		p.Replace(nil)
		savePlaylist(settings, p)
		fmt.Printf("%s playlist cleared\n", icon.Get(icon.Success))
	},
}

func init() {
	playlistCmd.AddCommand(playlistSchemaCmd)
	playlistSchemaCmd.Flags().BoolP("array", "a", false, "Describe the whole persisted playlist array")
	playlistSchemaCmd.SetOut(os.Stdout)
}

var playlistSchemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the JSON schema of a playlist item",
	Run: func(cmd *cobra.Command, args []string) {
		reflector := new(jsonschema.Reflector)
		reflector.Anonymous = true
		reflector.Namer = func(t reflect.Type) string {
			return filepath.Base(t.PkgPath()) + "." + t.Name()
		}

		var schema *jsonschema.Schema
		if lo.Must(cmd.Flags().GetBool("array")) {
			schema = reflector.Reflect([]playlist.Item{})
		} else {
			schema = reflector.Reflect(&playlist.Item{})
		}

		encoder := json.NewEncoder(cmd.OutOrStdout())
		encoder.SetIndent("", "  ")
		lo.Must0(encoder.Encode(schema))
	},
}

func init() {
	playlistCmd.AddCommand(playlistTracksCmd)
	playlistTracksCmd.SetOut(os.Stdout)
}

var playlistTracksCmd = &cobra.Command{
	Use:   "tracks",
	Short: "Show the tracks of the item that played last",
	Run: func(cmd *cobra.Command, args []string) {
		settings := loadSettings()
		for _, list := range []struct {
			glyph string
			key   string
		}{
			{icon.Get(icon.Audio), source.KeyTrackListAudio},
			{icon.Get(icon.Subtitle), source.KeyTrackListSub},
		} {
			tracks := playlist.ParseTrackSummary(settings.GetString(list.key))
			if len(tracks) == 0 {
				continue
			}
			cmd.Println(list.glyph)
			for _, t := range tracks {
				marker := " "
				if t.Selected {
					marker = style.Fg(color.Green)("*")
				}
				cmd.Printf("  %s %d %s\n", marker, t.ID, t.Name)
			}
		}
	},
}
