package cmd

import (
	"fmt"
	"os"
	"sort"
	"strconv"

	"github.com/mpvsource/mpvsource/color"
	"github.com/mpvsource/mpvsource/icon"
	"github.com/mpvsource/mpvsource/playlist"
	"github.com/mpvsource/mpvsource/style"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(settingsCmd)
	settingsCmd.AddCommand(settingsShowCmd, settingsSetCmd)
	settingsShowCmd.SetOut(os.Stdout)
}

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Inspect and edit the saved source settings",
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print every saved source setting except the playlist",
	Run: func(cmd *cobra.Command, args []string) {
		settings := loadSettings()
		keys := lo.Filter(settings.Keys(), func(k string, _ int) bool {
			return k != playlist.SettingsKey
		})
		sort.Strings(keys)
		for _, k := range keys {
			cmd.Printf("%s %s\n", style.Fg(color.Purple)(k), style.Fg(color.Yellow)(settings.GetString(k)))
		}
	},
}

// settingValue keeps numbers and booleans typed so the source reads them back as such.
func settingValue(raw string) any {
	if i, err := strconv.Atoi(raw); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return f
	}
	if b, err := strconv.ParseBool(raw); err == nil {
		return b
	}
	return raw
}

var settingsSetCmd = &cobra.Command{
	Use:   "set key value",
	Short: "Store a source setting, applied the next time the source runs",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		if args[0] == playlist.SettingsKey {
			handleErr(fmt.Errorf("use the playlist command to edit the playlist"))
		}
		settings := loadSettings()
		v := settingValue(args[1])
		settings.Set(args[0], v)
		saveSettings(settings)
		fmt.Printf("%s set %s to %v\n", icon.Get(icon.Success), style.Fg(color.Purple)(args[0]), v)
	},
}
