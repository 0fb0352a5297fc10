package cmd

import (
	"fmt"

	"github.com/mpvsource/mpvsource/icon"
	"github.com/mpvsource/mpvsource/util"
	"github.com/mpvsource/mpvsource/where"
	"github.com/samber/lo"
	"github.com/samber/mo"
	"github.com/spf13/cobra"
)

// clearTarget defines a filesystem resource eligible for cleanup.
type clearTarget struct {
	name     string
	argLong  string
	argShort mo.Option[string]
	location func() string
}

var clearTargets = []clearTarget{
	{"probe cache", "cache", mo.Some("c"), where.ProbeCache},
	{"source settings", "settings", mo.Some("s"), where.Settings},
	{"session files", "temp", mo.Some("t"), where.Temp},
}

func init() {
	rootCmd.AddCommand(clearCmd)

	for _, target := range clearTargets {
		help := fmt.Sprintf("clear %s", target.name)
		if target.argShort.IsPresent() {
			clearCmd.Flags().BoolP(target.argLong, target.argShort.MustGet(), false, help)
		} else {
			clearCmd.Flags().Bool(target.argLong, false, help)
		}
	}
}

// clearCmd removes cached and leftover artifacts. Session files belong to
// running sources, so only clear them when none is running.
var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Clear cached metadata, saved settings and leftover session files",
	Run: func(cmd *cobra.Command, args []string) {
		var anyCleared bool

		for _, target := range clearTargets {
			if !lo.Must(cmd.Flags().GetBool(target.argLong)) {
				continue
			}
			anyCleared = true
			if err := util.Delete(target.location()); err != nil && !isNotExist(err) {
				handleErr(err)
			}
			fmt.Printf("%s %s cleared\n", icon.Get(icon.Success), target.name)
		}

		if !anyCleared {
			handleErr(cmd.Help())
		}
	},
}
