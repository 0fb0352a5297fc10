package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/mpvsource/mpvsource/host"
	"github.com/mpvsource/mpvsource/player"
	"github.com/mpvsource/mpvsource/probe"
	"github.com/mpvsource/mpvsource/where"
)

func isNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}

// loadSettings opens the persisted source settings.
func loadSettings() *host.Settings {
	settings, err := host.LoadSettings(where.Settings())
	handleErr(err)
	return settings
}

func saveSettings(settings *host.Settings) {
	handleErr(settings.Save(where.Settings()))
}

func newProber() *probe.Prober {
	return probe.NewFromConfig(player.NewHandle)
}

// formatSeconds renders a duration in seconds as h:mm:ss, or "?" when unknown.
func formatSeconds(seconds float64) string {
	if seconds <= 0 {
		return "?"
	}
	d := time.Duration(seconds * float64(time.Second)).Round(time.Second)
	h, m, s := int(d.Hours()), int(d.Minutes())%60, int(d.Seconds())%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}
