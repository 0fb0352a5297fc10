// Package icon provides a multi-variant rendering engine for CLI feedback symbols.
//
// Icons can be displayed as emoji, plain ASCII or Unicode squares depending on user preference.
package icon

import (
	"github.com/mpvsource/mpvsource/key"
	"github.com/spf13/viper"
)

// Visual Variant Constants - these define the supported aesthetic styles for icon rendering.
const (
	emoji   = "emoji"
	plain   = "plain"
	squares = "squares"
)

// AvailableVariants returns a slice of all registered icon style identifiers.
func AvailableVariants() []string {
	return []string{emoji, plain, squares}
}

// Icon identifies a symbol in the registry.
type Icon int

const (
	Success Icon = iota
	Fail
	Playing
	Paused
	Stopped
	Loop
	Audio
	Subtitle
)

// iconDef encapsulates the visual representations of a single symbol across all supported variants.
type iconDef struct {
	emoji   string
	plain   string
	squares string
}

var icons = map[Icon]*iconDef{
	Success:  {emoji: "🎉", plain: "✓", squares: "🟩"},
	Fail:     {emoji: "💀", plain: "✖", squares: "🟥"},
	Playing:  {emoji: "▶️", plain: ">", squares: "🟢"},
	Paused:   {emoji: "⏸️", plain: "=", squares: "🟡"},
	Stopped:  {emoji: "⏹️", plain: "#", squares: "⬛"},
	Loop:     {emoji: "🔁", plain: "@", squares: "🟦"},
	Audio:    {emoji: "🔊", plain: "a", squares: "🟪"},
	Subtitle: {emoji: "💬", plain: "s", squares: "🟫"},
}

// Get retrieves the visual representation for the receiver based on the global icons variant configuration.
func (d *iconDef) Get() string {
	switch viper.GetString(key.IconsVariant) {
	case emoji:
		return d.emoji
	case squares:
		return d.squares
	default:
		return d.plain
	}
}

// Get returns the rendered string for a specified Icon identifier from the global registry.
func Get(i Icon) string {
	if d, ok := icons[i]; ok {
		return d.Get()
	}
	return ""
}
