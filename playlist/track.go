package playlist

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/samber/lo"
	"github.com/spf13/cast"
)

// Kind is the engine's track type name.
type Kind string

const (
	Video    Kind = "video"
	Audio    Kind = "audio"
	Subtitle Kind = "sub"
)

// Track is one selectable stream of a file.
type Track struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Selected bool   `json:"selected"`
	// Channels is only known for audio tracks.
	Channels int `json:"channels,omitempty"`
}

// Label is the display name, annotated with the channel count for audio.
func (t Track) Label() string {
	if t.Channels > 0 {
		return fmt.Sprintf("%s (%dch)", t.Name, t.Channels)
	}
	return t.Name
}

// ParseTrackList extracts tracks of one kind from the engine's track-list
// property, a list of objects. Malformed entries are skipped.
func ParseTrackList(node any, kind Kind) []Track {
	entries, ok := node.([]any)
	if !ok {
		return nil
	}

	tracks := make([]Track, 0, len(entries))
	for _, entry := range entries {
		fields, ok := entry.(map[string]any)
		if !ok || cast.ToString(fields["type"]) != string(kind) {
			continue
		}
		raw, ok := fields["id"]
		if !ok {
			continue
		}
		id, err := cast.ToIntE(raw)
		if err != nil {
			continue
		}

		t := Track{
			ID:       id,
			Name:     trackName(id, cast.ToString(fields["title"]), cast.ToString(fields["lang"])),
			Selected: cast.ToBool(fields["selected"]),
		}
		if kind == Audio {
			t.Channels = cast.ToInt(fields["demux-channel-count"])
		}
		tracks = append(tracks, t)
	}
	return tracks
}

// trackName prefers the embedded title, then the language, then the id.
func trackName(id int, title, lang string) string {
	switch {
	case title != "":
		return title
	case lang != "":
		return lang
	default:
		return strconv.Itoa(id)
	}
}

// fieldSanitizer keeps names from breaking the summary encoding.
var fieldSanitizer = strings.NewReplacer(":", " ", "|", "/")

// TrackSummary encodes tracks as "id:name:selected" entries joined by "|".
func TrackSummary(tracks []Track) string {
	return strings.Join(lo.Map(tracks, func(t Track, _ int) string {
		selected := "0"
		if t.Selected {
			selected = "1"
		}
		return fmt.Sprintf("%d:%s:%s", t.ID, fieldSanitizer.Replace(t.Label()), selected)
	}), "|")
}

// ParseTrackSummary decodes a TrackSummary string, skipping malformed entries.
func ParseTrackSummary(summary string) []Track {
	if summary == "" {
		return nil
	}
	return lo.FilterMap(strings.Split(summary, "|"), func(entry string, _ int) (Track, bool) {
		parts := strings.Split(entry, ":")
		if len(parts) != 3 {
			return Track{}, false
		}
		id, err := strconv.Atoi(parts[0])
		if err != nil {
			return Track{}, false
		}
		return Track{ID: id, Name: parts[1], Selected: parts[2] == "1"}, true
	})
}
