package playlist

import (
	"github.com/samber/lo"
	"github.com/spf13/cast"
)

// SettingsKey is where the playlist is stored in the source settings.
const SettingsKey = "playlist"

// Store is the part of the settings store the playlist persists into.
type Store interface {
	GetArray(key string) []map[string]any
	SetArray(key string, value []map[string]any)
}

// Encode converts an item to its persisted object.
func Encode(item Item) map[string]any {
	return map[string]any{
		"path":             item.Path,
		"name":             item.Name,
		"duration":         item.Duration(),
		"volume":           item.Volume,
		"loop":             item.Loop,
		"audio_track":      item.AudioTrack,
		"sub_track":        item.SubTrack,
		"ext_sub_path":     item.ExtSubPath,
		"fade_in_enabled":  item.FadeInEnabled,
		"fade_in":          item.FadeIn,
		"fade_out_enabled": item.FadeOutEnabled,
		"fade_out":         item.FadeOut,
	}
}

// Decode converts a persisted object back to an item. Missing fields keep
// the defaults of NewItem; a missing name is derived from the path.
func Decode(obj map[string]any) Item {
	item := NewItem(cast.ToString(obj["path"]))
	if name := cast.ToString(obj["name"]); name != "" {
		item.Name = name
	}
	item.Metadata.Duration = cast.ToFloat64(obj["duration"])
	if v, ok := obj["volume"]; ok {
		item.Volume = cast.ToFloat64(v)
	}
	item.Loop = cast.ToBool(obj["loop"])
	if v, ok := obj["audio_track"]; ok {
		item.AudioTrack = cast.ToInt(v)
	}
	if v, ok := obj["sub_track"]; ok {
		item.SubTrack = cast.ToInt(v)
	}
	item.ExtSubPath = cast.ToString(obj["ext_sub_path"])
	item.FadeInEnabled = cast.ToBool(obj["fade_in_enabled"])
	item.FadeIn = cast.ToFloat64(obj["fade_in"])
	item.FadeOutEnabled = cast.ToBool(obj["fade_out_enabled"])
	item.FadeOut = cast.ToFloat64(obj["fade_out"])
	return item
}

// Save writes every item to the store.
func Save(store Store, p *Playlist) {
	store.SetArray(SettingsKey, lo.Map(p.items, func(item Item, _ int) map[string]any {
		return Encode(item)
	}))
}

// Load reads the persisted items. Entries without a path are dropped.
func Load(store Store) []Item {
	return lo.FilterMap(store.GetArray(SettingsKey), func(obj map[string]any, _ int) (Item, bool) {
		item := Decode(obj)
		return item, item.Path != ""
	})
}
