package host

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/mpvsource/mpvsource/filesystem"
	"github.com/spf13/cast"
	"github.com/spf13/viper"
)

// Settings is the key/value store of one source instance. Values are set by
// the host or the view layer and read back by the source's update
// callback. It is safe for concurrent use.
type Settings struct {
	mu sync.RWMutex
	v  *viper.Viper
}

// NewSettings returns an empty store.
func NewSettings() *Settings {
	v := viper.New()
	v.SetConfigType("json")
	v.SetFs(filesystem.API())
	return &Settings{v: v}
}

// LoadSettings reads a store persisted with Save. A missing file yields an empty store.
func LoadSettings(path string) (*Settings, error) {
	s := NewSettings()
	exists, err := filesystem.API().Exists(path)
	if err != nil {
		return nil, err
	}
	if !exists {
		return s, nil
	}

	s.v.SetConfigFile(path)
	if err := s.v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read settings %s: %w", path, err)
	}
	return s, nil
}

// Save writes the store as JSON.
func (s *Settings) Save(path string) error {
	if err := filesystem.API().MkdirAll(filepath.Dir(path), os.ModePerm); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("write settings %s: %w", path, err)
	}
	return nil
}

// Set stores a value.
func (s *Settings) Set(key string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.v.Set(key, value)
}

// SetDefault sets the value returned while key is unset.
func (s *Settings) SetDefault(key string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.v.SetDefault(key, value)
}

// Has reports whether key holds a value or a default.
func (s *Settings) Has(key string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.v.IsSet(key)
}

func (s *Settings) get(key string) any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.v.Get(key)
}

func (s *Settings) GetString(key string) string {
	return cast.ToString(s.get(key))
}

func (s *Settings) GetInt(key string) int {
	return cast.ToInt(s.get(key))
}

func (s *Settings) GetDouble(key string) float64 {
	return cast.ToFloat64(s.get(key))
}

func (s *Settings) GetBool(key string) bool {
	return cast.ToBool(s.get(key))
}

// GetArray returns an array of objects. Entries that are not objects are skipped.
func (s *Settings) GetArray(key string) []map[string]any {
	raw, err := cast.ToSliceE(s.get(key))
	if err != nil {
		return nil
	}
	out := make([]map[string]any, 0, len(raw))
	for _, entry := range raw {
		obj, err := cast.ToStringMapE(entry)
		if err != nil {
			continue
		}
		out = append(out, lowerKeys(obj))
	}
	return out
}

// SetArray stores an array of objects.
func (s *Settings) SetArray(key string, value []map[string]any) {
	s.Set(key, value)
}

// Keys returns every key currently set.
func (s *Settings) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.v.AllKeys()
}

// lowerKeys matches viper's case-insensitive keys for nested objects.
func lowerKeys(obj map[string]any) map[string]any {
	out := make(map[string]any, len(obj))
	for k, v := range obj {
		out[strings.ToLower(k)] = v
	}
	return out
}
