// Package config provides centralized management for application settings, defaults, and the Viper-based configuration engine.
package config

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"text/template"

	"github.com/mpvsource/mpvsource/color"
	"github.com/mpvsource/mpvsource/constant"
	"github.com/mpvsource/mpvsource/key"
	"github.com/mpvsource/mpvsource/style"
	"github.com/samber/lo"
	"github.com/spf13/viper"
)

// Field represents a configuration field definition.
type Field struct {
	Key         string
	Value       any
	Description string
}

// Pretty returns a colored string representation of the field for display.
func (f *Field) Pretty() string {
	var b strings.Builder
	lo.Must0(prettyTemplate.Execute(&b, f))
	return b.String()
}

// Env returns the environment variable name for this field.
func (f *Field) Env() string {
	env := strings.ToUpper(EnvKeyReplacer.Replace(f.Key))
	prefix := strings.ToUpper(constant.App + "_")
	if strings.HasPrefix(env, prefix) {
		return env
	}
	return prefix + env
}

// MarshalJSON customizes JSON output to include current and default values.
func (f *Field) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Key         string `json:"key"`
		Value       any    `json:"value"`
		Default     any    `json:"default"`
		Description string `json:"description"`
		Type        string `json:"type"`
	}{
		Key:         f.Key,
		Value:       viper.Get(f.Key),
		Default:     f.Value,
		Description: f.Description,
		Type:        f.typeName(),
	})
}

// typeName returns the string representation of the field's underlying value type.
func (f *Field) typeName() string {
	switch f.Value.(type) {
	case string:
		return "string"
	case int:
		return "int"
	case bool:
		return "bool"
	case []string:
		return "[]string"
	case []int:
		return "[]int"
	default:
		return "unknown"
	}
}

// Default holds the map of all configuration fields.
var Default = make(map[string]Field)

// EnvExposed holds keys that are bound to environment variables.
var EnvExposed []string

func init() {
	// register validates and adds a new configuration field to the global registry.
	register := func(k string, v any, desc string) {
		if _, exists := Default[k]; exists {
			panic("Duplicate config key: " + k)
		}
		f := Field{Key: k, Value: v, Description: desc}
		Default[k] = f
		EnvExposed = append(EnvExposed, k)
	}

	register(key.LogsWrite, false, "Write logs")
	register(key.LogsLevel, "info", "Available options are: (from less to most verbose)\npanic, fatal, error, warn, info, debug, trace")
	register(key.LogsJson, false, "Use json format for logs")
	register(key.LogsStderr, false, "Write logs to stderr instead of the log directory")
	register(key.EngineBinary, "mpv", "Decode engine executable")
	register(key.EngineHwdec, "auto", "Hardware decoding mode passed to the engine")
	register(key.EngineLogLevel, "info", "Minimum engine log level forwarded to the host log.\nAvailable options are: fatal, error, warn, info, v, debug, trace")
	register(key.EngineIPCTimeout, 1000, "Timeout in milliseconds for synchronous engine calls")
	register(key.AudioLead, 100, "Audio pacing lead in milliseconds")
	register(key.AudioMaxBuffer, 2000, "Audio queued beyond this many milliseconds is dropped and re-synced")
	register(key.AudioOpenRetries, 50, "Attempts to open the audio channel before giving up")
	register(key.AudioOpenRetryDelay, 100, "Delay in milliseconds between audio channel open attempts")
	register(key.AudioIdleSleep, 5, "Audio worker sleep in milliseconds when nothing is due")
	register(key.AudioChunkSize, 4096, "Audio channel read size in bytes")
	register(key.ProbeTimeout, 5000, "Per-file metadata probe timeout in milliseconds")
	register(key.ProbeCache, true, "Cache probed metadata on disk")
	register(key.HostSampleRate, 48000, "Audio sample rate of the headless host")
	register(key.HostFPSNum, 30, "Frame rate numerator of the headless host")
	register(key.HostFPSDen, 1, "Frame rate denominator of the headless host")
	register(key.PlaylistAutoFPS, false, "Match the host frame rate to each item by default")
	register(key.CliColored, true, "Enable colored CLI output")
	register(key.IconsVariant, "plain", "Icons variant.\nAvailable options are: emoji, plain, squares")
}

var prettyTemplate = lo.Must(template.New("pretty").Funcs(template.FuncMap{
	"faint":    style.Faint,
	"bold":     style.Bold,
	"purple":   style.Fg(color.Purple),
	"blue":     style.Fg(color.Blue),
	"cyan":     style.Fg(color.Cyan),
	"value":    func(k string) any { return viper.Get(k) },
	"typename": func(v any) string { return reflect.TypeOf(v).String() },
	"hl": func(v any) string {
		switch value := v.(type) {
		case bool:
			b := strconv.FormatBool(value)
			if value {
				return style.Fg(color.Green)(b)
			}
			return style.Fg(color.Red)(b)
		case string:
			return style.Fg(color.Yellow)(value)
		default:
			return fmt.Sprint(value)
		}
	},
}).Parse(`{{ faint .Description }}
{{ blue "Key:" }}     {{ purple .Key }}
{{ blue "Env:" }}     {{ .Env }}
{{ blue "Value:" }}   {{ hl (value .Key) }}
{{ blue "Default:" }} {{ hl (.Value) }}
{{ blue "Type:" }}    {{ typename .Value }}`))
