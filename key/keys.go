// Package key defines the canonical set of configuration identifiers used for centralized settings management.
package key

// Logging Infrastructure - these keys manage the application's internal diagnostics.
const (
	LogsWrite  = "logs.write"
	LogsLevel  = "logs.level"
	LogsJson   = "logs.json"
	LogsStderr = "logs.stderr"
)

// Decode Engine - these keys configure how the external engine process is spawned and addressed.
const (
	EngineBinary     = "engine.binary"
	EngineHwdec      = "engine.hwdec"
	EngineLogLevel   = "engine.log_level"
	EngineIPCTimeout = "engine.ipc_timeout_ms"
)

// Audio Bridge - these keys tune pacing and buffering of the raw PCM channel.
const (
	AudioLead           = "audio.lead_ms"
	AudioMaxBuffer      = "audio.max_buffer_ms"
	AudioOpenRetries    = "audio.open_retries"
	AudioOpenRetryDelay = "audio.open_retry_delay_ms"
	AudioIdleSleep      = "audio.idle_sleep_ms"
	AudioChunkSize      = "audio.chunk_size"
)

// Metadata Probing.
const (
	ProbeTimeout = "probe.timeout_ms"
	ProbeCache   = "probe.cache"
)

// Headless Host - output format used when the CLI hosts the source itself.
const (
	HostSampleRate = "host.sample_rate"
	HostFPSNum     = "host.fps_num"
	HostFPSDen     = "host.fps_den"
)

// Playlist defaults for newly created sources.
const (
	PlaylistAutoFPS = "playlist.auto_fps"
)

// CLI Execution Environment - these flags and settings govern the terminal output.
const (
	CliColored   = "cli.colored"
	IconsVariant = "icons.variant"
)
