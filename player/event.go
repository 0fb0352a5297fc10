package player

import "fmt"

// EventID enumerates the discrete events an engine reports.
type EventID int

const (
	EventNone EventID = iota
	EventShutdown
	EventLogMessage
	EventStartFile
	EventFileLoaded
	EventEndFile
	EventVideoReconfig
	EventAudioReconfig
	EventPlaybackRestart
	EventPropertyChange
	EventCommandReply
)

var eventNames = map[EventID]string{
	EventNone:            "none",
	EventShutdown:        "shutdown",
	EventLogMessage:      "log-message",
	EventStartFile:       "start-file",
	EventFileLoaded:      "file-loaded",
	EventEndFile:         "end-file",
	EventVideoReconfig:   "video-reconfig",
	EventAudioReconfig:   "audio-reconfig",
	EventPlaybackRestart: "playback-restart",
	EventPropertyChange:  "property-change",
	EventCommandReply:    "command-reply",
}

func (id EventID) String() string {
	if name, ok := eventNames[id]; ok {
		return name
	}
	return fmt.Sprintf("event(%d)", int(id))
}

// EndReason explains why a file stopped playing.
type EndReason int

const (
	EndReasonEOF EndReason = iota
	EndReasonStop
	EndReasonQuit
	EndReasonError
	EndReasonRedirect
	EndReasonUnknown
)

// ParseEndReason maps the engine's textual end-file reason.
func ParseEndReason(reason string) EndReason {
	switch reason {
	case "eof":
		return EndReasonEOF
	case "stop":
		return EndReasonStop
	case "quit":
		return EndReasonQuit
	case "error":
		return EndReasonError
	case "redirect":
		return EndReasonRedirect
	default:
		return EndReasonUnknown
	}
}

func (r EndReason) String() string {
	switch r {
	case EndReasonEOF:
		return "eof"
	case EndReasonStop:
		return "stop"
	case EndReasonQuit:
		return "quit"
	case EndReasonError:
		return "error"
	case EndReasonRedirect:
		return "redirect"
	default:
		return "unknown"
	}
}

// LogMessage is the payload of EventLogMessage.
type LogMessage struct {
	Prefix string
	Level  string
	Text   string
}

// Event is one entry of the engine's event queue.
type Event struct {
	ID EventID

	// EventEndFile
	Reason EndReason
	Error  string

	// EventPropertyChange
	ObserveID int
	Property  string
	Data      any

	// EventLogMessage
	Log *LogMessage
}
