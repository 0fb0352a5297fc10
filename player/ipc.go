package player

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ipcCommand is the JSON structure sent to mpv's IPC socket.
type ipcCommand struct {
	Command   []interface{} `json:"command"`
	RequestID int64         `json:"request_id"`
	Async     bool          `json:"async,omitempty"`
}

// ipcMessage is everything mpv writes back: command replies carry a request id
// and an error string, events carry an event name plus event-specific fields.
type ipcMessage struct {
	RequestID *int64      `json:"request_id"`
	Data      interface{} `json:"data"`
	Error     string      `json:"error"`

	Event     string `json:"event"`
	ID        int    `json:"id"`
	Name      string `json:"name"`
	Reason    string `json:"reason"`
	FileError string `json:"file_error"`
	Prefix    string `json:"prefix"`
	Level     string `json:"level"`
	Text      string `json:"text"`
}

func encodeCommand(id int64, async bool, args []interface{}) ([]byte, error) {
	payload, err := json.Marshal(ipcCommand{Command: args, RequestID: id, Async: async})
	if err != nil {
		return nil, fmt.Errorf("marshal: %w", err)
	}
	// mpv requires newline-delimited JSON
	return append(payload, '\n'), nil
}

func decodeMessage(line []byte) (ipcMessage, error) {
	var msg ipcMessage
	if err := json.Unmarshal(line, &msg); err != nil {
		return msg, fmt.Errorf("unmarshal: %w", err)
	}
	return msg, nil
}

// isEvent reports whether the message is an asynchronous event rather than a reply.
func (m ipcMessage) isEvent() bool {
	return m.Event != ""
}

// err converts the reply status into a Go error.
func (m ipcMessage) err() error {
	if m.Error == "" || m.Error == "success" {
		return nil
	}
	if strings.Contains(m.Error, "property unavailable") {
		return ErrPropertyUnavailable
	}
	return fmt.Errorf("mpv error: %s", m.Error)
}

// event maps an IPC event message onto the engine event model.
// Unknown events yield false and are dropped by the caller.
func (m ipcMessage) event() (Event, bool) {
	switch m.Event {
	case "shutdown":
		return Event{ID: EventShutdown}, true
	case "log-message":
		return Event{ID: EventLogMessage, Log: &LogMessage{
			Prefix: m.Prefix,
			Level:  m.Level,
			Text:   strings.TrimRight(m.Text, "\n"),
		}}, true
	case "start-file":
		return Event{ID: EventStartFile}, true
	case "file-loaded":
		return Event{ID: EventFileLoaded}, true
	case "end-file":
		return Event{ID: EventEndFile, Reason: ParseEndReason(m.Reason), Error: m.FileError}, true
	case "video-reconfig":
		return Event{ID: EventVideoReconfig}, true
	case "audio-reconfig":
		return Event{ID: EventAudioReconfig}, true
	case "playback-restart":
		return Event{ID: EventPlaybackRestart}, true
	case "property-change":
		return Event{ID: EventPropertyChange, ObserveID: m.ID, Property: m.Name, Data: m.Data}, true
	default:
		return Event{}, false
	}
}
