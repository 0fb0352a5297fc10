package audio

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/mpvsource/mpvsource/constant"
)

// ErrPipeUnavailable is returned when the byte channel cannot be opened.
var ErrPipeUnavailable = errors.New("audio channel unavailable")

// Pipe is the byte channel the engine writes raw PCM into.
//
// Read never blocks for long: it returns (0, nil) when no bytes are
// available, including while the writer has not connected yet.
type Pipe interface {
	// Path is the endpoint handed to the engine as its output file.
	Path() string
	// Open makes one attempt to open the reader end.
	Open() error
	Read(p []byte) (int, error)
	// Close releases the reader end and removes the endpoint.
	Close() error
}

// pipeName returns a unique endpoint name for one session.
func pipeName() string {
	return fmt.Sprintf("%s-%s-audio", constant.App, uuid.NewString())
}
