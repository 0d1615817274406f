package media

import (
	"errors"
	"fmt"
)

// ErrUnsupportedKind is returned before any work is done for kinds the
// transcoder deliberately rejects.
var ErrUnsupportedKind = errors.New("unsupported media kind")

// TranscodeError reports a toolchain failure. No output file exists when it
// is returned.
type TranscodeError struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *TranscodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("transcode %s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("transcode %s: %s", e.Kind, e.Msg)
}

func (e *TranscodeError) Unwrap() error { return e.Err }
