package display

import "fmt"

// MalformedReplyError reports a display state reply that does not follow
// the expected schema.
type MalformedReplyError struct {
	// Path names the offending field, e.g. monitors[0].modes[2].width.
	Path   string
	Reason string
}

func (e *MalformedReplyError) Error() string {
	return fmt.Sprintf("malformed display state at %s: %s", e.Path, e.Reason)
}

// DanglingReferenceError reports a logical monitor that references a
// connector missing from the monitor list.
type DanglingReferenceError struct {
	Connector      string
	LogicalMonitor int
}

func (e *DanglingReferenceError) Error() string {
	return fmt.Sprintf("logical monitor %d references unknown connector %q", e.LogicalMonitor, e.Connector)
}

func malformed(path, format string, args ...interface{}) error {
	return &MalformedReplyError{Path: path, Reason: fmt.Sprintf(format, args...)}
}
