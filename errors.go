package hdrgainmap

import "fmt"

// InputError reports a malformed or mismatched input image.
type InputError struct {
	Path   string
	Reason string
	Err    error
}

func (e *InputError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("input %s: %s: %v", e.Path, e.Reason, e.Err)
	}
	return fmt.Sprintf("input %s: %s", e.Path, e.Reason)
}

func (e *InputError) Unwrap() error { return e.Err }

// OutputError reports an unwritable destination or a rejected encode.
type OutputError struct {
	Path   string
	Reason string
	Err    error
}

func (e *OutputError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("output %s: %s: %v", e.Path, e.Reason, e.Err)
	}
	return fmt.Sprintf("output %s: %s", e.Path, e.Reason)
}

func (e *OutputError) Unwrap() error { return e.Err }
