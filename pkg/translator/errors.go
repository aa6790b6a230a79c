package translator

import "fmt"

// IOError reports an input path that cannot be used, or a failure reading
// a unit or writing the output.
type IOError struct {
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

func (e *IOError) Cause() error {
	return e.Err
}
