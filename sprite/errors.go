package sprite

// A FormatError reports that the input is not a valid file of the named
// format, or uses a variant that is not supported.
type FormatError struct {
	Format string
	Reason string
}

func (e *FormatError) Error() string {
	return e.Format + ": invalid format: " + e.Reason
}

// An IOError reports a failure of the underlying stream while reading or
// writing the named format. A truncated file is an IOError wrapping
// io.ErrUnexpectedEOF.
type IOError struct {
	Format string
	Op     string
	Err    error
}

func (e *IOError) Error() string {
	return e.Format + ": " + e.Op + ": " + e.Err.Error()
}

func (e *IOError) Unwrap() error {
	return e.Err
}
