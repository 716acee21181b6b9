package errno

import "fmt"

// BizError pairs a coded errno with its underlying cause.
type BizError struct {
	Errno *Errno
	Cause error
}

func (e *BizError) Error() string {
	if e.Cause == nil {
		return e.Errno.Message
	}
	return fmt.Sprintf("%s: %v", e.Errno.Message, e.Cause)
}

func (e *BizError) Unwrap() error {
	return e.Cause
}

// NewBizError wraps a cause under a business error code.
func NewBizError(en *Errno, cause error) *BizError {
	return &BizError{Errno: en, Cause: cause}
}

// CodeOf extracts the errno code from an error chain, defaulting to 500.
func CodeOf(err error) int {
	switch e := err.(type) {
	case *Errno:
		return e.Code
	case *BizError:
		return e.Errno.Code
	default:
		return ErrInternalServer.Code
	}
}
