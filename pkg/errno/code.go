package errno

// code=0 request succeeded
// code=4xx client request errors
// code=5xx server errors
// code=2xxxx business errors

type Errno struct {
	Code    int
	Message string
}

// Error implements the error interface.
func (e *Errno) Error() string {
	return e.Message
}

var (
	OK = &Errno{Code: 200, Message: "Success"}

	ErrInvalidParam = &Errno{Code: 400, Message: "Invalid parameter"}
	ErrUnauthorized = &Errno{Code: 401, Message: "Unauthorized"}
	ErrNotFound     = &Errno{Code: 404, Message: "Not found"}

	ErrInternalServer = &Errno{Code: 500, Message: "Internal server error"}
	ErrDatabase       = &Errno{Code: 501, Message: "Database error"}

	// Conversion business errors.
	ErrUnsupportedFormat     = &Errno{Code: 20001, Message: "Target format is not supported"}
	ErrUnsupportedConversion = &Errno{Code: 20002, Message: "Input kind cannot be converted to the target kind"}
	ErrInvalidClipWindow     = &Errno{Code: 20003, Message: "Clip end must be greater than clip start"}
	ErrInputPathRequired     = &Errno{Code: 20004, Message: "Input path is required"}
	ErrOutputPathRequired    = &Errno{Code: 20005, Message: "Output path is required"}
	ErrJobNotFound           = &Errno{Code: 20006, Message: "Conversion job not found"}
	ErrJobNotCancellable     = &Errno{Code: 20007, Message: "Conversion job is already in a terminal state"}
	ErrQueueFull             = &Errno{Code: 20008, Message: "Conversion queue is full"}
	ErrQueueClosed           = &Errno{Code: 20009, Message: "Conversion queue is closed"}
)
