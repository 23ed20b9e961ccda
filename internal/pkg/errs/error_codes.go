/*
Package errs provides custom error types and application-level error code constants.

These error codes identify specific business or system errors both internally
within the server and in events sent to clients.
*/
package errs

// 1xxx: General Request Handling Errors
const (
	// ErrInvalidParams indicates that request parameter validation failed.
	ErrInvalidParams = 1001

	// ErrFormParseFailed indicates failure to parse multipart or URL-encoded form data.
	ErrFormParseFailed = 1005

	// ErrRequestEntityTooLarge indicates that the request body size exceeded the server limit.
	ErrRequestEntityTooLarge = 1006

	// ErrRateLimitExceeded indicates that the request rate has exceeded the set limit.
	ErrRateLimitExceeded = 1007
)

// 2xxx: Chat and Message Business Logic Errors
const (
	// ErrJoinFailed indicates that the join sequence could not be completed.
	ErrJoinFailed = 2001

	// ErrEmptyMessage indicates that a text message had no content left after trimming.
	ErrEmptyMessage = 2101

	// ErrMessageContentTooLong indicates that the message content exceeded the maximum length limit.
	ErrMessageContentTooLong = 2102

	// ErrMessageInvalid indicates that the inbound message payload matched no recognized shape.
	ErrMessageInvalid = 2103

	// ErrMessageNotStored indicates that the message could not be validated or persisted.
	ErrMessageNotStored = 2104
)

// 4xxx: File Upload Errors
const (
	// ErrFileSizeTooLarge indicates that the uploaded file exceeded the size limit.
	ErrFileSizeTooLarge = 4001

	// ErrFileTypeInvalid indicates that the file extension or MIME type is not allowed.
	ErrFileTypeInvalid = 4002

	// ErrFileStorageFailed indicates that the file could not be written to the storage backend.
	ErrFileStorageFailed = 4003
)

// 5xxx: Internal System Errors
const (
	// ErrUnknown represents an unclassified, general server internal error.
	ErrUnknown = 5000
)
