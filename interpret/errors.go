package interpret

import "fmt"

// ServiceError is the failure reported by the execution service,
// usually a syntax or runtime error in the submitted code.
type ServiceError struct {
	Message string
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("execution failed: %s", e.Message)
}

// MalformedResultError means the reply does not follow the protocol:
// it must carry either an error or a log/canvas, never both.
type MalformedResultError struct {
	Reason string
}

func (e *MalformedResultError) Error() string {
	return fmt.Sprintf("malformed execution result: %s", e.Reason)
}
