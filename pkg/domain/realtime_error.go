package domain

import (
	"errors"
	"fmt"
)

// Code is the stable identifier carried by every wire error event.
type Code string

const (
	CodeProtocol            Code = "protocol_error"
	CodeValidation          Code = "validation_error"
	CodeBufferOverflow      Code = "buffer_overflow"
	CodeOutOfOrderChunk     Code = "out_of_order_chunk"
	CodeEmptyBuffer         Code = "empty_buffer"
	CodeBackendTransient    Code = "backend_transient_error"
	CodeBackendFatal        Code = "backend_fatal_error"
	CodeFunctionCallTimeout Code = "function_call_timeout"
	CodeCapacityExceeded    Code = "capacity_exceeded"
	CodeIdleTimeout         Code = "idle_timeout"
	CodeRateLimitExceeded   Code = "rate_limit_exceeded"
	CodeSessionClosed       Code = "session_closed"
	CodeInternal            Code = "internal_error"
)

// Error is a realtime failure that maps onto exactly one wire error event.
type Error struct {
	Code    Code
	Message string
	Param   string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func NewError(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

func WrapError(code Code, message string, err error) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

// CodeOf returns the realtime code carried by err, or CodeInternal.
func CodeOf(err error) Code {
	if err == nil {
		return ""
	}
	var rtErr *Error
	if errors.As(err, &rtErr) {
		return rtErr.Code
	}
	return CodeInternal
}

// IsCode reports whether err carries the given code.
func IsCode(err error, code Code) bool {
	return err != nil && CodeOf(err) == code
}
