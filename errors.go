package main

import "errors"

var (
	// ErrNoTarget is returned when a request names no target, or one that
	// was never attached.
	ErrNoTarget = errors.New("no target")

	// ErrCaptureFailed wraps failures of the screenshot source.
	ErrCaptureFailed = errors.New("capture failed")

	// ErrDecodeFailed wraps failures to decode a captured raster.
	ErrDecodeFailed = errors.New("decode failed")

	// ErrOutOfRange is returned when a coordinate lies outside the raster.
	ErrOutOfRange = errors.New("out of range")

	// ErrInjectionFailed is returned when an overlay cannot be mounted in a page.
	ErrInjectionFailed = errors.New("injection failed")

	// ErrUnknownAction is returned for protocol requests with an unrecognised action.
	ErrUnknownAction = errors.New("unknown action")

	// ErrBadRequest is returned for protocol requests missing a required field.
	ErrBadRequest = errors.New("bad request")
)

// Wire codes carried in Response.Error.
const (
	CodeNoTarget        = "no-target"
	CodeCaptureFailed   = "capture-failed"
	CodeDecodeFailed    = "decode-failed"
	CodeOutOfRange      = "out-of-range"
	CodeInjectionFailed = "injection-failed"
	CodeUnknownAction   = "unknown-action"
	CodeBadRequest      = "bad-request"
	CodeInternal        = "internal"
)

var errorCodes = []struct {
	err  error
	code string
}{
	{ErrNoTarget, CodeNoTarget},
	{ErrCaptureFailed, CodeCaptureFailed},
	{ErrDecodeFailed, CodeDecodeFailed},
	{ErrOutOfRange, CodeOutOfRange},
	{ErrInjectionFailed, CodeInjectionFailed},
	{ErrUnknownAction, CodeUnknownAction},
	{ErrBadRequest, CodeBadRequest},
}

// ErrorCode maps err onto its wire code. Errors outside the taxonomy map to
// CodeInternal; a nil error maps to "".
func ErrorCode(err error) string {
	if err == nil {
		return ""
	}
	for _, ec := range errorCodes {
		if errors.Is(err, ec.err) {
			return ec.code
		}
	}
	return CodeInternal
}

// CodeError turns a wire code back into its sentinel, for callers on the page
// side of the protocol.
func CodeError(code string) error {
	for _, ec := range errorCodes {
		if ec.code == code {
			return ec.err
		}
	}
	if code == "" {
		return nil
	}
	return errors.New(code)
}
