package rules

import (
	"errors"
	"fmt"

	"cuelang.org/go/cue/token"
)

// ErrorCode categorizes rule validation failures.
type ErrorCode string

const (
	// CodeInvalidTarget indicates a target score outside [MinTarget, MaxTarget].
	CodeInvalidTarget ErrorCode = "INVALID_TARGET"

	// CodeInvalidCap indicates MaxScore below TargetScore.
	CodeInvalidCap ErrorCode = "INVALID_CAP"

	// CodeInvalidMargin indicates WinBy below 1.
	CodeInvalidMargin ErrorCode = "INVALID_MARGIN"

	// CodeInvalidPreset indicates a CUE preset document that fails the schema.
	CodeInvalidPreset ErrorCode = "INVALID_PRESET"

	// CodeUnknownPreset indicates a lookup of a preset name that does not exist.
	CodeUnknownPreset ErrorCode = "UNKNOWN_PRESET"
)

// ValidationError describes why a rule set or preset was rejected.
type ValidationError struct {
	Code    ErrorCode
	Field   string
	Message string
	Pos     token.Pos // CUE position, when the error came from a preset file
}

func (e *ValidationError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	if e.Field != "" {
		return fmt.Sprintf("%s: %s: %s", e.Code, e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsValidationError reports whether err (or anything it wraps) is a
// *ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// CodeOf returns the ErrorCode of a wrapped *ValidationError, or "".
func CodeOf(err error) ErrorCode {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Code
	}
	return ""
}
