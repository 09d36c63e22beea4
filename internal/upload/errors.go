package upload

import (
	"errors"
	"fmt"

	"github.com/magheya/lds-backend/internal/apperr"
)

// Upload failure reasons.
const (
	ReasonTooLarge  = "too_large"
	ReasonPartial   = "partial"
	ReasonNoFile    = "no_file"
	ReasonNoTmpDir  = "no_tmp_dir"
	ReasonCantWrite = "cant_write"
	ReasonUnknown   = "unknown"
)

var reasonMessages = map[string]string{
	ReasonTooLarge:  "the uploaded file exceeds the maximum size",
	ReasonPartial:   "the uploaded file was only partially uploaded",
	ReasonNoFile:    "no file was uploaded",
	ReasonNoTmpDir:  "missing a temporary folder",
	ReasonCantWrite: "failed to write file",
	ReasonUnknown:   "unknown upload error",
}

// Error is a failed upload. It matches apperr.ErrUpload.
type Error struct {
	Reason string
	Err    error
}

func (e *Error) Error() string {
	msg, ok := reasonMessages[e.Reason]
	if !ok {
		msg = reasonMessages[ReasonUnknown]
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", apperr.ErrUpload, msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", apperr.ErrUpload, msg)
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool { return target == apperr.ErrUpload }

// ReasonOf returns the reason of an upload error, or "" when err is not one.
func ReasonOf(err error) string {
	var uerr *Error
	if errors.As(err, &uerr) {
		return uerr.Reason
	}
	return ""
}
