package failure

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"syscall"
)

var (
	ErrSourceMissing      = errors.New("source missing")
	ErrSourceNotDirectory = errors.New("source is not a directory")
	ErrSourceUnreadable   = errors.New("source unreadable")
	ErrBucketCreate       = errors.New("bucket creation failed")
	ErrLocked             = errors.New("destination locked by another run")
	ErrRelocate           = errors.New("relocation failed")
)

// Kind classifies a per-file failure.
type Kind string

const (
	KindPermission Kind = "permission"
	KindNoSpace    Kind = "no_space"
	KindVanished   Kind = "vanished"
	KindIO         Kind = "io"
)

// Wrap builds an error message that includes stage context while tagging it with
// the provided marker. The marker stays reachable through errors.Is, as does err.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrRelocate
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// IsFatal reports whether err must abort the whole run.
func IsFatal(err error) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, ErrSourceMissing),
		errors.Is(err, ErrSourceNotDirectory),
		errors.Is(err, ErrSourceUnreadable),
		errors.Is(err, ErrBucketCreate),
		errors.Is(err, ErrLocked):
		return true
	default:
		return false
	}
}

// KindOf maps a per-file error to its reporting kind.
func KindOf(err error) Kind {
	switch {
	case errors.Is(err, fs.ErrPermission):
		return KindPermission
	case errors.Is(err, syscall.ENOSPC):
		return KindNoSpace
	case errors.Is(err, fs.ErrNotExist):
		return KindVanished
	default:
		return KindIO
	}
}

// Hint returns a short operator-facing next step for kind.
func Hint(kind Kind) string {
	switch kind {
	case KindPermission:
		return "check read permission on the source and write permission on the destination"
	case KindNoSpace:
		return "free space on the destination volume and rerun"
	case KindVanished:
		return "file was removed or renamed while the run was in progress"
	default:
		return "check logs for details"
	}
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "sort failure"
	}
	return strings.Join(parts, ": ")
}
