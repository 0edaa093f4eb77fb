package loader

import "errors"

var (
	// ErrNoRoot indicates Config.Root is empty.
	ErrNoRoot = errors.New("loader: root directory is required")

	// ErrRootNotDir indicates Config.Root is not a directory.
	ErrRootNotDir = errors.New("loader: root is not a directory")

	// ErrInvalidDebounce indicates a negative Config.Debounce.
	ErrInvalidDebounce = errors.New("loader: debounce must not be negative")

	// ErrOutsideRoot indicates a key that does not name a path under the root.
	ErrOutsideRoot = errors.New("loader: key escapes root")

	// ErrExtension indicates a key whose extension is not allowed.
	ErrExtension = errors.New("loader: extension not allowed")

	// ErrNotFound indicates no file exists for a key.
	ErrNotFound = errors.New("loader: resource not found")

	// ErrDecode indicates a file could not be decoded.
	ErrDecode = errors.New("loader: decode failed")

	// ErrNilTarget indicates a Watcher was created without a Forgetter.
	ErrNilTarget = errors.New("loader: watcher target is nil")
)
