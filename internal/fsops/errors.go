package fsops

import "errors"

// ErrPermission signals a path that resolves (after symlink evaluation)
// outside every configured allow-listed directory.
var ErrPermission = errors.New("fsops: path not in an allowed directory")

// ErrValue signals bad caller input: an invalid search pattern, an empty
// allow-list at construction time.
var ErrValue = errors.New("fsops: invalid input")

// ErrNotFound signals a path that does not exist.
var ErrNotFound = errors.New("fsops: not found")

// ErrIO signals an underlying filesystem error unrelated to policy.
var ErrIO = errors.New("fsops: io error")
