package outputstore

import "errors"

// ErrProcessNotFound is returned by Read when the given process id has no log
// directory at all. Clear does not return it: clearing an id with no log
// directory succeeds.
var ErrProcessNotFound = errors.New("outputstore: process not found")
