package executor

import "errors"

// ErrValue signals bad caller input at the executor layer: disallowed
// program, non-absolute working directory, empty id list, invalid regex.
var ErrValue = errors.New("executor: invalid input")

// ErrPermission signals the OS refused to spawn the process.
var ErrPermission = errors.New("executor: permission denied")

// ErrCommandExecution signals a spawn failure unrelated to the allow-list
// (program resolved by the allow-list check but the OS could not run it).
var ErrCommandExecution = errors.New("executor: command execution failed")

// ErrCommandTimeout signals a synchronous Execute call's timeout expired.
var ErrCommandTimeout = errors.New("executor: command timed out")

// ErrProcessNotFound signals an unknown process id.
var ErrProcessNotFound = errors.New("executor: process not found")

// ErrProcessControl signals a stop/control operation was rejected.
var ErrProcessControl = errors.New("executor: process control error")

// ErrProcessClean signals a partial failure in Clean; inspect the returned
// per-id result map.
var ErrProcessClean = errors.New("executor: process clean error")

// ErrOutputRetrieval signals an I/O error reading from the Output Store.
var ErrOutputRetrieval = errors.New("executor: output retrieval error")
