// Package errors provides standardized error handling for the signal-flow runtime.
//
// # Error Classification
//
// Every error produced by the runtime belongs to one of four classes:
//
//   - Invalid: structural or configuration errors found while a graph is built
//     (duplicate names, missing components or ports, mismatched widths, out-of-range
//     channel indices, unregistered type ids, wrong endpoint types). They are fatal to
//     graph construction and are never retried.
//   - Usage: errors detected at first use which the caller avoids through the query
//     operations (popping an empty queue, reading an unconnected endpoint).
//   - Internal: broken internal consistency, such as a type registered twice under
//     conflicting definitions or a bookkeeping table missing an entry that must exist.
//   - Fatal: a failure inside block processing. The run is aborted.
//
// # Error Wrapping Pattern
//
// All error wrapping follows the standardized format:
//
//	"component.method: action failed: %w"
//
// The classified wrappers keep that format and attach the class:
//
//	errors.WrapInvalid(err, "Composite", "ConnectAudio", "port lookup")
//	errors.WrapUsage(err, "MessageQueue", "Front", "empty check")
//	errors.WrapInternal(err, "Registry", "Register", "duplicate id")
//	errors.WrapFatal(err, "Flow", "Process", "component process")
//
// Sentinels such as ErrNotFound or ErrEmptyQueue stay reachable through errors.Is
// on any wrapped error, so callers can test both the class and the cause:
//
//	if err := q.Pop(); errors.IsUsage(err) && errors.Is(err, errors.ErrEmptyQueue) {
//	    // nothing to consume this block
//	}
package errors
