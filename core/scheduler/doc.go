// Package scheduler plans issues onto resource lanes. It orders ready issues
// by dependency readiness, priority and size, levels them over each lane's
// concurrency slots and emits start and end dates. Issues that cannot be
// planned are reported with a reason instead of an error. The package does
// no I/O apart from optional debug logging.
package scheduler
