// Package download implements the bounded download job queue and its
// single background worker.
//
// The queue holds every task of the session in memory, terminal ones
// included, and mirrors pending and failed tasks to a snapshot document
// so they survive restarts. Duplicate work is suppressed twice: a disk
// probe for an existing file at enqueue time, and a pending-task id
// check under the queue lock. Failed tasks stay failed; there is no
// automatic retry.
package download
