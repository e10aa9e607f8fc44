package app

import "time"

// Operation tracks one CLI invocation. Its ID tags every log line the
// invocation writes, so interleaved runs can be told apart in syncmeta.log.
type Operation struct {
	ID     string
	Name   string
	Status string // "success" or "error"
}

// NewOperation creates an operation named after the CLI command, started at now.
func NewOperation(name string, now time.Time) *Operation {
	return &Operation{
		ID:     now.UTC().Format("20060102T150405Z"),
		Name:   name,
		Status: "success",
	}
}

// Fail marks the operation as failed.
func (op *Operation) Fail() {
	op.Status = "error"
}

// Failed reports whether Fail was called.
func (op *Operation) Failed() bool {
	return op.Status == "error"
}
