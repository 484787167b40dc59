package harness

import "github.com/roach88/smartinvoice/internal/record"

// Outcome names recorded in traces and used by step expectations.
const (
	OutcomeOK                 = "ok"
	OutcomeStorageUnavailable = "storage_unavailable"
	OutcomePersistFailed      = "persist_failed"
	OutcomeReadFailed         = "read_failed"
	OutcomeDeleteFailed       = "delete_failed"
	OutcomeError              = "error" // any other failure
)

// TraceEvent records what one operation did.
type TraceEvent struct {
	Seq     int64        `json:"seq"`
	Op      string       `json:"op"`
	ID      record.Value `json:"id,omitempty"`
	Count   *int         `json:"count,omitempty"` // get_all and import
	Outcome string       `json:"outcome"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true if every step matched its expectation and every
	// assertion held.
	Pass bool `json:"pass"`

	// Trace contains one event per operation, in step order.
	Trace []TraceEvent `json:"trace"`

	// Errors contains failure messages. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// Final is the store contents after the last step.
	Final []record.Record `json:"final"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError adds a failure message and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddTrace appends an event to the trace.
func (r *Result) AddTrace(ev TraceEvent) {
	r.Trace = append(r.Trace, ev)
}
