// Package harness runs YAML scenarios against the offline invoice store.
//
// Each scenario gets a fresh data directory, executes its steps in order,
// records a trace of outcomes, and checks assertions against the final
// contents of the store.
//
// # Scenario Format
//
//	name: upsert_same_id
//	description: "Saving twice with one id keeps the second invoice"
//	steps:
//	  - op: save
//	    invoice: { id: inv-1, total: 42 }
//	  - op: save
//	    invoice: { id: inv-1, total: 50 }
//	  - op: delete
//	    id: missing
//	  - op: save
//	    invoice: { total: 1 }
//	    expect: persist_failed
//	assertions:
//	  - type: ids
//	    ids: [inv-1]
//	  - type: contains
//	    invoice: { id: inv-1, total: 50 }
//
// # Operations
//
//   - save: save one invoice
//   - save_concurrent: save every listed invoice from its own goroutine, all
//     started before any finishes
//   - delete: delete by id (a YAML number is a numeric id)
//   - clear: remove every invoice
//   - import: import the listed invoices as one legacy batch
//   - get_all: list the store, recording the count in the trace
//   - reopen: close the cached handle; the next step opens the database again
//   - block_storage: put a plain file where the data directory belongs
//   - unblock_storage: remove it again
//
// A step's expect names the outcome: ok (the default), storage_unavailable,
// persist_failed, read_failed or delete_failed.
//
// # Assertion Types
//
//   - ids: the stored ids, in store order
//   - count: the number of stored invoices
//   - contains: an invoice with the given id whose fields include the given ones
//   - absent: no invoice with the given id
//
// Traces are deterministic (steps are numbered, concurrent saves are recorded
// in listing order) so they can be compared against golden files.
package harness
