// Package offline keeps invoices on the local device while there is no
// network connection.
//
// Invoices live in the "invoices" object store of the SmartInvoiceDB
// database (schema version 1), keyed by their "id" attribute. Saving an
// invoice whose id already exists replaces it.
//
// The database handle is opened lazily by the first operation and then
// shared by every later caller for the life of the process. Callers that
// arrive while the first open is still running wait for that same open
// instead of starting their own, so the object store is created at most
// once. A failed open is not remembered; the next call tries again.
//
// Every operation returns only after its transaction has committed. Errors
// carry one of four kinds (ErrStorageUnavailable, ErrPersistFailed,
// ErrReadFailed, ErrDeleteFailed) and never resolve silently.
package offline
