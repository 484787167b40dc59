package harness

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	applog "github.com/roach88/smartinvoice/internal/log"
	"github.com/roach88/smartinvoice/internal/offline"
	"github.com/roach88/smartinvoice/internal/record"
)

// Harness executes scenario steps against one offline store.
type Harness struct {
	dataDir string
	store   *offline.Store
	seq     int64
	logger  *slog.Logger
}

// Run executes a scenario and returns the result.
//
// Each scenario runs in a fresh temporary data directory, removed on return.
//
// Execution flow:
// 1. Create a data directory and a store over it
// 2. Execute steps, comparing each outcome with its expectation
// 3. Read the final contents
// 4. Evaluate assertions
func Run(ctx context.Context, scenario *Scenario) (*Result, error) {
	root, err := os.MkdirTemp("", "smartinvoice-harness-")
	if err != nil {
		return nil, fmt.Errorf("failed to create data dir: %w", err)
	}
	defer os.RemoveAll(root)

	logger := applog.Discard() // Suppress logs in tests
	dataDir := filepath.Join(root, "data")
	h := &Harness{
		dataDir: dataDir,
		store:   offline.New(dataDir, offline.WithLogger(logger)),
		logger:  logger,
	}
	defer h.store.Close()

	result := NewResult()
	for i, step := range scenario.Steps {
		if err := h.execute(ctx, i, step, result); err != nil {
			return nil, fmt.Errorf("step %d (%s): %w", i, step.Op, err)
		}
	}

	final, err := h.store.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read final contents: %w", err)
	}
	result.Final = final

	for _, msg := range EvaluateAssertions(final, scenario.Assertions) {
		result.AddError(msg)
	}
	return result, nil
}

// execute runs one step. Store failures are outcomes, not errors; an error
// here means the step itself could not be carried out.
func (h *Harness) execute(ctx context.Context, index int, step Step, result *Result) error {
	expect := step.Expect
	if expect == "" {
		expect = OutcomeOK
	}
	check := func(ev TraceEvent) {
		result.AddTrace(ev)
		if ev.Outcome != expect {
			result.AddError(fmt.Sprintf("steps[%d] %s: expected %s, got %s", index, step.Op, expect, ev.Outcome))
		}
	}

	switch step.Op {
	case OpSave:
		rec, err := toRecord(step.Invoice)
		if err != nil {
			return err
		}
		check(TraceEvent{Seq: h.next(), Op: step.Op, ID: rec[offline.KeyPath], Outcome: outcomeOf(h.store.Save(ctx, rec))})

	case OpSaveConcurrent:
		recs := make([]record.Record, len(step.Invoices))
		for i, inv := range step.Invoices {
			rec, err := toRecord(inv)
			if err != nil {
				return fmt.Errorf("invoices[%d]: %w", i, err)
			}
			recs[i] = rec
		}

		// Each goroutine reports through its own slot; errgroup only joins.
		errs := make([]error, len(recs))
		var g errgroup.Group
		for i, rec := range recs {
			g.Go(func() error {
				errs[i] = h.store.Save(ctx, rec)
				return nil
			})
		}
		_ = g.Wait()

		for i, rec := range recs {
			check(TraceEvent{Seq: h.next(), Op: OpSave, ID: rec[offline.KeyPath], Outcome: outcomeOf(errs[i])})
		}

	case OpDelete:
		idVal, key, err := toKey(step.ID)
		if err != nil {
			return err
		}
		check(TraceEvent{Seq: h.next(), Op: step.Op, ID: idVal, Outcome: outcomeOf(h.store.Delete(ctx, key))})

	case OpClear:
		check(TraceEvent{Seq: h.next(), Op: step.Op, Outcome: outcomeOf(h.store.Clear(ctx))})

	case OpImport:
		recs := make(record.Array, len(step.Invoices))
		for i, inv := range step.Invoices {
			rec, err := toRecord(inv)
			if err != nil {
				return fmt.Errorf("invoices[%d]: %w", i, err)
			}
			recs[i] = rec
		}
		data, err := record.Marshal(recs)
		if err != nil {
			return err
		}
		n, err := h.store.ImportLegacy(ctx, bytes.NewReader(data))
		ev := TraceEvent{Seq: h.next(), Op: step.Op, Outcome: outcomeOf(err)}
		if err == nil {
			ev.Count = &n
		}
		check(ev)

	case OpGetAll:
		all, err := h.store.GetAll(ctx)
		ev := TraceEvent{Seq: h.next(), Op: step.Op, Outcome: outcomeOf(err)}
		if err == nil {
			n := len(all)
			ev.Count = &n
		}
		check(ev)

	case OpReopen:
		if err := h.store.Close(); err != nil {
			return fmt.Errorf("close: %w", err)
		}

	case OpBlockStorage:
		if err := os.MkdirAll(filepath.Dir(h.dataDir), 0o755); err != nil {
			return err
		}
		if err := os.WriteFile(h.dataDir, []byte("blocked"), 0o644); err != nil {
			return fmt.Errorf("block storage (only valid before the first open): %w", err)
		}

	case OpUnblockStorage:
		if err := os.Remove(h.dataDir); err != nil {
			return fmt.Errorf("unblock storage: %w", err)
		}

	default:
		return fmt.Errorf("unknown op %q", step.Op)
	}

	h.logger.Debug("step completed", "step", index, "op", step.Op)
	return nil
}

func (h *Harness) next() int64 {
	h.seq++
	return h.seq
}

// outcomeOf names an operation's result by its outermost error kind.
func outcomeOf(err error) string {
	if err == nil {
		return OutcomeOK
	}
	var e *offline.Error
	if !errors.As(err, &e) {
		return OutcomeError
	}
	switch e.Kind {
	case offline.ErrStorageUnavailable:
		return OutcomeStorageUnavailable
	case offline.ErrPersistFailed:
		return OutcomePersistFailed
	case offline.ErrReadFailed:
		return OutcomeReadFailed
	case offline.ErrDeleteFailed:
		return OutcomeDeleteFailed
	default:
		return OutcomeError
	}
}

// toRecord converts a YAML-parsed invoice into a record.
func toRecord(m map[string]any) (record.Record, error) {
	v, err := record.FromGo(m)
	if err != nil {
		return nil, err
	}
	return v.(record.Object), nil
}

// toKey converts a YAML-parsed id into its record value and key.
func toKey(v any) (record.Value, record.Key, error) {
	val, err := record.FromGo(v)
	if err != nil {
		return nil, record.Key{}, err
	}
	key, err := record.KeyOf(val)
	if err != nil {
		return nil, record.Key{}, err
	}
	return val, key, nil
}
