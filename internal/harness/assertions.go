package harness

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/roach88/smartinvoice/internal/offline"
	"github.com/roach88/smartinvoice/internal/record"
)

// AssertionError is returned when an assertion fails.
// It includes the final contents to help debug the failure.
type AssertionError struct {
	Type     string          // Assertion type for categorization
	Expected string          // Human-readable expected outcome
	Actual   string          // Human-readable actual outcome
	Final    []record.Record // Store contents for context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	fmt.Fprintf(&buf, "\nStore contents:\n")
	for i, rec := range e.Final {
		data, err := record.Marshal(rec)
		if err != nil {
			fmt.Fprintf(&buf, "  [%d] <%v>\n", i+1, err)
			continue
		}
		fmt.Fprintf(&buf, "  [%d] %s\n", i+1, data)
	}
	return buf.String()
}

// EvaluateAssertions checks every assertion against the final store
// contents and returns one message per failure.
func EvaluateAssertions(final []record.Record, assertions []Assertion) []string {
	var errs []string
	for i, a := range assertions {
		var err error
		switch a.Type {
		case AssertIDs:
			err = assertIDs(final, a)
		case AssertCount:
			err = assertCount(final, a)
		case AssertContains:
			err = assertContains(final, a)
		case AssertAbsent:
			err = assertAbsent(final, a)
		default:
			err = fmt.Errorf("unknown assertion type %q", a.Type)
		}
		if err != nil {
			errs = append(errs, fmt.Sprintf("assertions[%d]: %v", i, err))
		}
	}
	return errs
}

// assertIDs checks the stored ids, in order. Kinds matter: 1 and "1" differ.
func assertIDs(final []record.Record, a Assertion) error {
	want := make([]record.Key, len(a.IDs))
	for i, id := range a.IDs {
		_, k, err := toKey(id)
		if err != nil {
			return fmt.Errorf("ids[%d]: %w", i, err)
		}
		want[i] = k
	}

	got := make([]record.Key, len(final))
	for i, rec := range final {
		k, err := rec.Key(offline.KeyPath)
		if err != nil {
			return err
		}
		got[i] = k
	}

	if len(got) == len(want) {
		same := true
		for i := range got {
			if !got[i].Equal(want[i]) || got[i].Kind() != want[i].Kind() {
				same = false
				break
			}
		}
		if same {
			return nil
		}
	}

	return &AssertionError{
		Type:     AssertIDs,
		Expected: formatKeys(want),
		Actual:   formatKeys(got),
		Final:    final,
	}
}

func assertCount(final []record.Record, a Assertion) error {
	if len(final) == a.Count {
		return nil
	}
	return &AssertionError{
		Type:     AssertCount,
		Expected: fmt.Sprintf("%d invoice(s)", a.Count),
		Actual:   fmt.Sprintf("%d invoice(s)", len(final)),
		Final:    final,
	}
}

// assertContains finds the invoice by id and checks the expected fields
// (subset match).
func assertContains(final []record.Record, a Assertion) error {
	want, err := toRecord(a.Invoice)
	if err != nil {
		return err
	}
	key, err := want.Key(offline.KeyPath)
	if err != nil {
		return err
	}

	rec, ok := findByKey(final, key)
	if !ok {
		return &AssertionError{
			Type:     AssertContains,
			Expected: fmt.Sprintf("invoice %s", formatKey(key)),
			Actual:   "not stored",
			Final:    final,
		}
	}

	for field, wantVal := range want {
		gotVal, ok := rec[field]
		if !ok || !reflect.DeepEqual(gotVal, wantVal) {
			return &AssertionError{
				Type:     AssertContains,
				Expected: fmt.Sprintf("invoice %s field %q = %v", formatKey(key), field, wantVal),
				Actual:   fmt.Sprintf("%v", gotVal),
				Final:    final,
			}
		}
	}
	return nil
}

func assertAbsent(final []record.Record, a Assertion) error {
	_, key, err := toKey(a.ID)
	if err != nil {
		return err
	}
	if _, ok := findByKey(final, key); !ok {
		return nil
	}
	return &AssertionError{
		Type:     AssertAbsent,
		Expected: fmt.Sprintf("no invoice %s", formatKey(key)),
		Actual:   "stored",
		Final:    final,
	}
}

func findByKey(recs []record.Record, key record.Key) (record.Record, bool) {
	for _, rec := range recs {
		k, err := rec.Key(offline.KeyPath)
		if err == nil && k.Equal(key) {
			return rec, true
		}
	}
	return nil, false
}

// formatKey quotes string keys so 1 and "1" read differently.
func formatKey(k record.Key) string {
	if k.Kind() == record.KeyString {
		return fmt.Sprintf("%q", k.Text())
	}
	return k.String()
}

func formatKeys(keys []record.Key) string {
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = formatKey(k)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
