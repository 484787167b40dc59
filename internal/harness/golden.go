package harness

import (
	"context"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/smartinvoice/internal/record"
)

// Snapshot returns the canonical JSON of a scenario run: its trace and the
// final store contents. Identical runs produce identical bytes.
func Snapshot(name string, result *Result) ([]byte, error) {
	trace := make(record.Array, len(result.Trace))
	for i, ev := range result.Trace {
		obj := record.Object{
			"seq":     record.Int(ev.Seq),
			"op":      record.String(ev.Op),
			"outcome": record.String(ev.Outcome),
		}
		if ev.ID != nil {
			obj["id"] = ev.ID
		}
		if ev.Count != nil {
			obj["count"] = record.Int(*ev.Count)
		}
		trace[i] = obj
	}

	final := make(record.Array, len(result.Final))
	for i, rec := range result.Final {
		final[i] = rec
	}

	return record.Marshal(record.Object{
		"scenario_name": record.String(name),
		"trace":         trace,
		"final":         final,
	})
}

// RunWithGolden executes a scenario and compares its snapshot against
// testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(context.Background(), scenario)
	if err != nil {
		return nil, err
	}

	snapshot, err := Snapshot(scenario.Name, result)
	if err != nil {
		return nil, err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenario.Name, snapshot)

	return result, nil
}
