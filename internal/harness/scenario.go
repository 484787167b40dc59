package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sort"

	"gopkg.in/yaml.v3"
)

// Scenario defines an offline store scenario.
type Scenario struct {
	// Name uniquely identifies this scenario.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Steps run in order against one store.
	Steps []Step `yaml:"steps"`

	// Assertions validate the final store contents.
	Assertions []Assertion `yaml:"assertions"`
}

// Step is one operation against the store.
type Step struct {
	// Op is the operation name (see Op* constants).
	Op string `yaml:"op"`

	// Invoice is the invoice to save (save).
	Invoice map[string]any `yaml:"invoice,omitempty"`

	// Invoices are saved concurrently (save_concurrent) or imported (import).
	Invoices []map[string]any `yaml:"invoices,omitempty"`

	// ID is the id to delete. A YAML number is a numeric id.
	ID any `yaml:"id,omitempty"`

	// Expect is the expected outcome, "ok" when empty. For save_concurrent
	// it applies to every save.
	Expect string `yaml:"expect,omitempty"`
}

// Assertion validates the final store contents.
type Assertion struct {
	// Type specifies the assertion type:
	// - "ids": the stored ids equal IDs, in order
	// - "count": the store holds Count invoices
	// - "contains": an invoice with Invoice's id includes Invoice's fields
	// - "absent": no invoice has ID
	Type string `yaml:"type"`

	IDs     []any          `yaml:"ids,omitempty"`
	Count   int            `yaml:"count,omitempty"`
	Invoice map[string]any `yaml:"invoice,omitempty"`
	ID      any            `yaml:"id,omitempty"`
}

// Step operations.
const (
	OpSave           = "save"
	OpSaveConcurrent = "save_concurrent"
	OpDelete         = "delete"
	OpClear          = "clear"
	OpImport         = "import"
	OpGetAll         = "get_all"
	OpReopen         = "reopen"
	OpBlockStorage   = "block_storage"
	OpUnblockStorage = "unblock_storage"
)

// Assertion type constants.
const (
	AssertIDs      = "ids"
	AssertCount    = "count"
	AssertContains = "contains"
	AssertAbsent   = "absent"
)

var validOutcomes = []string{
	"", OutcomeOK, OutcomeStorageUnavailable, OutcomePersistFailed,
	OutcomeReadFailed, OutcomeDeleteFailed, OutcomeError,
}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	// Strict field validation catches typos like "assertion:" vs "assertions:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// LoadScenarios loads every *.yaml file in dir, sorted by file name.
func LoadScenarios(dir string) ([]*Scenario, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)

	scenarios := make([]*Scenario, 0, len(paths))
	for _, p := range paths {
		s, err := LoadScenario(p)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", filepath.Base(p), err)
		}
		scenarios = append(scenarios, s)
	}
	return scenarios, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}
	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	for i, step := range s.Steps {
		if err := validateStep(i, &step); err != nil {
			return err
		}
	}
	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}
	return nil
}

func validateStep(index int, st *Step) error {
	if !slices.Contains(validOutcomes, st.Expect) {
		return fmt.Errorf("steps[%d]: unknown expect %q", index, st.Expect)
	}

	switch st.Op {
	case OpSave:
		if st.Invoice == nil {
			return fmt.Errorf("steps[%d]: invoice is required for save", index)
		}
	case OpSaveConcurrent, OpImport:
		if len(st.Invoices) == 0 {
			return fmt.Errorf("steps[%d]: invoices list is required for %s", index, st.Op)
		}
	case OpDelete:
		if st.ID == nil {
			return fmt.Errorf("steps[%d]: id is required for delete", index)
		}
	case OpClear, OpGetAll, OpReopen, OpBlockStorage, OpUnblockStorage:
	case "":
		return fmt.Errorf("steps[%d]: op is required", index)
	default:
		return fmt.Errorf("steps[%d]: unknown op %q", index, st.Op)
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	switch a.Type {
	case "":
		return fmt.Errorf("assertions[%d]: type is required", index)
	case AssertIDs:
		if a.IDs == nil {
			return fmt.Errorf("assertions[%d]: ids list is required for ids (use [] for none)", index)
		}
	case AssertCount:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative", index)
		}
	case AssertContains:
		if a.Invoice == nil {
			return fmt.Errorf("assertions[%d]: invoice is required for contains", index)
		}
		if _, ok := a.Invoice["id"]; !ok {
			return fmt.Errorf("assertions[%d]: invoice.id is required for contains", index)
		}
	case AssertAbsent:
		if a.ID == nil {
			return fmt.Errorf("assertions[%d]: id is required for absent", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
