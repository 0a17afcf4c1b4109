// Package plan loads batch refactoring plans and applies them file by file.
package plan

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"

	"github.com/Sumatoshi-tech/phprefactor/pkg/refactor"
)

//go:embed plan-schema.json
var schemaJSON []byte

// ErrInvalidPlan is returned when a plan does not match the plan schema.
var ErrInvalidPlan = errors.New("invalid plan")

// Operation is one refactoring step of a plan. Which fields apply depends on Op.
type Operation struct {
	Op        string `json:"op"                   yaml:"op"`
	File      string `json:"file"                 yaml:"file"`
	OldName   string `json:"old_name,omitempty"   yaml:"old_name,omitempty"`
	NewName   string `json:"new_name,omitempty"   yaml:"new_name,omitempty"`
	Range     string `json:"range,omitempty"      yaml:"range,omitempty"`
	Name      string `json:"name,omitempty"       yaml:"name,omitempty"`
	Line      uint   `json:"line,omitempty"       yaml:"line,omitempty"`
	StartLine uint   `json:"start_line,omitempty" yaml:"start_line,omitempty"`
	EndLine   uint   `json:"end_line,omitempty"   yaml:"end_line,omitempty"`
}

// String renders the operation for summaries.
func (o Operation) String() string {
	switch o.Op {
	case refactor.OpRenameVariable:
		return fmt.Sprintf("%s %s -> %s (line %d)", o.Op, o.OldName, o.NewName, o.Line)
	case refactor.OpExtractVariable:
		return fmt.Sprintf("%s %s at %s", o.Op, o.Name, o.Range)
	default:
		return fmt.Sprintf("%s %s (lines %d-%d)", o.Op, o.Name, o.StartLine, o.EndLine)
	}
}

// Plan is an ordered list of operations.
type Plan struct {
	Operations []Operation `json:"operations" yaml:"operations"`
}

// Load reads a YAML or JSON plan file. Relative operation paths are resolved
// against the directory of the plan file.
func Load(path string) (*Plan, error) {
	//nolint:gosec // plan path is user-supplied by design.
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read plan: %w", err)
	}

	p, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	base := filepath.Dir(path)

	for i := range p.Operations {
		if !filepath.IsAbs(p.Operations[i].File) {
			p.Operations[i].File = filepath.Join(base, p.Operations[i].File)
		}
	}

	return p, nil
}

// Parse decodes and validates a plan. JSON input is accepted as YAML.
func Parse(data []byte) (*Plan, error) {
	var raw any

	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode plan: %w", err)
	}

	if err := Validate(raw); err != nil {
		return nil, err
	}

	var p Plan

	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("decode plan: %w", err)
	}

	return &p, nil
}

// Validate checks a decoded document against the plan schema.
func Validate(doc any) error {
	result, err := gojsonschema.Validate(
		gojsonschema.NewBytesLoader(schemaJSON),
		gojsonschema.NewGoLoader(doc),
	)
	if err != nil {
		return fmt.Errorf("validate plan: %w", err)
	}

	if result.Valid() {
		return nil
	}

	problems := make([]string, 0, len(result.Errors()))
	for _, verr := range result.Errors() {
		problems = append(problems, verr.Field()+": "+verr.Description())
	}

	return fmt.Errorf("%w: %s", ErrInvalidPlan, strings.Join(problems, "; "))
}
