package devices

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	_ "embed"

	"github.com/KevinKickass/OpenIOLink/internal/pdi"
	"github.com/KevinKickass/OpenIOLink/internal/types"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schema/device-spec-v1.json
var deviceSpecSchemaJSON string

// Issue is one violated rule of a device specification.
type Issue struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
	Path    string `json:"path,omitempty"` // JSON Pointer-ish ("/processDataIn/2/bitWidth")
}

// SpecValidationError lists every problem found in a specification, so authors
// can fix them in one pass.
type SpecValidationError struct {
	Spec   string  `json:"spec"`
	Issues []Issue `json:"issues"`
}

func (e *SpecValidationError) Error() string {
	msgs := make([]string, 0, len(e.Issues))
	for _, is := range e.Issues {
		if is.Path != "" {
			msgs = append(msgs, fmt.Sprintf("%s %s: %s", is.Code, is.Path, is.Message))
		} else {
			msgs = append(msgs, fmt.Sprintf("%s: %s", is.Code, is.Message))
		}
	}
	name := e.Spec
	if name == "" {
		name = "<unnamed>"
	}
	return fmt.Sprintf("device spec %s invalid (%d issues): %s", name, len(e.Issues), strings.Join(msgs, "; "))
}

// HasCode reports whether an issue with the given code was recorded.
func (e *SpecValidationError) HasCode(code string) bool {
	for _, is := range e.Issues {
		if is.Code == code {
			return true
		}
	}
	return false
}

func (e *SpecValidationError) add(is Issue) {
	e.Issues = append(e.Issues, is)
}

type Validator struct {
	schema *jsonschema.Schema
}

func NewValidator() (*Validator, error) {
	compiler := jsonschema.NewCompiler()

	if err := compiler.AddResource("device-spec-v1.json",
		strings.NewReader(deviceSpecSchemaJSON)); err != nil {
		return nil, fmt.Errorf("failed to add schema resource: %w", err)
	}

	schema, err := compiler.Compile("device-spec-v1.json")
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema: %w", err)
	}

	return &Validator{schema: schema}, nil
}

// Parse checks a JSON document against the schema and the semantic rules and
// returns the specification only if both pass.
func (v *Validator) Parse(data []byte) (*types.DeviceSpecification, error) {
	if err := v.ValidateDocument(data); err != nil {
		var verr *SpecValidationError
		if errors.As(err, &verr) {
			v.mergeSemanticIssues(data, verr)
		}
		return nil, err
	}

	var spec types.DeviceSpecification
	if err := json.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal spec: %w", err)
	}

	if err := v.ValidateSpec(&spec); err != nil {
		return nil, err
	}
	return &spec, nil
}

// mergeSemanticIssues adds the semantic issues of a document that already
// failed the schema, as far as it still decodes.
func (v *Validator) mergeSemanticIssues(data []byte, verr *SpecValidationError) {
	var spec types.DeviceSpecification
	if err := json.Unmarshal(data, &spec); err != nil {
		return
	}
	var semantic *SpecValidationError
	if errors.As(validateSpec(&spec), &semantic) {
		verr.Issues = append(verr.Issues, semantic.Issues...)
	}
}

// ValidateDocument runs the JSON schema over a raw document.
func (v *Validator) ValidateDocument(data []byte) error {
	var doc interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}

	err := v.schema.Validate(doc)
	if err == nil {
		return nil
	}

	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return fmt.Errorf("schema validation failed: %w", err)
	}

	name := ""
	if m, ok := doc.(map[string]interface{}); ok {
		name, _ = m["deviceSpecName"].(string)
	}
	verr := &SpecValidationError{Spec: name}
	collectSchemaIssues(ve, verr)
	return verr
}

func collectSchemaIssues(ve *jsonschema.ValidationError, verr *SpecValidationError) {
	if len(ve.Causes) == 0 {
		verr.add(Issue{Code: "SCHEMA", Message: ve.Message, Path: ve.InstanceLocation})
		return
	}
	for _, cause := range ve.Causes {
		collectSchemaIssues(cause, verr)
	}
}

// ValidateSpec checks the invariants the schema cannot express.
func (v *Validator) ValidateSpec(spec *types.DeviceSpecification) error {
	return validateSpec(spec)
}

func validateSpec(spec *types.DeviceSpecification) error {
	verr := &SpecValidationError{Spec: spec.Name}

	if strings.TrimSpace(spec.Name) == "" {
		verr.add(Issue{Code: "SPEC_001", Message: "deviceSpecName is required", Path: "/deviceSpecName"})
	}
	if len(spec.Fields) == 0 {
		verr.add(Issue{Code: "SPEC_002", Message: "processDataIn must declare at least one field", Path: "/processDataIn"})
	}

	ids := make(map[string]int, len(spec.Fields))
	for i := range spec.Fields {
		f := &spec.Fields[i]
		path := fmt.Sprintf("/processDataIn/%d", i)
		field := func(code, msg, sub string) {
			verr.add(Issue{Code: code, Message: msg, Field: f.Name, Path: path + sub})
		}

		if strings.TrimSpace(f.Name) == "" {
			field("FIELD_010", "field name is required", "/name")
		}
		if f.BitWidth == 0 || f.BitWidth > 64 {
			field("FIELD_011", fmt.Sprintf("bitWidth %d out of range 1..64", f.BitWidth), "/bitWidth")
		}
		if !f.Encoding.Valid() {
			field("FIELD_012", fmt.Sprintf("unknown encoding %q", f.Encoding), "/encoding")
		}
		if !f.Output.Type.Valid() {
			field("FIELD_013", fmt.Sprintf("unknown semantic type %q", f.Output.Type), "/stateConfiguration/type")
		}
		if f.Encoding.Valid() && f.Output.Type.Valid() && !f.Encoding.Compatible(f.Output.Type) {
			field("FIELD_014", fmt.Sprintf("%s encoding cannot be published as %s", f.Encoding, f.Output.Type), "/stateConfiguration/type")
		}
		if f.Encoding == types.EncodingEnumerated && len(f.States) == 0 {
			field("FIELD_015", "enumerated field must declare states", "/states")
		}
		if !f.HasOutput() {
			field("FIELD_016", "at least one of generateValue, generateStatus, generateChannel must be set", "/stateConfiguration")
		}
		if spec.ProcessDataLength > 0 && f.End() > spec.ProcessDataLength {
			field("FIELD_017", fmt.Sprintf("bits %d..%d exceed process data length %d", f.BitOffset, f.End(), spec.ProcessDataLength), "/bitOffset")
		}
		if f.MinValue != nil && f.MaxValue != nil && *f.MinValue > *f.MaxValue {
			field("FIELD_018", fmt.Sprintf("minValue %v greater than maxValue %v", *f.MinValue, *f.MaxValue), "/minValue")
		}
		if f.Clamp && f.MinValue == nil && f.MaxValue == nil {
			field("FIELD_019", "clamp requires minValue or maxValue", "/clamp")
		}

		id := pdi.IDString(f.DisplayName())
		if prev, dup := ids[id]; dup {
			field("FIELD_020", fmt.Sprintf("published id %q already used by field %d", id, prev), "/stateConfiguration/name")
		} else {
			ids[id] = i
		}
	}

	for i := range spec.Fields {
		a := &spec.Fields[i]
		if a.Alias || a.BitWidth == 0 {
			continue
		}
		for j := i + 1; j < len(spec.Fields); j++ {
			b := &spec.Fields[j]
			if b.Alias || b.BitWidth == 0 {
				continue
			}
			if a.BitOffset < b.End() && b.BitOffset < a.End() {
				verr.add(Issue{
					Code:    "FIELD_030",
					Message: fmt.Sprintf("bits %d..%d overlap field %q (bits %d..%d)", b.BitOffset, b.End(), a.Name, a.BitOffset, a.End()),
					Field:   b.Name,
					Path:    fmt.Sprintf("/processDataIn/%d/bitOffset", j),
				})
			}
		}
	}

	if len(verr.Issues) > 0 {
		return verr
	}
	return nil
}
