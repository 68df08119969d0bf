// Package pdi decodes IO-Link process data (PDI) into typed values using a
// declarative device specification.
//
// The package is pure: it performs no I/O, keeps no state between calls and
// never logs. Callers decide how to surface failures.
package pdi

import (
	"errors"

	"github.com/KevinKickass/OpenIOLink/internal/types"
)

// Result is the outcome of decoding one buffer against one specification.
type Result struct {
	Spec     string               `json:"spec"`
	Data     string               `json:"data"`
	Fields   []types.DecodedField `json:"fields"`
	Failures []*FieldError        `json:"-"`
}

// OK reports whether every field decoded.
func (r *Result) OK() bool {
	return len(r.Failures) == 0
}

// Field returns the decoded field with the given id.
func (r *Result) Field(id string) (types.DecodedField, bool) {
	for _, f := range r.Fields {
		if f.ID == id {
			return f, true
		}
	}
	return types.DecodedField{}, false
}

// Decode parses the hex process data and decodes it against spec.
// Only a malformed buffer or a missing spec fails the call; per-field problems
// are reported in the result and do not stop the remaining fields.
func Decode(data string, spec *types.DeviceSpecification) (*Result, error) {
	buf, err := ParseBuffer(data)
	if err != nil {
		return nil, err
	}
	return DecodeBuffer(buf, spec)
}

// DecodeBuffer decodes an already parsed buffer.
func DecodeBuffer(buf Buffer, spec *types.DeviceSpecification) (*Result, error) {
	if spec == nil {
		return nil, ErrNoSpec
	}

	res := &Result{
		Spec:   spec.Name,
		Data:   buf.String(),
		Fields: make([]types.DecodedField, 0, len(spec.Fields)),
	}
	for _, field := range spec.Fields {
		df := decodeField(buf, field)
		if df.Err != nil {
			var fe *FieldError
			if errors.As(df.Err, &fe) {
				res.Failures = append(res.Failures, fe)
			}
		}
		res.Fields = append(res.Fields, df)
	}
	return res, nil
}

func decodeField(buf Buffer, field types.ProcessDataField) types.DecodedField {
	sc := field.Output
	out := types.DecodedField{
		Name:    field.DisplayName(),
		ID:      IDString(field.DisplayName()),
		Unit:    sc.Unit,
		Role:    sc.Role,
		Type:    sc.Type,
		InRange: true,
	}
	out.Shape, out.ValueID, out.StatusID = shapeOf(field, out.ID)

	if !field.HasOutput() {
		return failed(out, field, ErrNoOutput)
	}

	raw, err := ExtractBits(buf, field.BitOffset, field.BitWidth)
	if err != nil {
		return failed(out, field, err)
	}
	out.Raw = raw

	enumerated := field.Encoding == types.EncodingEnumerated
	if sc.GenerateValue || (sc.GenerateStatus && !enumerated) {
		v, ok, err := ScaleAndType(raw, field)
		if err != nil {
			return failed(out, field, err)
		}
		if sc.GenerateValue {
			out.Value = v
		}
		out.InRange = ok
	}

	switch {
	case enumerated:
		out.Status = ResolveStatus(raw, field)
	case sc.GenerateStatus && !out.InRange:
		out.Status = StatusOutOfRange
	case sc.GenerateStatus:
		out.Status = types.StatusOK
	}
	return out
}

// shapeOf derives where value and status are published relative to the parent id.
func shapeOf(field types.ProcessDataField, id string) (types.OutputShape, string, string) {
	sc := field.Output
	// Enumerated fields always carry a status so unmapped codes stay visible.
	withStatus := sc.GenerateStatus || field.Encoding == types.EncodingEnumerated
	var valueID, statusID string
	if sc.GenerateChannel {
		if sc.GenerateValue {
			valueID = id + ".value"
		}
		if withStatus {
			statusID = id + ".status"
		}
		return types.ShapeChannel, valueID, statusID
	}
	if sc.GenerateValue {
		valueID = id
	}
	if withStatus {
		statusID = id + "_status"
	}
	return types.ShapeFlat, valueID, statusID
}

func failed(out types.DecodedField, field types.ProcessDataField, err error) types.DecodedField {
	fe := &FieldError{Field: field.Name, Err: err}
	out.Value = nil
	out.InRange = false
	out.Status = fe.Kind()
	out.ErrorKind = fe.Kind()
	out.Err = fe
	return out
}
