package types

// OutputShape tells the publisher how a decoded field is laid out in the state tree.
type OutputShape string

const (
	// ShapeChannel nests value and status under a channel named after the field.
	ShapeChannel OutputShape = "channel"
	// ShapeFlat appends value and status directly to the parent, status with a "_status" suffix.
	ShapeFlat OutputShape = "flat"
)

const StatusOK = "OK"

// DecodedField is the result of decoding one ProcessDataField.
type DecodedField struct {
	Name     string       `json:"name"`
	ID       string       `json:"id"`
	Value    any          `json:"value,omitempty"`
	Raw      uint64       `json:"raw"`
	InRange  bool         `json:"inRange"`
	Status   string       `json:"status,omitempty"`
	Shape    OutputShape  `json:"shape"`
	ValueID  string       `json:"valueId,omitempty"`
	StatusID string       `json:"statusId,omitempty"`
	Unit     string       `json:"unit,omitempty"`
	Role     string       `json:"role,omitempty"`
	Type     SemanticType `json:"type"`

	// ErrorKind is empty on success.
	ErrorKind string `json:"error,omitempty"`
	Err       error  `json:"-"`
}

// Failed reports whether the field could not be decoded.
func (d *DecodedField) Failed() bool {
	return d.Err != nil
}
