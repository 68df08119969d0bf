package pdi

import (
	"strconv"
	"strings"

	"github.com/KevinKickass/OpenIOLink/internal/types"
)

const StatusOutOfRange = "OutOfRange"

// ResolveStatus maps a raw code to the symbolic state declared on the field.
// Undeclared codes resolve to "Unknown(<code>)" so they still reach the publisher.
func ResolveStatus(raw uint64, field types.ProcessDataField) string {
	return StateName(field.States, raw)
}

// StateName is ResolveStatus for a bare state table.
func StateName(states []types.StateEntry, code uint64) string {
	if name, ok := LookupState(states, code); ok {
		return name
	}
	return unknownStatus(code)
}

// LookupState finds code in an ordered state table. The first matching entry wins.
func LookupState(states []types.StateEntry, code uint64) (string, bool) {
	for _, s := range states {
		if s.Value == code {
			return s.Name, true
		}
	}
	return "", false
}

// IsUnknownStatus reports whether status is the marker of an unmapped code.
func IsUnknownStatus(status string) bool {
	return strings.HasPrefix(status, "Unknown(") && strings.HasSuffix(status, ")")
}

func unknownStatus(code uint64) string {
	return "Unknown(" + strconv.FormatUint(code, 10) + ")"
}
