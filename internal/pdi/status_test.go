package pdi

import (
	"testing"

	"github.com/KevinKickass/OpenIOLink/internal/types"
	"github.com/stretchr/testify/assert"
)

var portStates = []types.StateEntry{
	{Value: 0, Name: "Not connected"},
	{Value: 1, Name: "Preoperate"},
	{Value: 2, Name: "Operate"},
	{Value: 3, Name: "Communication error"},
}

func TestResolveStatus(t *testing.T) {
	field := types.ProcessDataField{Name: "state", Encoding: types.EncodingEnumerated, States: portStates}

	assert.Equal(t, "Operate", ResolveStatus(2, field))
	assert.Equal(t, "Not connected", ResolveStatus(0, field))
	assert.Equal(t, "Unknown(7)", ResolveStatus(7, field))
	assert.True(t, IsUnknownStatus(ResolveStatus(7, field)))
	assert.False(t, IsUnknownStatus("Operate"))
}

func TestLookupStateFirstMatchWins(t *testing.T) {
	states := []types.StateEntry{{Value: 1, Name: "first"}, {Value: 1, Name: "second"}}

	name, ok := LookupState(states, 1)
	assert.True(t, ok)
	assert.Equal(t, "first", name)

	_, ok = LookupState(nil, 1)
	assert.False(t, ok)
}

func TestIDString(t *testing.T) {
	tests := map[string]string{
		"Temperature":           "temperature",
		"Temperature Vorlauf":   "temperature_vorlauf",
		"Flow (l/min)":          "flow__l_min_",
		"a&b#c,d+e$f~g%h.i":     "a_b_c_d_e_f_g_h_i",
		`q'u"o:t*e?s<>{}`:       "q_u_o_t_e_s____",
		"Tab\tNew\nLine":        "tab_new_line",
		`back\slash`:            "back_slash",
		"Relative Humidity [%]": "relative_humidity_[_]",
		"Temp\u00a0Vorlauf":     "temp_vorlauf",
		"a\u2003b\u3000c\ufeff": "a_b_c_",
		"v\vt":                  "v_t",
	}
	for in, want := range tests {
		assert.Equal(t, want, IDString(in), in)
	}
}
