// Package iolink holds the IO-Link master and port information that surrounds
// the process data: label tables, unit conversions and the state tree layout
// of a port.
package iolink

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/KevinKickass/OpenIOLink/internal/pdi"
	"github.com/KevinKickass/OpenIOLink/internal/types"
	"github.com/shopspring/decimal"
)

var ErrUnsupportedMaster = errors.New("unsupported IO-Link master")

// Communication mode reported by the master for a port.
var ComSpeeds = []types.StateEntry{
	{Value: 0, Name: "COM1 (4.8 kBaud)"},
	{Value: 1, Name: "COM2 (38.4 kBaud)"},
	{Value: 2, Name: "COM3 (230.4 kBaud)"},
}

var DeviceStatuses = []types.StateEntry{
	{Value: 0, Name: "Not connected"},
	{Value: 1, Name: "Preoperate"},
	{Value: 2, Name: "Operate"},
	{Value: 3, Name: "Communication error"},
}

func ComSpeedLabel(code uint64) string {
	return pdi.StateName(ComSpeeds, code)
}

func DeviceStatusLabel(code uint64) string {
	return pdi.StateName(DeviceStatuses, code)
}

// CycleTimeMs converts the master cycle time from microseconds to milliseconds.
func CycleTimeMs(us uint64) float64 {
	return decimal.NewFromInt(int64(us)).Shift(-3).InexactFloat64()
}

type Master struct {
	ProductCode string `json:"productCode"`
	Ports       int    `json:"ports"`
}

var masters = map[string]Master{
	"AL1370": {ProductCode: "AL1370", Ports: 4},
	"AL1352": {ProductCode: "AL1352", Ports: 8},
}

func LookupMaster(productCode string) (Master, error) {
	m, ok := masters[strings.TrimSpace(productCode)]
	if !ok {
		return Master{}, fmt.Errorf("%w: %s", ErrUnsupportedMaster, productCode)
	}
	return m, nil
}

// Masters returns the supported masters ordered by product code.
func Masters() []Master {
	out := make([]Master, 0, len(masters))
	for _, m := range masters {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProductCode < out[j].ProductCode })
	return out
}

// ValidPort reports whether port exists on the master. Ports count from 1.
func (m Master) ValidPort(port int) bool {
	return port >= 1 && port <= m.Ports
}
