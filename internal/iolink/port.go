package iolink

import (
	"fmt"
	"strconv"

	"github.com/KevinKickass/OpenIOLink/internal/pdi"
	"github.com/KevinKickass/OpenIOLink/internal/publish"
	"github.com/KevinKickass/OpenIOLink/internal/types"
)

// Data points of a port, relative to /iolinkmaster/port[n]/.
const (
	PointComSpeed    = "comspeed"
	PointCycleTime   = "mastercycletime_actual"
	PointVendorID    = "iolinkdevice/vendorid"
	PointDeviceID    = "iolinkdevice/deviceid"
	PointProductName = "iolinkdevice/productname"
	PointSerial      = "iolinkdevice/serial"
	PointStatus      = "iolinkdevice/status"
	PointPDIn        = "iolinkdevice/pdin"
)

const AddressProductCode = "/deviceinfo/productcode/getdata"

// PortAddress returns the getdata address of a port data point.
func PortAddress(port int, point string) string {
	return fmt.Sprintf("/iolinkmaster/port[%d]/%s/getdata", port, point)
}

// PortInfo is what the master reports about one port and its device.
type PortInfo struct {
	Port         int    `json:"port" binding:"required,min=1"`
	ComSpeed     uint64 `json:"comSpeed"`
	CycleTimeUs  uint64 `json:"cycleTimeUs"`
	VendorID     int    `json:"vendorId"`
	DeviceID     int    `json:"deviceId"`
	ProductName  string `json:"productName"`
	SerialNumber string `json:"serialNumber"`
	Status       uint64 `json:"status"`
	PDIn         string `json:"pdin"`
}

func (p PortInfo) PortID(portsID string) string {
	return publish.Join(portsID, strconv.Itoa(p.Port))
}

func (p PortInfo) DeviceNodeID(portsID string) string {
	name := p.ProductName
	if name == "" {
		name = "device"
	}
	return publish.Join(p.PortID(portsID), pdi.IDString(name))
}

// ProcessDataID is the parent id for the decoded fields of the port's device.
func (p PortInfo) ProcessDataID(portsID string) string {
	return publish.Join(p.DeviceNodeID(portsID), "processdatain")
}

// Nodes lays out the port below portsID: the port channel with its IO-Link
// link info, the device with info states and the raw process data.
func (p PortInfo) Nodes(portsID string) []publish.StateNode {
	idPort := p.PortID(portsID)
	idLink := publish.Join(idPort, "iolink")
	idDevice := p.DeviceNodeID(portsID)
	idInfo := publish.Join(idDevice, "info")
	idPDIn := p.ProcessDataID(portsID)

	return []publish.StateNode{
		publish.Channel(idPort, fmt.Sprintf("IO-Link Port %d", p.Port)),
		publish.Channel(idLink, "IO-Link"),
		publish.Device(idDevice, p.ProductName),
		publish.Channel(idPDIn, "Processdata In"),
		publish.Channel(idInfo, "Info"),

		publish.State(publish.Join(idLink, "comspeed"), "Communication Mode", "value", types.SemanticString, ComSpeedLabel(p.ComSpeed), ""),
		publish.State(publish.Join(idLink, "mastercycletime"), "Master Cycletime", "value.interval", types.SemanticNumber, CycleTimeMs(p.CycleTimeUs), "ms"),
		publish.State(publish.Join(idInfo, "status"), "Device status", publish.RoleStatus, types.SemanticString, DeviceStatusLabel(p.Status), ""),
		publish.State(publish.Join(idInfo, "vendorid"), "Vendor ID", "value", types.SemanticString, strconv.Itoa(p.VendorID), ""),
		publish.State(publish.Join(idInfo, "sensorid"), "Sensor ID", "value", types.SemanticString, strconv.Itoa(p.DeviceID), ""),
		publish.State(publish.Join(idInfo, "serialnumber"), "Serial number", "value", types.SemanticString, p.SerialNumber, ""),
		publish.State(publish.Join(idPDIn, "raw"), "PDI", "value", types.SemanticString, p.PDIn, ""),
	}
}

// Connected reports whether a device is in a state that delivers process data.
func (p PortInfo) Connected() bool {
	return p.Status == 1 || p.Status == 2
}
