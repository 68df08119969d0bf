package rest

import (
	"errors"
	"net/http"
	"time"

	"github.com/KevinKickass/OpenIOLink/internal/api/websocket"
	"github.com/KevinKickass/OpenIOLink/internal/devices"
	"github.com/KevinKickass/OpenIOLink/internal/iolink"
	"github.com/KevinKickass/OpenIOLink/internal/pdi"
	"github.com/KevinKickass/OpenIOLink/internal/publish"
	"github.com/KevinKickass/OpenIOLink/internal/types"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// DecodeRequest selects a spec by name or by vendor/device id.
type DecodeRequest struct {
	Spec     string `json:"spec"`
	VendorID *int   `json:"vendor_id"`
	DeviceID *int   `json:"device_id"`
	Data     string `json:"data" binding:"required"`
	ParentID string `json:"parent_id"`
}

type fieldFailure struct {
	Field string `json:"field"`
	Kind  string `json:"kind"`
	Error string `json:"error"`
}

type DecodeResponse struct {
	Spec     string               `json:"spec"`
	Data     string               `json:"data"`
	OK       bool                 `json:"ok"`
	Fields   []types.DecodedField `json:"fields"`
	Failures []fieldFailure       `json:"failures"`
	Nodes    []publish.StateNode  `json:"nodes"`
}

// PortDecodeRequest carries what a master reported for one port.
type PortDecodeRequest struct {
	Master  string          `json:"master"`
	PortsID string          `json:"ports_id"`
	Port    iolink.PortInfo `json:"port" binding:"required"`
}

type PortDecodeResponse struct {
	Port      int                 `json:"port"`
	Connected bool                `json:"connected"`
	SpecFound bool                `json:"spec_found"`
	Spec      string              `json:"spec,omitempty"`
	OK        bool                `json:"ok"`
	Failures  []fieldFailure      `json:"failures"`
	Nodes     []publish.StateNode `json:"nodes"`
}

func failuresOf(res *pdi.Result) []fieldFailure {
	out := make([]fieldFailure, 0, len(res.Failures))
	for _, f := range res.Failures {
		out = append(out, fieldFailure{Field: f.Field, Kind: f.Kind(), Error: f.Err.Error()})
	}
	return out
}

func (s *Server) resolveSpec(req *DecodeRequest) (*types.DeviceSpecification, error) {
	manager := s.lm.SpecManager()
	if req.Spec != "" {
		return manager.Resolve(req.Spec)
	}
	if req.DeviceID == nil {
		return nil, errors.New("either spec or device_id is required")
	}
	vendorID := 0
	if req.VendorID != nil {
		vendorID = *req.VendorID
	}
	return manager.Lookup(vendorID, *req.DeviceID)
}

// decodeWithMetrics runs the decoder and records the outcome.
func (s *Server) decodeWithMetrics(data string, spec *types.DeviceSpecification) (*pdi.Result, error) {
	start := time.Now()
	res, err := pdi.Decode(data, spec)
	s.lm.Metrics().ObserveDecode(spec.Name, res, err, time.Since(start))
	return res, err
}

// POST /api/v1/decode
func (s *Server) decode(c *gin.Context) {
	var req DecodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, types.NewErrorResponse(types.CodeDecodeRequest, "Invalid request body", err.Error()))
		return
	}

	spec, err := s.resolveSpec(&req)
	if err != nil {
		switch {
		case errors.Is(err, devices.ErrSpecNotFound):
			c.JSON(http.StatusNotFound, types.NewErrorResponse(types.CodeDecodeNoSpec, "No device spec found", err.Error()))
		case errors.As(err, new(*devices.SpecValidationError)):
			c.JSON(http.StatusBadRequest, types.NewErrorResponse(types.CodeSpecInvalid, "Invalid device spec", err.Error()))
		default:
			c.JSON(http.StatusBadRequest, types.NewErrorResponse(types.CodeDecodeRequest, "Invalid decode request", err.Error()))
		}
		return
	}

	res, err := s.decodeWithMetrics(req.Data, spec)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, types.NewErrorResponse(types.CodeDecodeBuffer, "Failed to decode process data", err.Error()))
		return
	}

	if !res.OK() {
		s.logger.Debug("Decode finished with field failures",
			zap.String("spec", spec.Name),
			zap.Int("failures", len(res.Failures)))
	}

	nodes := publish.Plan(req.ParentID, res)
	s.wsHub.Broadcast(websocket.NewDecodeResultMessage(websocket.DecodeResultData{
		Spec:     res.Spec,
		Data:     res.Data,
		ParentID: req.ParentID,
		OK:       res.OK(),
		Fields:   res.Fields,
		Nodes:    nodes,
	}))

	c.JSON(http.StatusOK, DecodeResponse{
		Spec:     res.Spec,
		Data:     res.Data,
		OK:       res.OK(),
		Fields:   res.Fields,
		Failures: failuresOf(res),
		Nodes:    nodes,
	})
}

// POST /api/v1/ports/decode
func (s *Server) decodePort(c *gin.Context) {
	var req PortDecodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, types.NewErrorResponse(types.CodePortRequest, "Invalid request body", err.Error()))
		return
	}

	if req.Master != "" {
		master, err := iolink.LookupMaster(req.Master)
		if err != nil {
			c.JSON(http.StatusBadRequest, types.NewErrorResponse(types.CodePortRequest, "Unsupported IO-Link master", err.Error()))
			return
		}
		if !master.ValidPort(req.Port.Port) {
			c.JSON(http.StatusBadRequest, types.NewErrorResponse(types.CodePortRequest, "Port out of range", gin.H{
				"master": master.ProductCode,
				"ports":  master.Ports,
				"port":   req.Port.Port,
			}))
			return
		}
	}

	portsID := req.PortsID
	if portsID == "" {
		portsID = "ports"
	}

	port := req.Port
	resp := PortDecodeResponse{
		Port:      port.Port,
		Connected: port.Connected(),
		OK:        true,
		Failures:  []fieldFailure{},
		Nodes:     port.Nodes(portsID),
	}

	spec, err := s.lm.SpecManager().Lookup(port.VendorID, port.DeviceID)
	switch {
	case err != nil:
		s.logger.Debug("No device spec for port",
			zap.Int("port", port.Port),
			zap.Int("vendor_id", port.VendorID),
			zap.Int("device_id", port.DeviceID))
	case port.PDIn == "":
		resp.SpecFound = true
		resp.Spec = spec.Name
	default:
		resp.SpecFound = true
		resp.Spec = spec.Name

		res, err := s.decodeWithMetrics(port.PDIn, spec)
		if err != nil {
			c.JSON(http.StatusUnprocessableEntity, types.NewErrorResponse(types.CodeDecodeBuffer, "Failed to decode process data", err.Error()))
			return
		}
		resp.OK = res.OK()
		resp.Failures = failuresOf(res)
		resp.Nodes = append(resp.Nodes, publish.Plan(port.ProcessDataID(portsID), res)...)
	}

	if err := s.wsHub.Publish(c.Request.Context(), resp.Nodes); err != nil {
		s.logger.Warn("Failed to publish port state", zap.Error(err))
	}

	c.JSON(http.StatusOK, resp)
}

// GET /api/v1/masters
func (s *Server) listMasters(c *gin.Context) {
	masters := iolink.Masters()
	c.JSON(http.StatusOK, gin.H{
		"masters": masters,
		"count":   len(masters),
	})
}
