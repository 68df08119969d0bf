package rest

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/KevinKickass/OpenIOLink/internal/api/websocket"
	"github.com/KevinKickass/OpenIOLink/internal/devices"
	"github.com/KevinKickass/OpenIOLink/internal/types"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const maxSpecSize = 1 << 20

type specSummary struct {
	Name              string `json:"name"`
	Vendor            string `json:"vendor,omitempty"`
	ProductName       string `json:"product_name,omitempty"`
	VendorID          *int   `json:"vendor_id,omitempty"`
	DeviceID          *int   `json:"device_id,omitempty"`
	ProcessDataLength uint   `json:"process_data_length,omitempty"`
	Fields            int    `json:"fields"`
}

func summarize(spec *types.DeviceSpecification) specSummary {
	return specSummary{
		Name:              spec.Name,
		Vendor:            spec.Vendor,
		ProductName:       spec.ProductName,
		VendorID:          spec.VendorID,
		DeviceID:          spec.DeviceID,
		ProcessDataLength: spec.ProcessDataLength,
		Fields:            len(spec.Fields),
	}
}

// GET /api/v1/specs[?vendor_id=..&device_id=..]
func (s *Server) listSpecs(c *gin.Context) {
	registry := s.lm.SpecManager().Registry()

	if dev := c.Query("device_id"); dev != "" {
		deviceID, err := strconv.Atoi(dev)
		if err != nil {
			c.JSON(http.StatusBadRequest, types.NewErrorResponse(types.CodeSpecInvalid, "Invalid device_id", err.Error()))
			return
		}
		vendorID, err := strconv.Atoi(c.DefaultQuery("vendor_id", "0"))
		if err != nil {
			c.JSON(http.StatusBadRequest, types.NewErrorResponse(types.CodeSpecInvalid, "Invalid vendor_id", err.Error()))
			return
		}

		response := make([]specSummary, 0, 1)
		if spec, ok := registry.Lookup(vendorID, deviceID); ok {
			response = append(response, summarize(spec))
		}
		c.JSON(http.StatusOK, gin.H{"specs": response, "count": len(response)})
		return
	}

	specs := registry.List()
	response := make([]specSummary, 0, len(specs))
	for _, spec := range specs {
		response = append(response, summarize(spec))
	}

	c.JSON(http.StatusOK, gin.H{
		"specs": response,
		"count": len(response),
	})
}

// GET /api/v1/specs/:name
func (s *Server) getSpec(c *gin.Context) {
	name := c.Param("name")

	spec, ok := s.lm.SpecManager().Registry().Get(name)
	if !ok {
		c.JSON(http.StatusNotFound, types.NewErrorResponse(types.CodeSpecNotFound, "Device spec not found", name))
		return
	}

	c.JSON(http.StatusOK, spec)
}

// POST /api/v1/specs/validate
func (s *Server) validateSpec(c *gin.Context) {
	body, err := readBody(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, types.NewErrorResponse(types.CodeSpecInvalid, "Failed to read request body", err.Error()))
		return
	}

	spec, err := s.lm.SpecManager().Validator().Parse(body)
	if err != nil {
		var verr *devices.SpecValidationError
		if errors.As(err, &verr) {
			c.JSON(http.StatusOK, gin.H{"valid": false, "spec": verr.Spec, "issues": verr.Issues})
			return
		}
		c.JSON(http.StatusBadRequest, types.NewErrorResponse(types.CodeSpecInvalid, "Invalid device spec", err.Error()))
		return
	}

	c.JSON(http.StatusOK, gin.H{"valid": true, "spec": spec.Name, "issues": []devices.Issue{}})
}

// POST /api/v1/specs
func (s *Server) registerSpec(c *gin.Context) {
	body, err := readBody(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, types.NewErrorResponse(types.CodeSpecInvalid, "Failed to read request body", err.Error()))
		return
	}

	manager := s.lm.SpecManager()
	spec, err := manager.Register(c.Request.Context(), body)
	if err != nil {
		var verr *devices.SpecValidationError
		if errors.As(err, &verr) {
			c.JSON(http.StatusBadRequest, types.NewErrorResponse(types.CodeSpecInvalid, "Invalid device spec", verr.Issues))
			return
		}
		s.logger.Error("Failed to register spec", zap.Error(err))
		c.JSON(http.StatusInternalServerError, types.NewErrorResponse(types.CodeSpecStore, "Failed to register device spec", err.Error()))
		return
	}

	s.lm.Metrics().SpecsRegistered.Set(float64(manager.Registry().Len()))
	s.wsHub.Broadcast(websocket.NewSpecRegisteredMessage(spec))

	c.JSON(http.StatusCreated, summarize(spec))
}

// DELETE /api/v1/specs/:name
func (s *Server) deleteSpec(c *gin.Context) {
	name := c.Param("name")

	manager := s.lm.SpecManager()
	if err := manager.Remove(c.Request.Context(), name); err != nil {
		if errors.Is(err, devices.ErrSpecNotFound) {
			c.JSON(http.StatusNotFound, types.NewErrorResponse(types.CodeSpecNotFound, "Device spec not found", name))
			return
		}
		s.logger.Error("Failed to delete spec", zap.String("spec", name), zap.Error(err))
		c.JSON(http.StatusInternalServerError, types.NewErrorResponse(types.CodeSpecStore, "Failed to delete device spec", err.Error()))
		return
	}

	s.lm.Metrics().SpecsRegistered.Set(float64(manager.Registry().Len()))
	s.wsHub.Broadcast(websocket.NewSpecRemovedMessage(name))

	c.JSON(http.StatusOK, gin.H{"message": "Device spec deleted", "spec": name})
}

func readBody(c *gin.Context) ([]byte, error) {
	return io.ReadAll(io.LimitReader(c.Request.Body, maxSpecSize))
}
