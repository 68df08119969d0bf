package rest

import (
	"errors"
	"net/http"

	"github.com/KevinKickass/OpenIOLink/internal/devices"
	"github.com/KevinKickass/OpenIOLink/internal/types"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// GET /api/v1/vendors
func (s *Server) listVendors(c *gin.Context) {
	indexes, failed := devices.ReadVendorIndexes(s.lm.Config().DeviceSpecs.SearchPaths)
	for path, err := range failed {
		s.logger.Warn("Failed to read vendor index", zap.String("path", path), zap.Error(err))
	}

	c.JSON(http.StatusOK, gin.H{
		"vendors": indexes,
		"count":   len(indexes),
	})
}

// GET /api/v1/vendors/:vendor
func (s *Server) getVendor(c *gin.Context) {
	vendor := c.Param("vendor")

	index, err := devices.FindVendor(s.lm.Config().DeviceSpecs.SearchPaths, vendor)
	if err != nil {
		if errors.Is(err, devices.ErrSpecNotFound) {
			c.JSON(http.StatusNotFound, types.NewErrorResponse(types.CodeVendorNotFound, "Vendor not found", vendor))
			return
		}
		s.logger.Warn("Failed to read vendor index", zap.String("vendor", vendor), zap.Error(err))
		c.JSON(http.StatusNotFound, types.NewErrorResponse(types.CodeVendorNotFound, "Failed to read vendor", err.Error()))
		return
	}

	// mark which listed specs are currently registered
	registry := s.lm.SpecManager().Registry()
	specs := make([]gin.H, 0, len(index.Specs))
	for _, ref := range index.Specs {
		_, registered := registry.Get(ref.Name)
		specs = append(specs, gin.H{
			"name":        ref.Name,
			"file":        ref.File,
			"device_id":   ref.DeviceID,
			"description": ref.Description,
			"tested":      ref.Tested,
			"datasheet":   ref.Datasheet,
			"registered":  registered,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"vendor":      index.Vendor,
		"description": index.Description,
		"website":     index.Website,
		"vendor_id":   index.VendorID,
		"specs":       specs,
	})
}
