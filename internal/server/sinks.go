package server

import (
	"sort"

	"github.com/labstack/echo/v4"

	"github.com/canopyhq/canopylog/internal/response"
)

// handleSinkTypes returns registered sink type names (GET /sinks/types).
func (s *Server) handleSinkTypes(c echo.Context) error {
	types := s.registry.ListRegistered()
	sort.Strings(types)
	return response.OK(c, map[string]any{"types": types}, "")
}

// handleSinkTypeInfo returns the config spec for one sink type
// (GET /sinks/types/:type).
func (s *Server) handleSinkTypeInfo(c echo.Context) error {
	typeName := c.Param("type")
	info, ok := s.registry.GetTypeInfo(typeName)
	if !ok {
		return response.NotFound(c, "unknown sink type", typeName)
	}
	return response.OK(c, info, "")
}

// handleSinkInfo returns config specs for every registered sink type
// (GET /sinks/info).
func (s *Server) handleSinkInfo(c echo.Context) error {
	return response.OK(c, map[string]any{"types": s.registry.AllTypesInfo()}, "")
}

// handleSinks returns the sinks active in this process (GET /sinks).
func (s *Server) handleSinks(c echo.Context) error {
	return response.OK(c, map[string]any{"sinks": s.activeSinks}, "")
}
