package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	risktypedomain "github.com/smallbiznis/coverbase/internal/risktype/domain"
)

func (s *Server) RiskTypes(c *gin.Context) {
	views, err := s.riskTypeSvc.List(c.Request.Context())
	if err != nil {
		s.respondFailure(c, err, "Failed to retrieve the RiskTypes")
		return
	}

	s.respondSuccess(c, "RiskTypes retrieved successfully", views)
}

type getRiskTypeRequest struct {
	// ID accepts either the risk type's identifier or its name.
	ID string `json:"id"`
}

func (s *Server) GetRiskType(c *gin.Context) {
	var req getRiskTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondFailure(c, risktypedomain.ErrRiskTypeRequired, "")
		return
	}

	detail, err := s.riskTypeSvc.Get(c.Request.Context(), req.ID)
	if err != nil {
		s.respondFailure(c, err, "Failed to retrieve the RiskType")
		return
	}

	s.respondSuccess(c, "RiskType retrieved successfully", detail)
}

type addRiskTypeRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (s *Server) AddRiskType(c *gin.Context) {
	var req addRiskTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondFailure(c, risktypedomain.ErrNameRequired, "")
		return
	}

	result, err := s.riskTypeSvc.Upsert(c.Request.Context(), risktypedomain.UpsertRiskTypeRequest{
		Name:        strings.TrimSpace(req.Name),
		Description: strings.TrimSpace(req.Description),
	})
	if err != nil {
		s.respondFailure(c, err, "Failed to create a RiskType")
		return
	}

	if result.Created {
		s.respondSuccess(c, "RiskType created successfully", nil)
		return
	}
	s.respondSuccess(c, "Existing RiskType updated successfully", nil)
}

type addRiskTypeFieldsRequest struct {
	ID     string                           `json:"id"`
	Fields []risktypedomain.FieldDefinition `json:"fields"`
}

func (s *Server) AddRiskTypeFields(c *gin.Context) {
	var req addRiskTypeFieldsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondFailure(c, risktypedomain.ErrMissingFields, "")
		return
	}

	err := s.riskTypeSvc.AttachFields(c.Request.Context(), risktypedomain.AttachFieldsRequest{
		RiskTypeID: strings.TrimSpace(req.ID),
		Fields:     req.Fields,
	})
	if err != nil {
		// The attach flow phrases not-found differently from the lookup.
		if errors.Is(err, risktypedomain.ErrNotFound) {
			c.JSON(http.StatusOK, NewEnvelope("Selected Risk Type does not exist", StatusFailed, nil))
			return
		}
		s.respondFailure(c, err, "Failed to add fields for the selected RiskType")
		return
	}

	s.respondSuccess(c, "RiskType fields added successfully", nil)
}
