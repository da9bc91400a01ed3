package server

import (
	"strings"

	"github.com/gin-gonic/gin"
	riskdomain "github.com/smallbiznis/coverbase/internal/risk/domain"
)

type subscribeRiskRequest struct {
	CustomerID string            `json:"customer_id"`
	RiskTypeID string            `json:"risk_type_id"`
	Values     map[string]string `json:"values"`
}

func (s *Server) SubscribeRisk(c *gin.Context) {
	var req subscribeRiskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondFailure(c, riskdomain.ErrMissingParameters, "")
		return
	}

	_, err := s.riskSvc.Subscribe(c.Request.Context(), riskdomain.SubscribeRequest{
		CustomerID: strings.TrimSpace(req.CustomerID),
		RiskTypeID: strings.TrimSpace(req.RiskTypeID),
		Values:     req.Values,
	})
	if err != nil {
		s.respondFailure(c, err, "Failed to subscribe the Customer to the selected Risk")
		return
	}

	s.respondSuccess(c, "Risk subscription successful", nil)
}

func (s *Server) CustomerRisks(c *gin.Context) {
	views, err := s.riskSvc.ListByCustomer(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		s.respondFailure(c, err, "Failed to retrieve the Risks")
		return
	}

	s.respondSuccess(c, "Risks retrieved successfully", views)
}
