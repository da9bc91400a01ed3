package server

import (
	"strings"

	"github.com/gin-gonic/gin"
	customerdomain "github.com/smallbiznis/coverbase/internal/customer/domain"
)

func (s *Server) Customers(c *gin.Context) {
	views, err := s.customerSvc.List(c.Request.Context(), customerdomain.ListCustomersRequest{
		Name: strings.TrimSpace(c.Query("name")),
	})
	if err != nil {
		s.respondFailure(c, err, "Failed to retrieve the Customers")
		return
	}

	s.respondSuccess(c, "Customers retrieved successfully", views)
}

type registerCustomerRequest struct {
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	PhoneNumber string `json:"phone_number"`
	DateOfBirth string `json:"date_of_birth"`
	Gender      string `json:"gender"`
	Salutation  string `json:"salutation"`
	Email       string `json:"email"`
}

func (s *Server) RegisterCustomer(c *gin.Context) {
	var req registerCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondFailure(c, customerdomain.ErrMissingParameters, "")
		return
	}

	_, err := s.customerSvc.Register(c.Request.Context(), customerdomain.RegisterCustomerRequest{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		PhoneNumber: req.PhoneNumber,
		DateOfBirth: req.DateOfBirth,
		Gender:      req.Gender,
		Salutation:  req.Salutation,
		Email:       req.Email,
	})
	if err != nil {
		s.respondFailure(c, err, "Failed to register customer")
		return
	}

	s.respondSuccess(c, "Customer registration successful", nil)
}
