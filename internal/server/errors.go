package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	customerdomain "github.com/smallbiznis/coverbase/internal/customer/domain"
	riskdomain "github.com/smallbiznis/coverbase/internal/risk/domain"
	risktypedomain "github.com/smallbiznis/coverbase/internal/risktype/domain"
	"go.uber.org/zap"
)

// failureMessage translates a domain error into the user-facing envelope
// message. The second return is false when the error is unexpected and
// the caller should fall back to its own generic message.
func failureMessage(err error) (string, bool) {
	var valueErr *riskdomain.ValueError
	if errors.As(err, &valueErr) {
		return valueErr.Error(), true
	}

	switch {
	case errors.Is(err, risktypedomain.ErrRiskTypeRequired):
		return "RiskType must be selected", true
	case errors.Is(err, risktypedomain.ErrNotFound):
		return "selected RiskType does not exist", true
	case errors.Is(err, risktypedomain.ErrNameRequired):
		return "A required parameter is missing", true
	case errors.Is(err, risktypedomain.ErrMissingFields):
		return "Some required fields are missing.", true
	case errors.Is(err, risktypedomain.ErrFormAlreadyDefined):
		return "The selected RiskType has a Form associated with it already", true
	case errors.Is(err, risktypedomain.ErrInvalidFieldType),
		errors.Is(err, risktypedomain.ErrFieldCaptionMissing):
		return "Failed to add fields for the selected RiskType", true
	case errors.Is(err, customerdomain.ErrMissingParameters),
		errors.Is(err, riskdomain.ErrMissingParameters):
		return "Some required parameters are missing", true
	case errors.Is(err, customerdomain.ErrPhoneNumberTaken):
		return "Provided phone number is already taken", true
	case errors.Is(err, customerdomain.ErrInvalidSalutation):
		return "Provided salutation is not recognised", true
	case errors.Is(err, customerdomain.ErrInvalidGender):
		return "Provided gender is not recognised", true
	case errors.Is(err, customerdomain.ErrInvalidDateOfBirth):
		return "Provided date of birth is invalid", true
	case errors.Is(err, customerdomain.ErrInvalidEmail):
		return "Provided email address is invalid", true
	case errors.Is(err, riskdomain.ErrCustomerNotFound):
		return "Selected Customer does not exist", true
	case errors.Is(err, riskdomain.ErrRiskTypeNotFound):
		return "Selected Risk Type does not exist", true
	case errors.Is(err, riskdomain.ErrFormNotDefined):
		return "The selected RiskType does not have a Form defined yet", true
	default:
		return "", false
	}
}

// respondFailure converts any error into a failure envelope. Unexpected
// errors are logged and degraded to the handler's fallback message; the
// original cause never reaches the caller.
func (s *Server) respondFailure(c *gin.Context, err error, fallback string) {
	message, known := failureMessage(err)
	if !known {
		s.log.Error("request failed",
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
		message = fallback
	}
	c.JSON(http.StatusOK, NewEnvelope(message, StatusFailed, nil))
}

func (s *Server) respondSuccess(c *gin.Context, message string, data any) {
	c.JSON(http.StatusOK, NewEnvelope(message, StatusSuccess, data))
}
