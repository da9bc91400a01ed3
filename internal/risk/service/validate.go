package service

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/smallbiznis/coverbase/internal/risk/domain"
	risktypedomain "github.com/smallbiznis/coverbase/internal/risktype/domain"
)

const dateOnly = "2006-01-02"

// validateValue interprets one field descriptor against a submitted value.
func validateValue(field *risktypedomain.RiskField, value string) error {
	switch field.FieldType {
	case risktypedomain.FieldTypeNumber:
		return validateNumber(field, value)
	case risktypedomain.FieldTypeDate:
		if _, err := time.Parse(dateOnly, value); err != nil {
			return &domain.ValueError{Caption: field.Caption, Reason: "must be a date in YYYY-MM-DD format"}
		}
		return nil
	case risktypedomain.FieldTypeEmail:
		if !strings.Contains(value, "@") {
			return &domain.ValueError{Caption: field.Caption, Reason: "must be an email address"}
		}
		return validateLength(field, value)
	default:
		// text and file values carry only length constraints.
		return validateLength(field, value)
	}
}

func validateLength(field *risktypedomain.RiskField, value string) error {
	if len(value) < field.MinLength {
		return &domain.ValueError{
			Caption: field.Caption,
			Reason:  fmt.Sprintf("must be at least %d characters", field.MinLength),
		}
	}
	if field.MaxLength > 0 && len(value) > field.MaxLength {
		return &domain.ValueError{
			Caption: field.Caption,
			Reason:  fmt.Sprintf("must be at most %d characters", field.MaxLength),
		}
	}
	return nil
}

func validateNumber(field *risktypedomain.RiskField, value string) error {
	if _, err := strconv.ParseFloat(value, 64); err != nil {
		return &domain.ValueError{Caption: field.Caption, Reason: "must be a number"}
	}

	digits := strings.TrimLeft(value, "+-")
	whole, frac, _ := strings.Cut(digits, ".")
	if len(frac) > field.DecimalPlaces {
		return &domain.ValueError{
			Caption: field.Caption,
			Reason:  fmt.Sprintf("must have at most %d decimal places", field.DecimalPlaces),
		}
	}
	if len(whole)+len(frac) > field.MaxDigits {
		return &domain.ValueError{
			Caption: field.Caption,
			Reason:  fmt.Sprintf("must have at most %d digits", field.MaxDigits),
		}
	}
	return nil
}
