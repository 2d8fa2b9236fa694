package validation

import (
	"strings"

	"github.com/kbukum/hurl/domain"
	apperrors "github.com/kbukum/hurl/errors"
)

// RequestRule checks one domain rule and returns a VALIDATION_FAILED error when it is broken.
type RequestRule func(req domain.Request) error

// RequestRules are applied in this order by ValidateRequest.
var RequestRules = []RequestRule{
	URLRule,
	MethodBodyRule,
}

// ValidateRequest returns the error of the first rule that fails, or nil.
// It performs no I/O.
func ValidateRequest(req domain.Request) error {
	for _, rule := range RequestRules {
		if err := rule(req); err != nil {
			return err
		}
	}
	return nil
}

// URLRule requires a non-empty URL beginning with http:// or https://.
func URLRule(req domain.Request) error {
	if req.URL().IsZero() {
		return apperrors.Validation("URL cannot be empty").WithDetail("field", "url")
	}
	raw := req.URL().String()
	if !strings.HasPrefix(raw, "http://") && !strings.HasPrefix(raw, "https://") {
		return apperrors.Validation("URL must start with http:// or https://").WithDetail("field", "url")
	}
	return nil
}

// MethodBodyRule rejects GET requests that carry a body.
func MethodBodyRule(req domain.Request) error {
	if req.Method() == domain.MethodGet && req.HasBody() {
		return apperrors.Validation("GET requests should not have a body").WithDetail("field", "body")
	}
	return nil
}
