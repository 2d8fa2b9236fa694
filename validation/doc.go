// Package validation checks requests and configuration before anything
// touches the network.
//
// ValidateRequest applies the request rules in order and reports the first
// one that fails. Validator collects field errors for hand-written checks,
// and Validate runs `validate:"..."` struct tags for configuration structs.
//
//	if err := validation.ValidateRequest(req); err != nil {
//	    return domain.Response{}, err
//	}
package validation
