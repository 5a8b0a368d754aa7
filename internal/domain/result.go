package domain

// AuthResult is the uniform envelope returned by every service operation.
// Service methods never return Go errors to the transport layer; failures
// are folded into this shape so the handler only has to serialize it.
type AuthResult struct {
	Success    bool   `json:"success"`
	Data       any    `json:"data,omitempty"`
	Message    string `json:"message,omitempty"`
	Error      string `json:"error,omitempty"`
	StatusCode int    `json:"statusCode,omitempty"`
	Details    any    `json:"details,omitempty"`
}

// OK builds a successful result.
func OK(data any, message string) AuthResult {
	return AuthResult{Success: true, Data: data, Message: message}
}

// Fail builds a failure result from a domain error. Details are only
// carried through when exposeDetails is set (non-production environments).
func Fail(err error, exposeDetails bool) AuthResult {
	e := AsError(err)
	res := AuthResult{
		Success:    false,
		Error:      e.Code,
		Message:    e.Message,
		StatusCode: e.Status,
	}
	if exposeDetails {
		res.Details = e.Details
	}
	return res
}
