package models

// DetailError is the body for authentication, permission and lookup failures
type DetailError struct {
	Detail string `json:"detail"`
}

// MembershipError is the body for favorite, cart and subscription conflicts
type MembershipError struct {
	Errors string `json:"errors"`
}

// ValidationErrors maps a request field to the reason it was rejected
type ValidationErrors map[string]string

func NewDetailError(detail string) DetailError {
	return DetailError{Detail: detail}
}

func NewMembershipError(msg string) MembershipError {
	return MembershipError{Errors: msg}
}

// OAuth2Error represents an OAuth2 error response (RFC 6749)
type OAuth2Error struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description,omitempty"`
}
