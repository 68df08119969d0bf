package types

// API error codes. The prefix names the resource, the number the HTTP status.
const (
	CodeSpecInvalid    = "SPEC_400"
	CodeSpecNotFound   = "SPEC_404"
	CodeSpecStore      = "SPEC_500"
	CodeDecodeRequest  = "DECODE_400"
	CodeDecodeNoSpec   = "DECODE_404"
	CodeDecodeBuffer   = "DECODE_422"
	CodePortRequest    = "PORT_400"
	CodeVendorNotFound = "VENDOR_404"
	CodeSystemReload   = "SYSTEM_409"
	CodeAuthRequest    = "AUTH_400"
	CodeAuthRequired   = "AUTH_401"
	CodeAuthForbidden  = "AUTH_403"
)

type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// NewErrorResponse builds a consistent API error payload.
// details can be a string, a list of validation issues or any other JSON value.
func NewErrorResponse(code, message string, details any) ErrorResponse {
	return ErrorResponse{
		Error: ErrorBody{
			Code:    code,
			Message: message,
			Details: details,
		},
	}
}
