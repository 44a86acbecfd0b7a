package errors

// Client error codes.
// The negative ranges follow the JSON-RPC convention used throughout the SDK;
// positive codes are the status values a Jolokia agent reports in its envelope.
const (
	// CodeMalformedResponse indicates a response body that is not a valid envelope
	CodeMalformedResponse int = -32700

	// CodeArgumentMismatch indicates an exec call whose argument count differs from the signature
	CodeArgumentMismatch int = -32602

	// CodeInternalError indicates an unexpected client-side failure
	CodeInternalError int = -32603

	// Resource Errors (-32200 to -32299)
	CodeMBeanNotFound     int = -32200 // MBean not present in the registry
	CodeAttributeNotFound int = -32201 // Attribute not present on the MBean
	CodeOperationNotFound int = -32202 // Operation not present on the MBean

	// Operation Errors (-32300 to -32399)
	CodeOperationCancelled int = -32300 // Operation was cancelled
	CodeOperationTimeout   int = -32301 // Operation timed out

	// Transport Errors (-32500 to -32599)
	CodeTransportError   int = -32500 // Generic transport error
	CodeConnectionFailed int = -32501 // Failed to reach the agent
	CodeHTTPStatus       int = -32504 // Non-JSON HTTP error response
	CodeCircuitOpen      int = -32505 // Circuit breaker rejected the request

	// Validation Errors (-32750 to -32799)
	CodeValidationError   int = -32750 // Generic validation error
	CodeMissingParameter  int = -32751 // Required parameter missing
	CodeInvalidParameter  int = -32752 // Parameter has invalid value
	CodeParameterTooSmall int = -32754 // Parameter value too small
)

// Jolokia envelope status codes
const (
	StatusOK                  int = 200
	StatusBadRequest          int = 400
	StatusUnauthorized        int = 401
	StatusForbidden           int = 403
	StatusNotFound            int = 404
	StatusInternalServerError int = 500
)

// ErrorCodeInfo provides human-readable information about error codes
type ErrorCodeInfo struct {
	Code        int
	Name        string
	Description string
	Category    Category
	Severity    Severity
}

// errorCodeRegistry maps error codes to their information
var errorCodeRegistry = map[int]ErrorCodeInfo{
	CodeMalformedResponse: {CodeMalformedResponse, "MalformedResponse", "Response is not a Jolokia envelope", CategoryProtocol, SeverityError},
	CodeArgumentMismatch:  {CodeArgumentMismatch, "ArgumentMismatch", "Argument count does not match the operation signature", CategoryValidation, SeverityError},
	CodeInternalError:     {CodeInternalError, "InternalError", "Internal client error", CategoryInternal, SeverityError},

	CodeMBeanNotFound:     {CodeMBeanNotFound, "MBeanNotFound", "MBean not found", CategoryNotFound, SeverityError},
	CodeAttributeNotFound: {CodeAttributeNotFound, "AttributeNotFound", "Attribute not found", CategoryNotFound, SeverityError},
	CodeOperationNotFound: {CodeOperationNotFound, "OperationNotFound", "Operation not found", CategoryNotFound, SeverityError},

	CodeOperationCancelled: {CodeOperationCancelled, "OperationCancelled", "Operation cancelled", CategoryCancelled, SeverityInfo},
	CodeOperationTimeout:   {CodeOperationTimeout, "OperationTimeout", "Operation timed out", CategoryTimeout, SeverityError},

	CodeTransportError:   {CodeTransportError, "TransportError", "Transport error", CategoryTransport, SeverityError},
	CodeConnectionFailed: {CodeConnectionFailed, "ConnectionFailed", "Connection failed", CategoryTransport, SeverityCritical},
	CodeHTTPStatus:       {CodeHTTPStatus, "HTTPStatus", "HTTP error without a Jolokia envelope", CategoryTransport, SeverityError},
	CodeCircuitOpen:      {CodeCircuitOpen, "CircuitOpen", "Circuit breaker open", CategoryTransport, SeverityWarning},

	CodeValidationError:   {CodeValidationError, "ValidationError", "Validation error", CategoryValidation, SeverityError},
	CodeMissingParameter:  {CodeMissingParameter, "MissingParameter", "Required parameter missing", CategoryValidation, SeverityError},
	CodeInvalidParameter:  {CodeInvalidParameter, "InvalidParameter", "Invalid parameter value", CategoryValidation, SeverityError},
	CodeParameterTooSmall: {CodeParameterTooSmall, "ParameterTooSmall", "Parameter value too small", CategoryValidation, SeverityError},

	StatusBadRequest:          {StatusBadRequest, "BadRequest", "Agent rejected the request", CategoryProtocol, SeverityError},
	StatusUnauthorized:        {StatusUnauthorized, "Unauthorized", "Agent requires authentication", CategoryAuth, SeverityError},
	StatusForbidden:           {StatusForbidden, "Forbidden", "Agent policy denied the request", CategoryAuth, SeverityError},
	StatusNotFound:            {StatusNotFound, "NotFound", "MBean, attribute or operation unknown to the agent", CategoryNotFound, SeverityError},
	StatusInternalServerError: {StatusInternalServerError, "AgentError", "Agent failed while executing the request", CategoryProtocol, SeverityError},
}

// GetErrorCodeInfo returns information about an error code
func GetErrorCodeInfo(code int) (ErrorCodeInfo, bool) {
	info, exists := errorCodeRegistry[code]
	return info, exists
}

// GetErrorCodeName returns the name of an error code
func GetErrorCodeName(code int) string {
	if info, exists := errorCodeRegistry[code]; exists {
		return info.Name
	}
	return "UnknownError"
}

// GetErrorCodeCategory returns the category of an error code
func GetErrorCodeCategory(code int) Category {
	if info, exists := errorCodeRegistry[code]; exists {
		return info.Category
	}
	return CategoryInternal
}

// GetErrorCodeSeverity returns the severity of an error code
func GetErrorCodeSeverity(code int) Severity {
	if info, exists := errorCodeRegistry[code]; exists {
		return info.Severity
	}
	return SeverityError
}

// ListErrorCodes returns all registered error codes
func ListErrorCodes() []ErrorCodeInfo {
	codes := make([]ErrorCodeInfo, 0, len(errorCodeRegistry))
	for _, info := range errorCodeRegistry {
		codes = append(codes, info)
	}
	return codes
}

// IsClientCode reports whether code is raised by the client rather than the agent
func IsClientCode(code int) bool {
	return code >= -32999 && code <= -32000
}
