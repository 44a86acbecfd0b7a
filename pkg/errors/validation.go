package errors

import "fmt"

// ParameterErrorData contains structured data for parameter-related errors
type ParameterErrorData struct {
	Parameter string      `json:"parameter"`
	Value     interface{} `json:"value,omitempty"`
	Required  bool        `json:"required,omitempty"`
	Reason    string      `json:"reason,omitempty"`
}

// NotFoundErrorData contains structured data for lookups that found nothing
type NotFoundErrorData struct {
	Kind string `json:"kind"`
	Name string `json:"name"`
}

// ValidationError creates a generic validation error
func ValidationError(message string) JolokiaError {
	return NewError(CodeValidationError, message, CategoryValidation, SeverityError)
}

// InvalidParameter creates an error for invalid parameter values
func InvalidParameter(param string, value interface{}, reason string) JolokiaError {
	e := newBase(
		CodeInvalidParameter,
		fmt.Sprintf("Invalid parameter '%s': %s", param, reason),
		CategoryValidation,
		SeverityError,
		nil,
	)
	e.data = &ParameterErrorData{Parameter: param, Value: value, Reason: reason}
	return e
}

// MissingParameter creates an error for missing required parameters
func MissingParameter(param string) JolokiaError {
	e := newBase(
		CodeMissingParameter,
		fmt.Sprintf("Missing required parameter: %s", param),
		CategoryValidation,
		SeverityError,
		nil,
	)
	e.data = &ParameterErrorData{Parameter: param, Required: true}
	return e
}

// ParameterTooSmall creates an error for parameter values that are too small
func ParameterTooSmall(param string, value interface{}, minValue interface{}) JolokiaError {
	e := newBase(
		CodeParameterTooSmall,
		fmt.Sprintf("Parameter '%s' value %v is below minimum allowed value %v", param, value, minValue),
		CategoryValidation,
		SeverityError,
		nil,
	)
	e.data = &ParameterErrorData{
		Parameter: param,
		Value:     value,
		Reason:    fmt.Sprintf("below minimum %v", minValue),
	}
	return e
}

// MBeanNotFound creates an error for an MBean absent from the registry
func MBeanNotFound(fqn string) JolokiaError {
	return notFound(CodeMBeanNotFound, "mbean", fqn)
}

// AttributeNotFound creates an error for an attribute absent from an MBean
func AttributeNotFound(fqn, name string) JolokiaError {
	return notFound(CodeAttributeNotFound, "attribute", fqn+"/"+name)
}

// OperationNotFound creates an error for an operation absent from an MBean.
// Overloaded operations are reported this way too since they are never registered.
func OperationNotFound(fqn, name string) JolokiaError {
	return notFound(CodeOperationNotFound, "operation", fqn+"/"+name)
}

func notFound(code int, kind, name string) JolokiaError {
	e := newBase(code, fmt.Sprintf("%s not found: %s", kind, name), CategoryNotFound, SeverityError, nil)
	e.data = &NotFoundErrorData{Kind: kind, Name: name}
	return e
}
