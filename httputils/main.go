// Package httputils holds the response envelopes shared by every route.
package httputils

// Response is the envelope of every successful response
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data"`
	Meta    interface{} `json:"meta,omitempty"`
	// Demo is set when the data is a placeholder
	Demo bool `json:"demo,omitempty"`
}

// RequestError is the envelope of every failed response
type RequestError struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Field   string `json:"field,omitempty"`
}

// OK wraps data in a successful envelope
func OK(data interface{}) Response {
	return Response{Success: true, Data: data}
}

// Message builds a successful envelope with a message
func Message(message string, data interface{}) Response {
	return Response{Success: true, Message: message, Data: data}
}
