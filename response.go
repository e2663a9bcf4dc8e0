package tsroute

import "encoding/json"

// response is the envelope for successful responses: {"result": ...}.
type response struct {
	Result any `json:"result"`
}

// errorResponse is the envelope for error responses: {"error": {...}}.
type errorResponse struct {
	Error *Error `json:"error"`
}

// encodeResponse writes a successful response to the ResponseWriter.
// Endpoints without a return type never reach it; they answer 204.
func encodeResponse(w jsonWriter, result any) error {
	return json.NewEncoder(w).Encode(response{Result: result})
}

// encodeErrorResponse writes an error response to the ResponseWriter.
func encodeErrorResponse(w jsonWriter, err *Error) error {
	return json.NewEncoder(w).Encode(errorResponse{Error: err})
}

// jsonWriter is satisfied by http.ResponseWriter and allows testing.
type jsonWriter interface {
	Write([]byte) (int, error)
}
