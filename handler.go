package tsroute

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/broady/tsroute/tsroutegen/registry"
	"github.com/broady/tsroute/tsroutegen/schema"
	"github.com/broady/tsroute/tsroutegen/synth"
	"github.com/broady/tsroute/tsroutegen/validation"
)

// endpointHandler serves one endpoint: decode, validate, dispatch, encode.
type endpointHandler struct {
	app       *App
	schema    *synth.EndpointSchema
	validator *validation.Endpoint
	path      string
	noContent bool
}

func (h *endpointHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ep := h.schema.Endpoint

	// 1. Decode arguments from the query or the JSON body.
	var (
		args map[string]any
		err  error
	)
	switch ep.Verb.Location() {
	case registry.LocationQuery:
		args, err = h.decodeQuery(r.URL.Query())
	default:
		args, err = h.decodeBody(w, r)
	}
	if err != nil {
		h.app.handleError(w, err)
		return
	}

	// 2. Validate against the endpoint schema.
	if ok, err := h.validator.Validate(args); !ok {
		if vs := validation.Violations(err); len(vs) > 0 {
			h.app.handleError(w, violationError(vs))
		} else {
			h.app.handleError(w, Errorf(CodeInvalidArgument, "%v", err))
		}
		return
	}

	// 3. Execute the interceptor chain and the handler.
	ctx := NewContext(r.Context(), w, r, ep.Controller, ep.Method, h.path)
	call := chainInterceptors(h.app.interceptors, h.app.handlerFor(ep.Key()))
	res, err := call(ctx, args)
	if err != nil {
		h.app.handleError(w, err)
		return
	}

	// 4. Write the response.
	if h.noContent {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := encodeResponse(w, res); err != nil {
		// Response may be partially written, nothing we can do. Log for debugging.
		h.app.getLogger().Error("failed to encode response", "endpoint", ep.Key(), "error", err)
	}
}

func (h *endpointHandler) decodeQuery(q url.Values) (map[string]any, error) {
	args := make(map[string]any, len(h.schema.Params))
	for _, p := range h.schema.Params {
		values, ok := q[p.Name]
		if !ok || len(values) == 0 {
			continue
		}
		v, err := coerce(p.Schema, values)
		if err != nil {
			return nil, Errorf(CodeInvalidArgument, "query parameter %s: %v", p.Name, err)
		}
		args[p.Name] = v
	}
	return args, nil
}

func (h *endpointHandler) decodeBody(w http.ResponseWriter, r *http.Request) (map[string]any, error) {
	args := make(map[string]any)
	if r.Body == nil {
		return args, nil
	}
	body := r.Body
	if h.app.maxRequestBodySize > 0 {
		body = http.MaxBytesReader(w, r.Body, h.app.maxRequestBodySize)
	}
	dec := json.NewDecoder(body)
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		if errors.Is(err, io.EOF) {
			return args, nil
		}
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, Errorf(CodeInvalidArgument, "request body exceeds %d bytes", maxErr.Limit)
		}
		return nil, Errorf(CodeInvalidArgument, "failed to decode body: %v", err)
	}
	switch v := v.(type) {
	case map[string]any:
		return v, nil
	case nil:
		return args, nil
	default:
		return nil, NewError(CodeInvalidArgument, "request body must be a JSON object")
	}
}

// coerce converts query string values to the JSON type the parameter
// schema expects. Values that cannot be coerced are reported; values for
// schemas without a single type are parsed as JSON when possible and kept
// as strings otherwise, leaving the verdict to the validator.
func coerce(f *schema.Fragment, values []string) (any, error) {
	if f == nil {
		return values[0], nil
	}
	switch f.Type {
	case "string":
		return values[0], nil
	case "number", "integer":
		if _, err := strconv.ParseFloat(values[0], 64); err != nil {
			return nil, errors.New("not a number")
		}
		return json.Number(values[0]), nil
	case "boolean":
		b, err := strconv.ParseBool(values[0])
		if err != nil {
			return nil, errors.New("not a boolean")
		}
		return b, nil
	case "null":
		if values[0] != "" && values[0] != "null" {
			return nil, errors.New("not null")
		}
		return nil, nil
	case "array":
		if len(values) == 1 && len(values[0]) > 0 && values[0][0] == '[' {
			return decodeJSON(values[0])
		}
		out := make([]any, 0, len(values))
		for _, s := range values {
			v, err := coerce(f.Items, []string{s})
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		return out, nil
	case "object":
		return decodeJSON(values[0])
	}
	if v, err := decodeJSON(values[0]); err == nil {
		return v, nil
	}
	return values[0], nil
}

func decodeJSON(s string) (any, error) {
	dec := json.NewDecoder(bytes.NewReader([]byte(s)))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, errors.New("not valid JSON")
	}
	return v, nil
}
