// Package openapi emits the OpenAPI 3.0 document describing every endpoint.
package openapi

import "github.com/broady/tsroute/tsroutegen/schema"

// Version is the OpenAPI version the emitted document declares.
const Version = "3.0.3"

// Document is the root OpenAPI document.
type Document struct {
	OpenAPI    string               `json:"openapi"`
	Info       Info                 `json:"info"`
	Servers    []Server             `json:"servers,omitempty"`
	Paths      map[string]*PathItem `json:"paths"`
	Components *Components          `json:"components,omitempty"`
	Tags       []Tag                `json:"tags,omitempty"`
}

// Info holds API metadata.
type Info struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Version     string `json:"version"`
}

// Server is a base URL the API is served from.
type Server struct {
	URL         string `json:"url"`
	Description string `json:"description,omitempty"`
}

// PathItem holds the operations for a single path.
type PathItem struct {
	Get    *Operation `json:"get,omitempty"`
	Post   *Operation `json:"post,omitempty"`
	Put    *Operation `json:"put,omitempty"`
	Delete *Operation `json:"delete,omitempty"`
}

// Operations returns the operations of the item keyed by lowercase verb.
func (p *PathItem) Operations() map[string]*Operation {
	ops := make(map[string]*Operation)
	for verb, op := range map[string]*Operation{"get": p.Get, "post": p.Post, "put": p.Put, "delete": p.Delete} {
		if op != nil {
			ops[verb] = op
		}
	}
	return ops
}

// Operation represents an HTTP operation.
type Operation struct {
	OperationID string       `json:"operationId"`
	Summary     string       `json:"summary,omitempty"`
	Description string       `json:"description,omitempty"`
	Tags        []string     `json:"tags,omitempty"`
	Deprecated  bool         `json:"deprecated,omitzero"`
	Parameters  []Parameter  `json:"parameters,omitempty"`
	RequestBody *RequestBody `json:"requestBody,omitempty"`
	Responses   Responses    `json:"responses"`
}

// Parameter is a query parameter.
type Parameter struct {
	Name     string           `json:"name"`
	In       string           `json:"in"`
	Required bool             `json:"required"`
	Schema   *schema.Fragment `json:"schema"`
}

// RequestBody represents a JSON request body.
type RequestBody struct {
	Required bool                 `json:"required"`
	Content  map[string]MediaType `json:"content"`
}

// MediaType holds the schema for a content type.
type MediaType struct {
	Schema *schema.Fragment `json:"schema"`
}

// Responses maps status codes to response objects.
type Responses map[string]*Response

// Response represents an OpenAPI response.
type Response struct {
	Description string               `json:"description"`
	Content     map[string]MediaType `json:"content,omitempty"`
}

// Components holds the shared schemas referenced from operations.
type Components struct {
	Schemas map[string]*schema.Fragment `json:"schemas,omitempty"`
}

// Tag groups the operations of one controller.
type Tag struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// Marshal renders the document as indented, deterministic JSON.
func Marshal(doc *Document) ([]byte, error) {
	return schema.Encode(doc, "  ")
}
