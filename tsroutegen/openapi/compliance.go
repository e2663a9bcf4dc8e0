package openapi

import (
	"context"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/broady/tsroute/tsroutegen/ir"
)

// Check loads the encoded document with an independent OpenAPI
// implementation and reports every problem it finds as a warning.
// Generation does not fail on compliance problems.
func Check(ctx context.Context, data []byte) []ir.Warning {
	loader := openapi3.NewLoader()
	loader.Context = ctx
	doc, err := loader.LoadFromData(data)
	if err != nil {
		return []ir.Warning{{Code: ir.CodeDocumentCompliance, Message: "load document: " + err.Error()}}
	}
	if err := doc.Validate(ctx); err != nil {
		return []ir.Warning{{Code: ir.CodeDocumentCompliance, Message: err.Error()}}
	}
	return nil
}
