package tsroute

import (
	"bytes"
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/schema"
	"gopkg.in/yaml.v3"
)

var (
	validate      = validator.New(validator.WithRequiredStructEnabled())
	schemaDecoder = schema.NewDecoder()
)

func init() {
	schemaDecoder.IgnoreUnknownKeys(true)
}

// docsOptions are the query parameters accepted by the docs endpoint.
type docsOptions struct {
	Pretty bool   `schema:"pretty"`
	Format string `schema:"format" validate:"omitempty,oneof=json yaml"`
}

func (a *App) serveDocs(w http.ResponseWriter, r *http.Request) {
	var opts docsOptions
	if err := schemaDecoder.Decode(&opts, r.URL.Query()); err != nil {
		a.handleError(w, Errorf(CodeInvalidArgument, "failed to decode query: %v", err))
		return
	}
	if err := validate.Struct(&opts); err != nil {
		a.handleError(w, err)
		return
	}

	var (
		body        []byte
		contentType = "application/json"
		err         error
	)
	switch opts.Format {
	case "yaml":
		contentType = "application/yaml"
		body, err = documentYAML(a.bundle.DocumentJSON)
	default:
		if opts.Pretty {
			body = a.bundle.DocumentJSON
		} else {
			var buf bytes.Buffer
			err = json.Compact(&buf, a.bundle.DocumentJSON)
			body = buf.Bytes()
		}
	}
	if err != nil {
		a.handleError(w, err)
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.Write(body)
}

// documentYAML re-renders the JSON document as block-style YAML. Key order
// is kept from the JSON encoding.
func documentYAML(doc []byte) ([]byte, error) {
	var n yaml.Node
	if err := yaml.Unmarshal(doc, &n); err != nil {
		return nil, err
	}
	clearStyle(&n)
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&n); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func clearStyle(n *yaml.Node) {
	n.Style = 0
	for _, c := range n.Content {
		clearStyle(c)
	}
}
