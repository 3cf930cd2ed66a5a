package http

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/routers"
	"github.com/getkin/kin-openapi/routers/legacy"
	"github.com/swaggo/swag"
)

//go:embed openapi.yaml
var openapiYAML []byte

// Spec is the loaded and validated API contract.
type Spec struct {
	doc    *openapi3.T
	router routers.Router
	json   []byte
}

// LoadSpec parses the embedded document, validates it and registers it as the
// document served by the Swagger UI.
func LoadSpec(ctx context.Context) (*Spec, error) {
	loader := openapi3.NewLoader()
	loader.Context = ctx

	doc, err := loader.LoadFromData(openapiYAML)
	if err != nil {
		return nil, fmt.Errorf("load openapi document: %w", err)
	}
	if err = doc.Validate(ctx); err != nil {
		return nil, fmt.Errorf("validate openapi document: %w", err)
	}

	router, err := legacy.NewRouter(doc)
	if err != nil {
		return nil, fmt.Errorf("build openapi router: %w", err)
	}

	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode openapi document: %w", err)
	}

	spec := &Spec{doc: doc, router: router, json: raw}
	registerSwaggerDoc(spec)
	return spec, nil
}

// JSON returns the document as served at /api/v1/openapi.json.
func (s *Spec) JSON() []byte {
	return s.json
}

type swaggerDoc struct {
	raw string
}

func (d swaggerDoc) ReadDoc() string {
	return d.raw
}

func registerSwaggerDoc(spec *Spec) {
	if swag.GetSwagger(swag.Name) != nil {
		return
	}
	swag.Register(swag.Name, swaggerDoc{raw: string(spec.json)})
}
