// Package openapi builds the API framework configuration shared by the
// server and handler tests.
package openapi

import (
	"encoding/json"
	"io"
	"maps"

	"github.com/danielgtaylor/huma/v2"
	_ "github.com/danielgtaylor/huma/v2/formats/cbor" // registers application/cbor
)

// Title is the OpenAPI document title.
const Title = "Grapple Backend API"

// DocsPath serves the interactive API reference.
const DocsPath = "/api-docs"

// jsonFormat encodes without HTML escaping so strings such as query values
// appear in responses exactly as supplied.
var jsonFormat = huma.Format{
	Marshal: func(w io.Writer, v any) error {
		enc := json.NewEncoder(w)
		enc.SetEscapeHTML(false)
		return enc.Encode(v)
	},
	Unmarshal: json.Unmarshal,
}

// Config returns the API configuration. Response bodies carry only their
// documented fields: the default $schema link transformer is not installed.
func Config(version string) huma.Config {
	cfg := huma.DefaultConfig(Title, version)
	cfg.DocsPath = DocsPath
	cfg.CreateHooks = nil

	formats := make(map[string]huma.Format, len(cfg.Formats)+2)
	maps.Copy(formats, cfg.Formats)
	formats["application/json"] = jsonFormat
	formats["json"] = jsonFormat
	cfg.Formats = formats
	return cfg
}

// AdvertiseCBOR documents application/cbor next to every JSON request and
// response body in the generated OpenAPI document.
func AdvertiseCBOR(api huma.API) {
	api.OpenAPI().OnAddOperation = append(api.OpenAPI().OnAddOperation,
		func(_ *huma.OpenAPI, op *huma.Operation) {
			if op.RequestBody != nil && op.RequestBody.Content != nil {
				if c, ok := op.RequestBody.Content["application/json"]; ok {
					op.RequestBody.Content["application/cbor"] = c
				}
			}
			for _, resp := range op.Responses {
				if resp.Content == nil {
					continue
				}
				if c, ok := resp.Content["application/json"]; ok {
					resp.Content["application/cbor"] = c
				}
			}
		},
	)
}
