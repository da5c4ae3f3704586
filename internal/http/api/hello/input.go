package hello

import "github.com/danielgtaylor/huma/v2"

// DefaultName is used when the name query parameter is absent.
const DefaultName = "World"

// GetInput carries the optional name query parameter. A name that is present
// but empty is kept as the empty string; only an absent one falls back to
// DefaultName.
type GetInput struct {
	Name string `query:"name" doc:"Name to greet, World when omitted" example:"Ada"`
}

// Resolve applies DefaultName when the query string has no name key.
func (i *GetInput) Resolve(ctx huma.Context) []error {
	u := ctx.URL()
	if !u.Query().Has("name") {
		i.Name = DefaultName
	}
	return nil
}
