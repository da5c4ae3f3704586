package status

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

// StatusOK is the only status the API reports.
const StatusOK = "ok"

// Register wires GET /api into the provided API.
func Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "get-api-status",
		Method:      http.MethodGet,
		Path:        "/api",
		Summary:     "API status",
		Description: "Reports that the API is up. Stateless and idempotent.",
		Tags:        []string{"API"},
	}, getHandler)
}

func getHandler(_ context.Context, _ *struct{}) (*Output, error) {
	return &Output{Body: Status{Status: StatusOK}}, nil
}
