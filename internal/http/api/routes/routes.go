package routes

import (
	"github.com/danielgtaylor/huma/v2"

	"github.com/grappleoss/backend/internal/http/api/hello"
	"github.com/grappleoss/backend/internal/http/api/status"
)

// Register wires all API routes into the provided API router.
func Register(api huma.API) {
	status.Register(api)
	hello.Register(api)
}
