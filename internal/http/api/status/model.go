package status

// Status is the payload of GET /api. Its type name is its OpenAPI schema
// name and must not collide with other response types.
type Status struct {
	Status string `json:"status" doc:"Service status" example:"ok"`
}

// Output wraps Status as the response body.
type Output struct {
	Body Status
}
