package hello

// Greeting models the response payload for the hello endpoint.
type Greeting struct {
	Message string `json:"message" doc:"Greeting message" example:"Hello from the World!"`
}

// GetOutput wraps Greeting as the response body.
type GetOutput struct {
	Body Greeting
}
