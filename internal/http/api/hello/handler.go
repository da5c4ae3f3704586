package hello

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"go.uber.org/zap"

	applog "github.com/grappleoss/backend/internal/platform/logging"
)

// Register wires GET /api/hello into the provided API.
func Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "get-hello",
		Method:      http.MethodGet,
		Path:        "/api/hello",
		Summary:     "Greet by name",
		Description: "Returns a greeting for the given name, or for \"" + DefaultName + "\" when omitted.",
		Tags:        []string{"API"},
	}, getHandler)
}

// Message builds the greeting for name. The name is used verbatim.
func Message(name string) string {
	return "Hello from the " + name + "!"
}

func getHandler(ctx context.Context, input *GetInput) (*GetOutput, error) {
	applog.LogInfo(ctx, "hello get", zap.Int("nameLength", len(input.Name)))
	return &GetOutput{Body: Greeting{Message: Message(input.Name)}}, nil
}
