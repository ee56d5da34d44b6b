// Package hello serves the static greeting at the root path.
package hello

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

// Greeting is the exact body of every GET / response.
const Greeting = "Hello World!"

const contentTypeText = "text/plain; charset=utf-8"

// Output writes Body verbatim; huma skips marshaling for []byte bodies.
type Output struct {
	ContentType string `header:"Content-Type"`
	Body        []byte
}

// Register wires GET / into the API.
func Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "get-greeting",
		Method:      http.MethodGet,
		Path:        "/",
		Summary:     "Get the greeting",
		Description: "Returns the fixed plaintext greeting. Query parameters and headers are ignored.",
		Responses: map[string]*huma.Response{
			"200": {
				Description: "OK",
				Content: map[string]*huma.MediaType{
					"text/plain": {Schema: &huma.Schema{Type: "string", Examples: []any{Greeting}}},
				},
			},
		},
	}, getHandler)
}

func getHandler(_ context.Context, _ *struct{}) (*Output, error) {
	return &Output{ContentType: contentTypeText, Body: []byte(Greeting)}, nil
}
