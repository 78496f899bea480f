// Package llm wraps the OpenAI client behind structured-output helpers.
package llm

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// Client is a thin wrapper pairing an OpenAI client with a model choice.
type Client struct {
	api   openai.Client
	model openai.ChatModel
}

// New builds a client for the given API key. Model may be empty, in which
// case gpt-4o-mini is used.
func New(apiKey, model string) *Client {
	m := openai.ChatModelGPT4oMini
	if model != "" {
		m = openai.ChatModel(model)
	}
	return &Client{
		api:   openai.NewClient(option.WithAPIKey(apiKey)),
		model: m,
	}
}

// Schema reflects a JSON schema for structured outputs.
func Schema[T any]() interface{} {
	reflector := &jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	var v T
	return reflector.Reflect(v)
}

// Structured performs a chat completion with JSON schema enforcement and
// decodes the response into T.
func Structured[T any](ctx context.Context, c *Client, system, prompt string, schema interface{}) (*T, error) {
	schemaParam := openai.ResponseFormatJSONSchemaJSONSchemaParam{
		Name:        "structured_response",
		Description: openai.String("Structured data response"),
		Schema:      schema,
		Strict:      openai.Bool(true),
	}

	messages := []openai.ChatCompletionMessageParamUnion{}
	if system != "" {
		messages = append(messages, openai.SystemMessage(system))
	}
	messages = append(messages, openai.UserMessage(prompt))

	completion, err := c.api.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: messages,
		Model:    c.model,
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{
				JSONSchema: schemaParam,
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("openai: %w", err)
	}
	if len(completion.Choices) == 0 {
		return nil, fmt.Errorf("openai: empty response")
	}

	raw := completion.Choices[0].Message.Content
	if raw == "" {
		return nil, fmt.Errorf("openai: empty content (finish reason %s)", completion.Choices[0].FinishReason)
	}

	var out T
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, fmt.Errorf("parsing openai response: %w", err)
	}
	return &out, nil
}
