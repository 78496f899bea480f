package rewrite

import (
	"context"
	"fmt"

	"github.com/shortsmith/shortsmith/internal/llm"
)

// hookResponse is the structured output shape for hook generation.
type hookResponse struct {
	Hooks []string `json:"hooks" jsonschema_description:"Three short, spoken-friendly, curiosity-heavy hook lines of at most 14 words each."`
}

var hookSchema = llm.Schema[hookResponse]()

// OpenAIProvider generates hook variants with an LLM via structured JSON
// output. Failures are surfaced to the Rewriter, which handles retry and
// fallback policy.
type OpenAIProvider struct {
	Client *llm.Client
}

// HookVariants implements Provider.
func (p *OpenAIProvider) HookVariants(ctx context.Context, req VariantRequest) ([]string, error) {
	prompt := fmt.Sprintf(
		"Generate 3 short hook lines for the topic %q. Language mode: %s. "+
			"The current opening is %q and its weakest retention signal is %q. "+
			"Each hook must be at most 14 words, spoken-friendly, and curiosity-heavy.",
		req.Topic, req.LanguageMode, req.Script.Hook(), req.Weakness,
	)

	resp, err := llm.Structured[hookResponse](ctx, p.Client,
		"You write viral YouTube Shorts hooks.", prompt, hookSchema)
	if err != nil {
		return nil, err
	}
	if len(resp.Hooks) == 0 {
		return nil, fmt.Errorf("provider returned no hooks")
	}
	if len(resp.Hooks) > 3 {
		resp.Hooks = resp.Hooks[:3]
	}
	return resp.Hooks, nil
}
