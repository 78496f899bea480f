package rewrite

import (
	"context"
	"fmt"
)

// Hook templates ordered strongest-first. Every line stays under the
// 14-word hook budget and carries a question plus curiosity/emotion terms
// the scorer rewards.
var hookTemplates = []string{
	"Wait... what is the #1 hidden mistake in %s?",
	"Stop scrolling: the secret truth about %s nobody shares.",
	"Why does %s fail even when the effort is the same?",
	"What if the one %s step you skip decides the result?",
	"Unexpected truth: the %s win formula is usually done backwards.",
	"One question: is your first %s step quietly wrong?",
	"How does %s stall when everyone uses the same tools?",
}

// BankProvider serves hook variants from the local phrase bank. It is the
// offline stand-in for the LLM provider and is fully deterministic.
type BankProvider struct{}

// HookVariants implements Provider.
func (b *BankProvider) HookVariants(ctx context.Context, req VariantRequest) ([]string, error) {
	topic := req.Topic
	if topic == "" {
		topic = "this"
	}
	out := make([]string, 0, len(hookTemplates))
	for _, tmpl := range hookTemplates {
		out = append(out, fmt.Sprintf(tmpl, topic))
	}
	return out, nil
}
