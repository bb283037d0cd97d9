package chat

import (
	"context"
	"fmt"
	"strings"

	"github.com/astrea-space/astrea/backend/pkg/ai"
)

// FallbackAnswer is returned verbatim when retrieval yields no context.
// The wording (including the trailing space) is part of the API surface
// clients already match on.
const FallbackAnswer = "I couldn’t find the details right now. Maybe not present in the document I Have. "

const contextSeparator = "\n\n---\n\n"

// retrieveContext embeds the rewritten question and joins the top-K
// retrieved passages into one context block. An empty block means no
// passages matched.
func (s *Service) retrieveContext(ctx context.Context, question string) (string, error) {
	embedding, err := s.embedder.GenerateEmbedding(ctx, []byte(question))
	if err != nil {
		return "", fmt.Errorf("failed to embed question: %w", err)
	}

	matches, err := s.vectors.Query(ctx, embedding, s.topK)
	if err != nil {
		return "", fmt.Errorf("failed to query vector store: %w", err)
	}

	texts := make([]string, 0, len(matches))
	for _, match := range matches {
		if strings.TrimSpace(match.Text) == "" {
			continue
		}
		texts = append(texts, match.Text)
	}

	return strings.Join(texts, contextSeparator), nil
}

// composeAnswer produces the assistant answer for one turn. An empty
// context short-circuits to the fixed fallback without an LLM call; the
// persona prompt additionally instructs the model to refuse when the
// provided context is insufficient, so both paths stay in place. The
// second return value reports whether the answer came from the model,
// so callers can format grounded answers without sniffing their text.
func (s *Service) composeAnswer(
	ctx context.Context,
	history []ai.ChatMessage,
	question string,
	contextBlock string,
) (string, bool, error) {
	if strings.TrimSpace(contextBlock) == "" {
		return FallbackAnswer, false, nil
	}

	messages := make([]ai.ChatMessage, 0, len(history)+1)
	messages = append(messages, history...)
	messages = append(messages, ai.ChatMessage{Role: "user", Message: question})

	answer, err := s.client.GenerateChat(
		ctx,
		messages,
		ai.WithSystemPrompts(fmt.Sprintf(ai.ChatPrompt, contextBlock)),
	)
	if err != nil {
		return "", false, err
	}
	if strings.TrimSpace(answer) == "" {
		return FallbackAnswer, false, nil
	}

	return answer, true, nil
}
