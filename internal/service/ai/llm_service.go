package ai

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	"github.com/zhouzirui/ai-chat/internal/config"
	"github.com/zhouzirui/ai-chat/internal/model/chat"
)

const (
	historyLimit = 10

	systemPrompt = "You are a helpful AI chat assistant. Answer clearly and concisely. " +
		"Reply in the language the user writes in."
)

// Service generates assistant replies through an eino chain backed by an Ark model.
type Service struct {
	chatModel model.ChatModel
	chain     compose.Runnable[map[string]any, *schema.Message]
}

// NewService creates a new AI service instance
func NewService(ctx context.Context, cfg config.AIConfig) (*Service, error) {
	chatModel, err := cfg.NewChatModel(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat model: %w", err)
	}
	return NewServiceWithModel(ctx, chatModel)
}

// NewServiceWithModel builds the chain around an existing chat model.
func NewServiceWithModel(ctx context.Context, chatModel model.ChatModel) (*Service, error) {
	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage("{system}"),
		schema.MessagesPlaceholder("history", true),
		schema.UserMessage("{query}"),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile chat chain: %w", err)
	}

	return &Service{
		chatModel: chatModel,
		chain:     runnable,
	}, nil
}

// Reply generates the assistant answer to content given the stored history.
func (s *Service) Reply(ctx context.Context, history []chat.Message, content string) (string, error) {
	response, err := s.chain.Invoke(ctx, buildChainInput(history, content))
	if err != nil {
		return "", fmt.Errorf("failed to run AI chain: %w", err)
	}

	log.Printf("[ai] generated response, history=%d, length=%d", len(history), len(response.Content))
	return response.Content, nil
}

func buildChainInput(history []chat.Message, content string) map[string]any {
	return map[string]any{
		"system":  systemPrompt,
		"history": buildHistoryMessages(history),
		"query":   content,
	}
}

// buildHistoryMessages maps the last stored turns to model roles; the "AI:"
// prefix marks assistant turns.
func buildHistoryMessages(messages []chat.Message) []*schema.Message {
	if len(messages) == 0 {
		return nil
	}

	startIdx := 0
	if len(messages) > historyLimit {
		startIdx = len(messages) - historyLimit
	}

	history := make([]*schema.Message, 0, len(messages)-startIdx)
	for _, msg := range messages[startIdx:] {
		if msg.FromAssistant() {
			text := strings.TrimSpace(strings.TrimPrefix(msg.Content, chat.AssistantPrefix))
			history = append(history, schema.AssistantMessage(text, nil))
			continue
		}
		history = append(history, schema.UserMessage(msg.Content))
	}

	return history
}
