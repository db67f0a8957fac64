package ai

import (
	"fmt"
	"testing"

	"github.com/cloudwego/eino/schema"
	"github.com/zhouzirui/ai-chat/internal/model/chat"
)

func TestBuildHistoryMessagesRoles(t *testing.T) {
	history := buildHistoryMessages([]chat.Message{
		{Content: "hello"},
		{Content: chat.AssistantContent("hi there")},
	})

	if len(history) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(history))
	}
	if history[0].Role != schema.User || history[0].Content != "hello" {
		t.Fatalf("unexpected first message: %+v", history[0])
	}
	if history[1].Role != schema.Assistant || history[1].Content != "hi there" {
		t.Fatalf("unexpected second message: %+v", history[1])
	}
}

func TestBuildHistoryMessagesLimit(t *testing.T) {
	var messages []chat.Message
	for i := 0; i < 25; i++ {
		messages = append(messages, chat.Message{Content: fmt.Sprintf("m%d", i)})
	}

	history := buildHistoryMessages(messages)
	if len(history) != historyLimit {
		t.Fatalf("expected %d messages, got %d", historyLimit, len(history))
	}
	if history[0].Content != "m15" {
		t.Fatalf("expected oldest kept message m15, got %s", history[0].Content)
	}
	if buildHistoryMessages(nil) != nil {
		t.Fatal("expected nil history for no messages")
	}
}
