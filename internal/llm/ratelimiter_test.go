package llm_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ziadkadry99/docqa/internal/llm"
	"github.com/ziadkadry99/docqa/internal/llm/llmtest"
)

func TestRateLimitedProviderPassesThrough(t *testing.T) {
	mock := llmtest.NewMockProvider("test")
	p := llm.NewRateLimitedProvider(mock, 60)

	resp, err := p.Complete(context.Background(), llm.CompletionRequest{Model: "m"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Content != "mock response" {
		t.Errorf("expected 'mock response', got %q", resp.Content)
	}
	if mock.CallCount() != 1 {
		t.Errorf("expected 1 call, got %d", mock.CallCount())
	}
	if mock.LastRequest().Model != "m" {
		t.Errorf("expected model 'm', got %q", mock.LastRequest().Model)
	}
}

func TestRateLimitedProviderHonoursContext(t *testing.T) {
	mock := llmtest.NewMockProvider("test")
	p := llm.NewRateLimitedProvider(mock, 1)

	// The first call drains the single-token bucket.
	if _, err := p.Complete(context.Background(), llm.CompletionRequest{}); err != nil {
		t.Fatalf("first call: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if _, err := p.Complete(ctx, llm.CompletionRequest{}); err == nil {
		t.Fatal("expected the second call to be limited")
	}
	if mock.CallCount() != 1 {
		t.Errorf("expected 1 call to reach the provider, got %d", mock.CallCount())
	}
}

func TestMockProviderError(t *testing.T) {
	mock := llmtest.NewMockProvider("test")
	mock.Err = errors.New("boom")

	if _, err := mock.Complete(context.Background(), llm.CompletionRequest{}); err == nil {
		t.Fatal("expected error")
	}
}
