package batch

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/sells-group/payee-cli/pkg/anthropic"
)

type mockAI struct {
	mock.Mock
}

func (m *mockAI) CreateMessage(ctx context.Context, req anthropic.MessageRequest) (*anthropic.MessageResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*anthropic.MessageResponse), args.Error(1)
}

func (m *mockAI) CreateBatch(ctx context.Context, req anthropic.BatchRequest) (*anthropic.BatchResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*anthropic.BatchResponse), args.Error(1)
}

func (m *mockAI) GetBatch(ctx context.Context, batchID string) (*anthropic.BatchResponse, error) {
	args := m.Called(ctx, batchID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*anthropic.BatchResponse), args.Error(1)
}

func (m *mockAI) GetBatchResults(ctx context.Context, batchID string) (anthropic.BatchResultIterator, error) {
	args := m.Called(ctx, batchID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(anthropic.BatchResultIterator), args.Error(1)
}

func (m *mockAI) CancelBatch(ctx context.Context, batchID string) (*anthropic.BatchResponse, error) {
	args := m.Called(ctx, batchID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*anthropic.BatchResponse), args.Error(1)
}

// fakeIterator plays back canned batch results.
type fakeIterator struct {
	items []anthropic.BatchResultItem
	idx   int
}

func (it *fakeIterator) Next() bool {
	if it.idx >= len(it.items) {
		return false
	}
	it.idx++
	return true
}

func (it *fakeIterator) Item() anthropic.BatchResultItem { return it.items[it.idx-1] }
func (it *fakeIterator) Err() error                      { return nil }
func (it *fakeIterator) Close() error                    { return nil }

func succeededItem(customID, text string) anthropic.BatchResultItem {
	return anthropic.BatchResultItem{
		CustomID: customID,
		Type:     "succeeded",
		Message: &anthropic.MessageResponse{
			Content: []anthropic.ContentBlock{{Type: "text", Text: text}},
		},
	}
}
