package testutil

import "context"

// MockTxClient satisfies the transaction boundary without a database. The
// in-memory stores keep their own operations atomic, so passing the context
// through is enough for service tests.
type MockTxClient struct{}

func NewMockTxClient() *MockTxClient {
	return &MockTxClient{}
}

func (c *MockTxClient) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
