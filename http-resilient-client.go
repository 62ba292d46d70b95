package ec3client

import (
	"context"

	"github.com/RassulYunussov/ec3client/common"
)

// Client is the EC3 API executor plus per-method shortcuts.
// Retried conditions: network errors, http-429
// Terminal conditions: any other non-2xx status, missing credentials, context.Canceled|context.DeadlineExceeded
type Client interface {
	common.Executor
	Get(ctx context.Context, url string) (*common.Outcome, error)
	Post(ctx context.Context, url string, body any) (*common.Outcome, error)
	Patch(ctx context.Context, url string, body any) (*common.Outcome, error)
	Put(ctx context.Context, url string, body any) (*common.Outcome, error)
	Delete(ctx context.Context, url string) (*common.Outcome, error)
}

type client struct {
	executor common.Executor
}

func (c *client) Execute(ctx context.Context, request common.Request) (*common.Outcome, error) {
	return c.executor.Execute(ctx, request)
}

func (c *client) Get(ctx context.Context, url string) (*common.Outcome, error) {
	return c.executor.Execute(ctx, common.Request{URL: url, Method: common.MethodGet})
}

func (c *client) Post(ctx context.Context, url string, body any) (*common.Outcome, error) {
	return c.executor.Execute(ctx, common.Request{URL: url, Method: common.MethodPost, Body: body})
}

func (c *client) Patch(ctx context.Context, url string, body any) (*common.Outcome, error) {
	return c.executor.Execute(ctx, common.Request{URL: url, Method: common.MethodPatch, Body: body})
}

func (c *client) Put(ctx context.Context, url string, body any) (*common.Outcome, error) {
	return c.executor.Execute(ctx, common.Request{URL: url, Method: common.MethodPut, Body: body})
}

func (c *client) Delete(ctx context.Context, url string) (*common.Outcome, error) {
	return c.executor.Execute(ctx, common.Request{URL: url, Method: common.MethodDelete})
}
