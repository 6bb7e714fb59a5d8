package llmclient

import (
	"context"
	"encoding/json"
	"sync"
)

// FakeResponse is one scripted reply for the fake client.
type FakeResponse struct {
	JSON json.RawMessage
	Err  error
}

// FakeClient returns scripted responses in order and records every request
// it saw. Used by pipeline and handler tests; no network involved.
type FakeClient struct {
	mu       sync.Mutex
	script   []FakeResponse
	requests []Request
}

func NewFakeClient(script ...FakeResponse) *FakeClient {
	return &FakeClient{script: script}
}

func (f *FakeClient) Name() string { return "FakeLLM" }
func (f *FakeClient) Close() error { return nil }

func (f *FakeClient) GenerateJSON(_ context.Context, req Request) (json.RawMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	if len(f.script) == 0 {
		return json.RawMessage(`{}`), nil
	}
	next := f.script[0]
	f.script = f.script[1:]
	if next.Err != nil {
		return nil, next.Err
	}
	return next.JSON, nil
}

// Calls returns how many requests the fake has served.
func (f *FakeClient) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

// Request returns the i-th recorded request.
func (f *FakeClient) Request(i int) Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[i]
}
