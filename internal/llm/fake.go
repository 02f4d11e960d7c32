package llm

import "context"

// FakeClient returns a deterministic, minimal artifact payload for offline
// runs and tests.
type FakeClient struct {
	Response string
	Err      error
}

func NewFakeClient() *FakeClient { return &FakeClient{} }

func (f *FakeClient) Name() string { return "FakeLLM" }
func (f *FakeClient) Close() error { return nil }

func (f *FakeClient) Generate(ctx context.Context, req Request) (*Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if f.Err != nil {
		return nil, f.Err
	}
	text := f.Response
	if text == "" {
		text = `{"artifact_type":"frontend","language":"html","files":[{"path":"index.html","content":"<h1>offline preview</h1>"}],"run":null}`
	}
	return &Response{Text: text}, nil
}
