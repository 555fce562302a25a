package observability

// Span names.
const (
	SpanDispatch    = "frankx.dispatch"
	SpanLLMRequest  = "frankx.llm.request"
	SpanHTTPRequest = "frankx.http.request"
)

// Attribute keys.
const (
	AttrAgentID         = "agent.id"
	AttrProvider        = "llm.provider"
	AttrLLMModel        = "llm.model"
	AttrLLMTokensInput  = "llm.tokens.input"
	AttrLLMTokensOutput = "llm.tokens.output"
	AttrDegraded        = "dispatch.degraded"
)
