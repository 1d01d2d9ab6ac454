package tracing

// Span names for the shell's traced operations.
const (
	SpanBackendHealth    = "backend.health"
	SpanBackendProjects  = "backend.projects"
	SpanTransportSession = "transport.session"
	SpanStoreSet         = "store.set"
	SpanStoreDelete      = "store.delete"
)

// Attribute keys for span metadata.
const (
	AttrEndpoint   = "backend.endpoint"
	AttrHTTPStatus = "http.status_code"
	AttrSessionID  = "transport.session_id"
	AttrNoticeType = "notice.type"
	AttrSettingKey = "store.key"
)

// Event names for span events.
const (
	EventNoticeReceived = "notice.received"
)
