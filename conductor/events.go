package conductor

import "github.com/tailored-agentic-units/conductor/observability"

// Conductor event types emitted during request orchestration.
const (
	EventRunStart     observability.EventType = "conductor.run.start"
	EventProviderCall observability.EventType = "conductor.provider.call"
	EventResponse     observability.EventType = "conductor.response"
	EventError        observability.EventType = "conductor.error"
	EventHistoryClear observability.EventType = "conductor.history.clear"
)
