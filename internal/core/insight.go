package core

// InsightKind is the display tag attached to an insight. The frontend maps
// kinds to badge colors; "purple" marks the generative headliner.
type InsightKind string

const (
	InsightInfo    InsightKind = "info"
	InsightSuccess InsightKind = "success"
	InsightWarning InsightKind = "warning"
	InsightPurple  InsightKind = "purple"
)

// Insight is a single ranked finding surfaced to the user. Insights are
// built per request and never persisted; slice order is the display order.
type Insight struct {
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Kind        InsightKind `json:"type"`
	Reason      string      `json:"reason,omitempty"`
}
