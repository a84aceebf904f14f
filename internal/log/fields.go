package log

// Common field names for structured logging
const (
	FieldComponent   = "component"
	FieldRequestID   = "request_id"
	FieldClientIP    = "client_ip"
	FieldMethod      = "method"
	FieldPath        = "path"
	FieldStatusCode  = "status_code"
	FieldDuration    = "duration_ms"
	FieldUserAgent   = "user_agent"
	FieldSuccess     = "success"
	FieldError       = "error"
	FieldUserID      = "user_id"
	FieldTxID        = "transaction_id"
	FieldTxType      = "transaction_type"
	FieldCategory    = "category"
	FieldAmountCents = "amount_cents"
	FieldInsights    = "insight_count"
	FieldSimilarity  = "similarity_score"
	FieldKeyword     = "top_keyword"
	FieldModel       = "model"
	FieldLedgerRef   = "ledger_ref"
)

// Components defines standard component names
const (
	ComponentApp      = "app"
	ComponentHTTP     = "http"
	ComponentAuth     = "auth"
	ComponentStorage  = "storage"
	ComponentInsights = "insights"
	ComponentGenAI    = "genai"
	ComponentAMQP     = "amqp"
	ComponentWorker   = "worker"
	ComponentLedger   = "ledger"
)
