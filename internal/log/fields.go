package log

// Common field names for structured logging
const (
	FieldComponent  = "component"
	FieldRequestID  = "request_id"
	FieldClientIP   = "client_ip"
	FieldMethod     = "method"
	FieldPath       = "path"
	FieldStatusCode = "status_code"
	FieldDuration   = "duration_ms"
	FieldError      = "error"
	FieldOperation  = "operation"

	FieldEnvelopeID   = "envelope_id"
	FieldItemID       = "item_id"
	FieldSourceID     = "source_id"
	FieldAmountCents  = "amount_cents"
	FieldGapCents     = "gap_cents"
	FieldStatus       = "status"
	FieldDaysUntilDue = "days_until_due"
	FieldAsOf         = "as_of"
)

// Components defines standard component names
const (
	ComponentApp      = "app"
	ComponentHTTP     = "http"
	ComponentEngine   = "engine"
	ComponentSnowball = "snowball"
	ComponentStorage  = "storage"
	ComponentAMQP     = "amqp"
	ComponentWorker   = "worker"
	ComponentPayment  = "payment"
)

// Operations defines standard operation names
const (
	OpPredict    = "predict"
	OpDistribute = "distribute"
	OpCreate     = "create"
	OpRead       = "read"
	OpList       = "list"
	OpPublish    = "publish"
	OpConsume    = "consume"
	OpStartup    = "startup"
	OpShutdown   = "shutdown"
)
