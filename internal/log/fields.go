package log

// Common field names for structured logging.
const (
	FieldComponent     = "component"
	FieldRequestID     = "request_id"
	FieldClientIP      = "client_ip"
	FieldMethod        = "method"
	FieldPath          = "path"
	FieldStatusCode    = "status_code"
	FieldDuration      = "duration_ms"
	FieldError         = "error"
	FieldOperation     = "operation"
	FieldMonth         = "month"
	FieldDate          = "date"
	FieldAmount        = "amount"
	FieldCurrency      = "currency"
	FieldTransactionID = "transaction_id"
	FieldCategoryID    = "category_id"
	FieldCategoryName  = "category_name"
	FieldQueue         = "queue"
	FieldRowRef        = "row_ref"
)

// Components defines standard component names.
const (
	ComponentApp     = "app"
	ComponentHTTP    = "http"
	ComponentLedger  = "ledger"
	ComponentReports = "reports"
	ComponentStorage = "storage"
	ComponentRates   = "rates"
	ComponentAMQP    = "amqp"
	ComponentWorker  = "worker"
	ComponentSheets  = "sheets"
	ComponentCache   = "cache"
)

// Operations defines standard operation names.
const (
	OpCreate   = "create"
	OpUpdate   = "update"
	OpDelete   = "delete"
	OpList     = "list"
	OpReport   = "report"
	OpSync     = "sync"
	OpStartup  = "startup"
	OpShutdown = "shutdown"
)
