package log

// Common field names for structured logging
const (
	FieldComponent      = "component"
	FieldError          = "error"
	FieldOperation      = "operation"
	FieldUserID         = "user_id"
	FieldUsername       = "username"
	FieldTransactionID  = "transaction_id"
	FieldTransactionRef = "transaction_ref"
	FieldCategory       = "category"
	FieldKind           = "kind"
	FieldDate           = "date"
	FieldAmountCents    = "amount_cents"
	FieldLimitCents     = "limit_cents"
	FieldSpentCents     = "spent_cents"
	FieldOverageCents   = "overage_cents"
	FieldMonth          = "month"
	FieldPath           = "path"
	FieldEvent          = "event"
	FieldMessageID      = "message_id"
	FieldMessageType    = "message_type"
	FieldQueue          = "queue"
	FieldSheetsRef      = "sheets_ref"
	FieldDelay          = "delay"
)

// Components defines standard component names
const (
	ComponentApp     = "app"
	ComponentAccount = "account"
	ComponentLedger  = "ledger"
	ComponentBudget  = "budget"
	ComponentStorage = "storage"
	ComponentBackend = "backend"
	ComponentAMQP    = "amqp"
	ComponentWorker  = "worker"
	ComponentSheets  = "sheets"
	ComponentMenu    = "menu"
)

// Operations defines standard operation names
const (
	OpRegister = "register"
	OpLogin    = "login"
	OpAdd      = "add"
	OpBudget   = "budget"
	OpReport   = "report"
	OpBackup   = "backup"
	OpRestore  = "restore"
	OpExport   = "export"
	OpSync     = "sync"
	OpStartup  = "startup"
	OpShutdown = "shutdown"
)
