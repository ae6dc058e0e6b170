package engine

const (
	operationJournal = "journal"

	operationStatusOK      = "ok"
	operationStatusIgnored = "ignored"
	operationStatusError   = "error"

	errorSubjectTransaction = "transaction"
	errorCodeRecord         = "record"
)
