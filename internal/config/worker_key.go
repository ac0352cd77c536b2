package config

// WorkerKeyStruct names the Redis lists drained by background workers.
type WorkerKeyStruct struct {
	// PersistCheatingLogsQueue carries JSON-encoded cheating logs waiting
	// to be upserted into Postgres.
	PersistCheatingLogsQueue string
}

var WorkerKey = &WorkerKeyStruct{
	PersistCheatingLogsQueue: "proctor:persist_cheating_logs",
}
