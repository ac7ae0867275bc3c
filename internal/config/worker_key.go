package config

// WorkerKeyStruct names the runners that may own a sync or rebuild lease.
// The name is stored as the lease value so logs show who held it.
type WorkerKeyStruct struct {
	SyncWorker    string
	RebuildWorker string
	ManualRun     string
}

var WorkerKey = &WorkerKeyStruct{
	SyncWorker:    "sync_worker",
	RebuildWorker: "rebuild_worker",
	ManualRun:     "manual_run",
}
