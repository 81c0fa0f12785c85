package protocol

// Method constants for the document-event surface and the parse-worker RPC.
const (
	// Document sync (editor -> core)
	MethodDidOpen         = "textDocument/didOpen"
	MethodDidChange       = "textDocument/didChange"
	MethodDidClose        = "textDocument/didClose"
	MethodSelectionChange = "textDocument/selectionChange"

	// Parse worker (core -> worker process)
	MethodWorkerParse      = "worker/parse"
	MethodWorkerCaptures   = "worker/captures"
	MethodWorkerStructure  = "worker/structure"
	MethodWorkerBlockNames = "worker/blockNames"
	MethodWorkerShutdown   = "worker/shutdown"
)
