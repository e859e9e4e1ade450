package lsp

// Method names of the messages the server handles or sends.
const (
	MethodInitialize      = "initialize"
	MethodInitialized     = "initialized"
	MethodShutdown        = "shutdown"
	MethodExit            = "exit"
	MethodWorkspaceSymbol = "workspace/symbol"
	MethodDocumentSymbol  = "textDocument/documentSymbol"
	MethodHover           = "textDocument/hover"
	MethodDefinition      = "textDocument/definition"
	MethodDidOpen         = "textDocument/didOpen"
	MethodDidChange       = "textDocument/didChange"
	MethodDidSave         = "textDocument/didSave"
	MethodDidClose        = "textDocument/didClose"

	MethodPublishDiagnostics     = "textDocument/publishDiagnostics"
	MethodWorkDoneProgressCreate = "window/workDoneProgress/create"
	MethodProgress               = "$/progress"
	MethodShowMessage            = "window/showMessage"
	MethodLogMessage             = "window/logMessage"
)

var (
	// See https://microsoft.github.io/language-server-protocol/specifications/lsp/3.17/specification#initialize
	InitializeRequest = RequestKind[InitializeRequestParams, *InitializeResult]{Method: MethodInitialize}
	// See https://microsoft.github.io/language-server-protocol/specifications/lsp/3.17/specification#shutdown
	ShutdownRequest = RequestKind[NoParams, any]{Method: MethodShutdown}
	// See https://microsoft.github.io/language-server-protocol/specifications/lsp/3.17/specification#workspace_symbol
	WorkspaceSymbolRequest = RequestKind[WorkspaceSymbolParams, []SymbolInformation]{Method: MethodWorkspaceSymbol}
	// See https://microsoft.github.io/language-server-protocol/specifications/lsp/3.17/specification#textDocument_documentSymbol
	DocumentSymbolRequest = RequestKind[DocumentSymbolParams, []DocumentSymbol]{Method: MethodDocumentSymbol}
	// See https://microsoft.github.io/language-server-protocol/specifications/lsp/3.17/specification#textDocument_hover
	HoverRequest = RequestKind[HoverParams, *Hover]{Method: MethodHover}
	// See https://microsoft.github.io/language-server-protocol/specifications/lsp/3.17/specification#textDocument_definition
	DefinitionRequest = RequestKind[DefinitionParams, []LocationLink]{Method: MethodDefinition}

	// See https://microsoft.github.io/language-server-protocol/specifications/lsp/3.17/specification#initialized
	InitializedNotification = NotificationKind[InitializedParams]{Method: MethodInitialized}
	// See https://microsoft.github.io/language-server-protocol/specifications/lsp/3.17/specification#exit
	ExitNotification = NotificationKind[NoParams]{Method: MethodExit}
	// See https://microsoft.github.io/language-server-protocol/specifications/lsp/3.17/specification#textDocument_didOpen
	DidOpenNotification = NotificationKind[DidOpenTextDocumentParams]{Method: MethodDidOpen}
	// See https://microsoft.github.io/language-server-protocol/specifications/lsp/3.17/specification#textDocument_didChange
	DidChangeNotification = NotificationKind[DidChangeTextDocumentParams]{Method: MethodDidChange}
	// See https://microsoft.github.io/language-server-protocol/specifications/lsp/3.17/specification#textDocument_didSave
	DidSaveNotification = NotificationKind[DidSaveTextDocumentParams]{Method: MethodDidSave}
	// See https://microsoft.github.io/language-server-protocol/specifications/lsp/3.17/specification#textDocument_didClose
	DidCloseNotification = NotificationKind[DidCloseTextDocumentParams]{Method: MethodDidClose}
)
