package lsp

import "encoding/json"

type InitializeRequestParams struct {
	WorkDoneProgressParams
	ProcessID    *int32             `json:"processId"`
	ClientInfo   *ClientInfo        `json:"clientInfo"`
	RootURI      DocumentURI        `json:"rootUri"`
	RootPath     string             `json:"rootPath,omitempty"`
	Capabilities ClientCapabilities `json:"capabilities"`
	// InitializationOptions is decoded by the server into its own settings.
	InitializationOptions json.RawMessage `json:"initializationOptions,omitempty"`
}

type WorkDoneProgressParams struct {
	// An optional token that a server can use to report work done progress.
	WorkDoneToken ProgressToken `json:"workDoneToken,omitempty"`
}

type ClientCapabilities struct {
	Window ClientWindowCapabilities `json:"window"`
}

type ClientWindowCapabilities struct {
	WorkDoneProgress bool `json:"workDoneProgress"`
}

type ClientInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

type InitializedParams struct{}

type InitializeResult struct {
	Capabilities ServerCapabilities `json:"capabilities"`
	ServerInfo   ServerInfo         `json:"serverInfo"`
}

// TextDocumentSyncKind defines how the client syncs document changes.
type TextDocumentSyncKind int

const (
	SyncNone        TextDocumentSyncKind = 0
	SyncFull        TextDocumentSyncKind = 1
	SyncIncremental TextDocumentSyncKind = 2
)

type ServerCapabilities struct {
	TextDocumentSync        TextDocumentSyncKind         `json:"textDocumentSync"`
	DefinitionProvider      bool                         `json:"definitionProvider"`
	HoverProvider           bool                         `json:"hoverProvider"`
	DocumentSymbolProvider  bool                         `json:"documentSymbolProvider"`
	WorkspaceSymbolProvider bool                         `json:"workspaceSymbolProvider"`
	Workspace               *WorkspaceServerCapabilities `json:"workspace,omitempty"`
}

type WorkspaceServerCapabilities struct {
	WorkspaceFolders WorkspaceFoldersServerCapabilities `json:"workspaceFolders"`
}

type WorkspaceFoldersServerCapabilities struct {
	Supported           bool `json:"supported"`
	ChangeNotifications bool `json:"changeNotifications"`
}

type ServerInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}
