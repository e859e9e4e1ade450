package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/corymhall/aidllsp/config"
	"github.com/corymhall/aidllsp/lsp"
	"github.com/corymhall/aidllsp/rpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// harness drives a Server through its rpc.Handler.
type harness struct {
	t      *testing.T
	srv    *Server
	client *fakeClient
	nextID int64
}

func newHarness(t *testing.T) *harness {
	client := newFakeClient()
	return &harness{t: t, srv: New(client, nil), client: client}
}

// call sends a request and returns what the server replied.
func (h *harness) call(method string, params any) (any, error) {
	h.t.Helper()
	h.nextID++
	req, err := rpc.NewCall(rpc.NewIntID(h.nextID), method, params)
	require.NoError(h.t, err)

	replied := false
	var result any
	var replyErr error
	err = h.srv.Handler()(context.Background(), func(_ context.Context, res any, err error) error {
		replied = true
		result, replyErr = res, err
		return nil
	}, req)
	require.NoError(h.t, err)
	require.True(h.t, replied, "%s was not answered", method)
	return result, replyErr
}

func (h *harness) notify(method string, params any) error {
	h.t.Helper()
	req, err := rpc.NewNotification(method, params)
	require.NoError(h.t, err)
	return h.srv.Handler()(context.Background(), func(context.Context, any, error) error {
		h.t.Fatalf("notification %s answered", method)
		return nil
	}, req)
}

// start initializes the server on root and runs the initial index.
func (h *harness) start(root string) {
	h.t.Helper()
	_, err := h.call(lsp.MethodInitialize, lsp.InitializeRequestParams{RootURI: lsp.URIFromPath(root)})
	require.NoError(h.t, err)
	require.NoError(h.t, h.notify(lsp.MethodInitialized, lsp.InitializedParams{}))
	require.Equal(h.t, StageIndexed, h.srv.Workspace().Stage())
}

func rpcCode(t *testing.T, err error) int64 {
	t.Helper()
	var rpcErr *rpc.Error
	require.ErrorAs(t, err, &rpcErr)
	return rpcErr.Code
}

func TestLifecycle(t *testing.T) {
	root := workspaceDir(t, map[string]string{"a.aidl": fooSource, "b.aidl": barSource})
	h := newHarness(t)
	hover := lsp.HoverParams{TextDocumentPositionParams: lsp.TextDocumentPositionParams{
		TextDocument: lsp.TextDocumentIdentifier{URI: uriOf(root, "a.aidl")},
		Position:     pos(3, 21),
	}}

	_, err := h.call(lsp.MethodHover, hover)
	assert.Equal(t, rpc.CodeServerNotInitialized, rpcCode(t, err))
	assert.EqualError(t, err, "textDocument/hover called before initialize")
	// notifications before initialize are dropped
	require.NoError(t, h.notify(lsp.MethodDidOpen, lsp.DidOpenTextDocumentParams{}))

	result, err := h.call(lsp.MethodInitialize, lsp.InitializeRequestParams{RootURI: lsp.URIFromPath(root)})
	require.NoError(t, err)
	initResult, ok := result.(*lsp.InitializeResult)
	require.True(t, ok)
	assert.Equal(t, "aidllsp", initResult.ServerInfo.Name)
	assert.Equal(t, Version, initResult.ServerInfo.Version)
	assert.Equal(t, lsp.SyncFull, initResult.Capabilities.TextDocumentSync)
	assert.True(t, initResult.Capabilities.HoverProvider)
	assert.True(t, initResult.Capabilities.DefinitionProvider)
	assert.True(t, initResult.Capabilities.DocumentSymbolProvider)
	assert.True(t, initResult.Capabilities.WorkspaceSymbolProvider)

	_, err = h.call(lsp.MethodInitialize, lsp.InitializeRequestParams{RootURI: lsp.URIFromPath(root)})
	assert.ErrorIs(t, err, rpc.ErrInvalidRequest)

	// initialized but not indexed yet
	_, err = h.call(lsp.MethodHover, hover)
	assert.ErrorIs(t, err, ErrNotIndexed)

	require.NoError(t, h.notify(lsp.MethodInitialized, lsp.InitializedParams{}))
	assert.Equal(t, StageIndexed, h.srv.Workspace().Stage())
	assert.Equal(t, root, h.srv.Workspace().Root())

	result, err = h.call(lsp.MethodHover, hover)
	require.NoError(t, err)
	require.IsType(t, &lsp.Hover{}, result)
	assert.Equal(t, "```aidl\nparcelable Bar\n```", result.(*lsp.Hover).Contents.Value)

	result, err = h.call(lsp.MethodShutdown, nil)
	require.NoError(t, err)
	assert.Nil(t, result)

	_, err = h.call(lsp.MethodHover, hover)
	assert.Equal(t, rpc.CodeInvalidRequest, rpcCode(t, err))
	assert.EqualError(t, err, "textDocument/hover called after shutdown")
	require.NoError(t, h.notify(lsp.MethodDidOpen, lsp.DidOpenTextDocumentParams{}))

	err = h.notify(lsp.MethodExit, nil)
	assert.ErrorIs(t, err, rpc.ErrClosed)
	assert.Equal(t, 0, h.srv.ExitCode())
}

func TestExitWithoutShutdown(t *testing.T) {
	h := newHarness(t)
	assert.ErrorIs(t, h.notify(lsp.MethodExit, nil), rpc.ErrClosed)
	assert.Equal(t, 1, h.srv.ExitCode())
}

func TestUnknownMethods(t *testing.T) {
	h := newHarness(t)
	h.start(workspaceDir(t, map[string]string{"a.aidl": fooSource}))

	_, err := h.call("textDocument/completion", nil)
	assert.Equal(t, rpc.CodeMethodNotFound, rpcCode(t, err))
	assert.ErrorIs(t, err, rpc.ErrMethodNotFound)
	assert.NoError(t, h.notify("$/cancelRequest", map[string]int{"id": 1}))
	assert.NoError(t, h.notify("workspace/didChangeConfiguration", nil))
}

func TestInvalidParams(t *testing.T) {
	h := newHarness(t)
	h.start(workspaceDir(t, map[string]string{"a.aidl": fooSource}))

	_, err := h.call(lsp.MethodHover, []int{1, 2})
	assert.Equal(t, rpc.CodeInvalidParams, rpcCode(t, err))
}

func TestInitializeProgress(t *testing.T) {
	files := map[string]string{"a.aidl": fooSource, "b.aidl": barSource}

	t.Run("client token", func(t *testing.T) {
		root := workspaceDir(t, files)
		client := newFakeClient()
		s := New(client, nil)
		params := lsp.InitializeRequestParams{RootURI: lsp.URIFromPath(root)}
		params.WorkDoneToken = "init-1"
		params.Capabilities.Window.WorkDoneProgress = true
		_, err := s.Initialize(context.Background(), params)
		require.NoError(t, err)
		require.NoError(t, s.Initialized(context.Background(), lsp.InitializedParams{}))

		assert.Empty(t, client.created)
		require.Len(t, client.begun, 1)
		assert.Equal(t, "init-1", client.begun[0].Token)
		assert.Equal(t, "Indexing workspace...", client.begun[0].Value.Message)
		require.Len(t, client.ended, 1)
		assert.Equal(t, "init-1", client.ended[0].Token)
		assert.Equal(t, "Indexed 2 files.", client.ended[0].Value.Message)
		assert.Empty(t, client.shown)
	})

	t.Run("server token", func(t *testing.T) {
		root := workspaceDir(t, files)
		client := newFakeClient()
		s := New(client, nil)
		params := lsp.InitializeRequestParams{RootURI: lsp.URIFromPath(root)}
		params.Capabilities.Window.WorkDoneProgress = true
		_, err := s.Initialize(context.Background(), params)
		require.NoError(t, err)
		require.NoError(t, s.Initialized(context.Background(), lsp.InitializedParams{}))

		require.Len(t, client.created, 1)
		require.Len(t, client.begun, 1)
		assert.Equal(t, client.created[0], client.begun[0].Token)
		require.Len(t, client.ended, 1)
		assert.Equal(t, client.created[0], client.ended[0].Token)
	})

	t.Run("no progress support", func(t *testing.T) {
		root := workspaceDir(t, files)
		client := newFakeClient()
		s := New(client, nil)
		_, err := s.Initialize(context.Background(), lsp.InitializeRequestParams{RootPath: root})
		require.NoError(t, err)
		require.NoError(t, s.Initialized(context.Background(), lsp.InitializedParams{}))

		assert.Empty(t, client.begun)
		assert.Equal(t, []*lsp.ShowMessageParams{
			{Type: lsp.MessageLog, Message: "Indexing workspace..."},
			{Type: lsp.MessageInfo, Message: "Indexed 2 files."},
		}, client.shown)
	})
}

func TestInitializedFailure(t *testing.T) {
	client := newFakeClient()
	s := New(client, nil)
	missing := filepath.Join(t.TempDir(), "missing")
	_, err := s.Initialize(context.Background(), lsp.InitializeRequestParams{RootPath: missing})
	require.NoError(t, err)

	err = s.Initialized(context.Background(), lsp.InitializedParams{})
	require.Error(t, err)
	assert.Equal(t, StageError, s.Workspace().Stage())
	require.Len(t, client.shown, 2)
	assert.Equal(t, "Indexing failed.", client.shown[1].Message)

	// through the handler the failure is logged, the connection stays up
	s = New(newFakeClient(), nil)
	h := &harness{t: t, srv: s}
	_, err = h.call(lsp.MethodInitialize, lsp.InitializeRequestParams{RootPath: missing})
	require.NoError(t, err)
	assert.NoError(t, h.notify(lsp.MethodInitialized, lsp.InitializedParams{}))
	assert.Equal(t, StageError, s.Workspace().Stage())

	assert.ErrorIs(t, s.Initialized(context.Background(), lsp.InitializedParams{}), rpc.ErrInvalidRequest)
}

func TestInitializeSettings(t *testing.T) {
	root := workspaceDir(t, map[string]string{
		"a.idl":        fooSource,
		"b.idl":        barSource,
		"c.aidl":       "package p;\ninterface Ignored {}\n",
		config.FileName: "extensions: [aidl]\nlogLevel: warn\n",
	})

	t.Run("file and options", func(t *testing.T) {
		level := new(slog.LevelVar)
		s := New(newFakeClient(), level)
		_, err := s.Initialize(context.Background(), lsp.InitializeRequestParams{
			RootURI:               lsp.URIFromPath(root),
			InitializationOptions: json.RawMessage(`{"extensions": ["idl"], "logLevel": "debug"}`),
		})
		require.NoError(t, err)
		require.NoError(t, s.Initialized(context.Background(), lsp.InitializedParams{}))

		assert.Equal(t, []lsp.DocumentURI{uriOf(root, "a.idl"), uriOf(root, "b.idl")}, s.Workspace().URIs())
		assert.Equal(t, slog.LevelDebug, level.Level())
	})

	t.Run("file only", func(t *testing.T) {
		level := new(slog.LevelVar)
		s := New(newFakeClient(), level)
		_, err := s.Initialize(context.Background(), lsp.InitializeRequestParams{RootURI: lsp.URIFromPath(root)})
		require.NoError(t, err)
		require.NoError(t, s.Initialized(context.Background(), lsp.InitializedParams{}))

		assert.Equal(t, []lsp.DocumentURI{uriOf(root, "c.aidl")}, s.Workspace().URIs())
		assert.Equal(t, slog.LevelWarn, level.Level())
	})

	t.Run("invalid options fall back to defaults", func(t *testing.T) {
		s := New(newFakeClient(), nil)
		_, err := s.Initialize(context.Background(), lsp.InitializeRequestParams{
			RootURI:               lsp.URIFromPath(root),
			InitializationOptions: json.RawMessage(`{"extensions": []}`),
		})
		require.NoError(t, err)
		require.NoError(t, s.Initialized(context.Background(), lsp.InitializedParams{}))
		assert.Equal(t, []lsp.DocumentURI{uriOf(root, "c.aidl")}, s.Workspace().URIs())
	})
}

func TestDocumentSync(t *testing.T) {
	root := workspaceDir(t, map[string]string{"a.aidl": fooSource, "b.aidl": barSource})
	h := newHarness(t)
	h.start(root)
	a := uriOf(root, "a.aidl")
	broken := "package com.example;\n\ninterface Foo {\n    void process(in Baz baz);\n}\n"
	ctx := context.Background()

	require.NoError(t, h.notify(lsp.MethodDidOpen, lsp.DidOpenTextDocumentParams{
		TextDocument: lsp.TextDocumentItem{URI: a, LanguageID: "aidl", Version: 1, Text: broken},
	}))
	require.Len(t, h.client.diagnostics[a], 1)
	assert.Equal(t, "Unknown type `Baz`", h.client.diagnostics[a][0].Message)

	change := func(changes ...lsp.TextDocumentContentChangeEvent) lsp.DidChangeTextDocumentParams {
		return lsp.DidChangeTextDocumentParams{
			TextDocument: lsp.VersionedTextDocumentIdentifier{
				TextDocumentIdentifier: lsp.TextDocumentIdentifier{URI: a},
				Version:                2,
			},
			ContentChanges: changes,
		}
	}

	t.Run("unsupported changes leave the index alone", func(t *testing.T) {
		keys := h.srv.Workspace().Keys()
		before, _ := h.srv.Workspace().Result(a)
		published := len(h.client.published)

		err := h.srv.DidChange(ctx, change(
			lsp.TextDocumentContentChangeEvent{Text: fooSource},
			lsp.TextDocumentContentChangeEvent{Text: fooSource},
		))
		assert.ErrorIs(t, err, ErrUnsupportedChange)
		assert.EqualError(t, err, "unsupported content change: expected 1 full document change, got 2")

		err = h.srv.DidChange(ctx, change())
		assert.ErrorIs(t, err, ErrUnsupportedChange)

		rng := span(0, 0, 0, 1)
		err = h.srv.DidChange(ctx, change(lsp.TextDocumentContentChangeEvent{Range: &rng, Text: "x"}))
		assert.ErrorIs(t, err, ErrUnsupportedChange)

		// through the handler the failure is only logged
		assert.NoError(t, h.notify(lsp.MethodDidChange, change(
			lsp.TextDocumentContentChangeEvent{Text: fooSource},
			lsp.TextDocumentContentChangeEvent{Text: fooSource},
		)))

		after, _ := h.srv.Workspace().Result(a)
		assert.Same(t, before, after)
		assert.Equal(t, keys, h.srv.Workspace().Keys())
		assert.Len(t, h.client.published, published)
	})

	t.Run("full change", func(t *testing.T) {
		require.NoError(t, h.notify(lsp.MethodDidChange, change(lsp.TextDocumentContentChangeEvent{Text: fooSource})))
		assert.Empty(t, h.client.diagnostics[a])
	})

	t.Run("save with text", func(t *testing.T) {
		text := broken
		require.NoError(t, h.notify(lsp.MethodDidSave, lsp.DidSaveTextDocumentParams{
			TextDocument: lsp.TextDocumentIdentifier{URI: a},
			Text:         &text,
		}))
		assert.Len(t, h.client.diagnostics[a], 1)
	})

	t.Run("close reloads from disk", func(t *testing.T) {
		require.NoError(t, h.notify(lsp.MethodDidClose, lsp.DidCloseTextDocumentParams{
			TextDocument: lsp.TextDocumentIdentifier{URI: a},
		}))
		assert.Empty(t, h.client.diagnostics[a])
	})

	t.Run("save without text reloads from disk", func(t *testing.T) {
		require.NoError(t, os.WriteFile(filepath.Join(root, "a.aidl"), []byte(broken), 0o644))
		require.NoError(t, h.notify(lsp.MethodDidSave, lsp.DidSaveTextDocumentParams{
			TextDocument: lsp.TextDocumentIdentifier{URI: a},
		}))
		assert.Len(t, h.client.diagnostics[a], 1)
	})

	t.Run("opened as aidl with another extension", func(t *testing.T) {
		c := uriOf(root, "c.idl")
		require.NoError(t, h.notify(lsp.MethodDidOpen, lsp.DidOpenTextDocumentParams{
			TextDocument: lsp.TextDocumentItem{URI: c, LanguageID: "aidl", Text: "package com.example;\ninterface Baz {}\n"},
		}))
		assert.Equal(t, c, h.srv.Workspace().Keys()["com.example.Baz"])

		// never written to disk, closing drops it again
		require.NoError(t, h.notify(lsp.MethodDidClose, lsp.DidCloseTextDocumentParams{
			TextDocument: lsp.TextDocumentIdentifier{URI: c},
		}))
		assert.NotContains(t, h.srv.Workspace().Keys(), "com.example.Baz")
		assert.Empty(t, h.client.diagnostics[c])
	})

	t.Run("untitled buffers are dropped on close", func(t *testing.T) {
		untitled := lsp.DocumentURI("untitled:Untitled-1")
		held := h.srv.Workspace().Len()
		require.NoError(t, h.notify(lsp.MethodDidOpen, lsp.DidOpenTextDocumentParams{
			TextDocument: lsp.TextDocumentItem{URI: untitled, LanguageID: "aidl", Text: "package com.example;\ninterface Draft {}\n"},
		}))
		assert.Equal(t, held+1, h.srv.Workspace().Len())
		assert.Equal(t, untitled, h.srv.Workspace().Keys()["com.example.Draft"])

		require.NoError(t, h.srv.DidClose(ctx, lsp.DidCloseTextDocumentParams{
			TextDocument: lsp.TextDocumentIdentifier{URI: untitled},
		}))
		assert.Equal(t, held, h.srv.Workspace().Len())
		assert.NotContains(t, h.srv.Workspace().Keys(), "com.example.Draft")
		assert.Empty(t, h.client.diagnostics[untitled])
	})

	t.Run("other languages are ignored", func(t *testing.T) {
		published := len(h.client.published)
		require.NoError(t, h.notify(lsp.MethodDidOpen, lsp.DidOpenTextDocumentParams{
			TextDocument: lsp.TextDocumentItem{URI: uriOf(root, "Foo.java"), LanguageID: "java", Text: "class Foo {}"},
		}))
		assert.Len(t, h.client.published, published)
		assert.Equal(t, 2, h.srv.Workspace().Len())
	})
}

func TestPublishFailure(t *testing.T) {
	root := workspaceDir(t, map[string]string{"a.aidl": fooSource})
	h := newHarness(t)
	h.start(root)

	h.client.err = errors.New("client gone")
	err := h.srv.DidOpen(context.Background(), lsp.DidOpenTextDocumentParams{
		TextDocument: lsp.TextDocumentItem{URI: uriOf(root, "a.aidl"), Text: fooSource},
	})
	assert.ErrorIs(t, err, h.client.err)
}

func TestQueries(t *testing.T) {
	root := workspaceDir(t, map[string]string{"a.aidl": fooSource, "b.aidl": barSource})
	h := newHarness(t)
	h.start(root)
	a := uriOf(root, "a.aidl")
	at := lsp.TextDocumentPositionParams{
		TextDocument: lsp.TextDocumentIdentifier{URI: a},
		Position:     pos(3, 21),
	}

	result, err := h.call(lsp.MethodWorkspaceSymbol, lsp.WorkspaceSymbolParams{Query: "foo"})
	require.NoError(t, err)
	require.IsType(t, []lsp.SymbolInformation{}, result)
	assert.Equal(t, []string{"Foo"}, names(result.([]lsp.SymbolInformation)))

	result, err = h.call(lsp.MethodDocumentSymbol, lsp.DocumentSymbolParams{
		TextDocument: lsp.TextDocumentIdentifier{URI: a},
	})
	require.NoError(t, err)
	require.IsType(t, []lsp.DocumentSymbol{}, result)
	outline := result.([]lsp.DocumentSymbol)
	require.Len(t, outline, 1)
	assert.Equal(t, "Foo", outline[0].Name)

	result, err = h.call(lsp.MethodDefinition, lsp.DefinitionParams{TextDocumentPositionParams: at})
	require.NoError(t, err)
	require.IsType(t, []lsp.LocationLink{}, result)
	links := result.([]lsp.LocationLink)
	require.Len(t, links, 1)
	assert.Equal(t, uriOf(root, "b.aidl"), links[0].TargetURI)

	_, err = h.call(lsp.MethodDocumentSymbol, lsp.DocumentSymbolParams{
		TextDocument: lsp.TextDocumentIdentifier{URI: uriOf(root, "missing.aidl")},
	})
	assert.ErrorIs(t, err, ErrDocumentNotFound)
}
