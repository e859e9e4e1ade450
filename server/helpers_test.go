package server

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/corymhall/aidllsp/config"
	"github.com/corymhall/aidllsp/file"
	"github.com/corymhall/aidllsp/lsp"
	"github.com/stretchr/testify/require"
)

const fooSource = `package com.example;

interface Foo {
    void process(in Bar bar);
}
`

const barSource = `package com.example;

parcelable Bar {
    int value;
}
`

// fakeClient records the messages sent by the server.
type fakeClient struct {
	diagnostics map[lsp.DocumentURI][]lsp.Diagnostic
	published   []lsp.DocumentURI
	created     []lsp.ProgressToken
	begun       []*lsp.WorkDoneProgressBeginParams
	ended       []*lsp.WorkDoneProgressEndParams
	shown       []*lsp.ShowMessageParams
	logged      []*lsp.LogMessageParams
	err         error
}

func newFakeClient() *fakeClient {
	return &fakeClient{diagnostics: make(map[lsp.DocumentURI][]lsp.Diagnostic)}
}

func (c *fakeClient) PublishDiagnostics(_ context.Context, params *lsp.PublishDiagnosticsParams) error {
	if c.err != nil {
		return c.err
	}
	c.diagnostics[params.URI] = params.Diagnostics
	c.published = append(c.published, params.URI)
	return nil
}

func (c *fakeClient) WorkDoneProgressCreate(_ context.Context, params *lsp.WorkDoneProgressCreateParams) error {
	c.created = append(c.created, params.Token)
	return nil
}

func (c *fakeClient) ProgressBegin(_ context.Context, params *lsp.WorkDoneProgressBeginParams) error {
	c.begun = append(c.begun, params)
	return nil
}

func (c *fakeClient) ProgressEnd(_ context.Context, params *lsp.WorkDoneProgressEndParams) error {
	c.ended = append(c.ended, params)
	return nil
}

func (c *fakeClient) ShowMessage(_ context.Context, params *lsp.ShowMessageParams) error {
	c.shown = append(c.shown, params)
	return nil
}

func (c *fakeClient) LogMessage(_ context.Context, params *lsp.LogMessageParams) error {
	c.logged = append(c.logged, params)
	return nil
}

// workspaceDir writes files below a new temporary directory and returns its
// canonical path.
func workspaceDir(t *testing.T, files map[string]string) string {
	t.Helper()
	dir, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)
	for name, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return dir
}

func uriOf(root, name string) lsp.DocumentURI {
	return lsp.URIFromPath(filepath.Join(root, filepath.FromSlash(name)))
}

// indexedWorkspace returns a workspace indexed from files.
func indexedWorkspace(t *testing.T, files map[string]string) (*Workspace, *fakeClient, string) {
	t.Helper()
	root := workspaceDir(t, files)
	client := newFakeClient()
	w := NewWorkspace(client, file.Disk{}, config.Defaults())
	require.NoError(t, w.Index(context.Background(), root))
	require.Equal(t, StageIndexed, w.Stage())
	return w, client, root
}

func scenario(t *testing.T) (*Workspace, *fakeClient, string) {
	t.Helper()
	return indexedWorkspace(t, map[string]string{
		"a.aidl": fooSource,
		"b.aidl": barSource,
	})
}
