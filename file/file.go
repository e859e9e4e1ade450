package file

import (
	"context"
	"fmt"
	"os"

	"github.com/corymhall/aidllsp/lsp"
)

type Handle interface {
	URI() lsp.DocumentURI
	Version() int32
	Content() ([]byte, error)
}

type Source interface {
	ReadFile(ctx context.Context, uri lsp.DocumentURI) (Handle, error)
}

// Modification represents a modification to a file.
type Modification struct {
	URI    lsp.DocumentURI
	Action Action

	// Version will be -1 and Text will be nil when they are not supplied,
	// specifically on textDocument/didClose and on didSave without text.
	Version int32
	Text    []byte

	// LanguageID is only sent from the language client on textDocument/didOpen.
	LanguageID lsp.LanguageKind
}

// FromDisk reports whether the new content must be read from disk.
func (m Modification) FromDisk() bool {
	return m.Text == nil
}

// An Action is a type of file state change.
type Action int

const (
	UnknownAction = Action(iota)
	Open
	Change
	Close
	Save
)

func (a Action) String() string {
	switch a {
	case Open:
		return "Open"
	case Change:
		return "Change"
	case Close:
		return "Close"
	case Save:
		return "Save"
	default:
		return "Unknown"
	}
}

// A diskFile is a file in the filesystem, or a failure to read one.
type diskFile struct {
	uri     lsp.DocumentURI
	content []byte
	err     error
}

func (h *diskFile) URI() lsp.DocumentURI     { return h.uri }
func (h *diskFile) Version() int32           { return -1 }
func (h *diskFile) Content() ([]byte, error) { return h.content, h.err }

// Disk is the Source reading files from the local file system.
type Disk struct{}

// ReadFile reads the file named by uri. Failing to read it is reported by
// the Content method of the returned handle; ReadFile itself only fails
// for URIs that do not name a local file or when ctx is done.
func (Disk) ReadFile(ctx context.Context, uri lsp.DocumentURI) (Handle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path := uri.Path()
	if path == "" {
		return nil, fmt.Errorf("not a file URI: %s", uri)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		content = nil // just in case
	}
	return &diskFile{uri: uri, content: content, err: err}, nil
}
