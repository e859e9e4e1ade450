package lsp

import (
	"bytes"
	"encoding/json"
	"net/url"
	"path/filepath"
	"strings"
)

// ProgressToken is either a string or an integer.
type ProgressToken any

// DocumentURI identifies a document. Documents indexed by the server always
// use the file scheme with an absolute, cleaned path.
type DocumentURI string

type LanguageKind string

// NoParams is the parameter type of methods that take none. JSON "null"
// and an absent params member both decode into it.
type NoParams struct{}

// UnmarshalJSON unmarshals msg into the variable pointed to by
// params. In JSONRPC, optional messages may be
// "null", in which case it is a no-op.
func UnmarshalJSON(msg json.RawMessage, v any) error {
	if len(msg) == 0 || bytes.Equal(msg, []byte("null")) {
		return nil
	}
	return json.Unmarshal(msg, v)
}

// Path returns the file system path of a file URI, or "" when uri does not
// use the file scheme.
func (uri DocumentURI) Path() string {
	if !strings.HasPrefix(string(uri), "file://") {
		return ""
	}
	u, err := url.Parse(string(uri))
	if err != nil {
		// not escaped properly, take the path verbatim
		return filepath.FromSlash(string(uri)[len("file://"):])
	}
	return filepath.FromSlash(u.Path)
}

// Canonical returns the form of uri used as a key by the workspace index, so
// that differently escaped spellings of the same file compare equal.
func (uri DocumentURI) Canonical() DocumentURI {
	path := uri.Path()
	if path == "" {
		return uri
	}
	return URIFromPath(path)
}

// URIFromPath returns the file URI of path, which is made absolute first.
func URIFromPath(path string) DocumentURI {
	if path == "" {
		return ""
	}
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(filepath.Clean(path))}
	return DocumentURI(u.String())
}
