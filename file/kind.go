package file

import (
	"fmt"

	"github.com/corymhall/aidllsp/lsp"
)

// Kind describes the kind of the file in question.
type Kind int

const (
	// UnknownKind is a file type we don't know about.
	UnknownKind = Kind(iota)

	// AIDL is an Android Interface Definition Language source file.
	AIDL
)

func (k Kind) String() string {
	switch k {
	case UnknownKind:
		return "unknown"
	case AIDL:
		return "aidl"
	default:
		return fmt.Sprintf("internal error: unknown file kind %d", k)
	}
}

// KindForLang returns the file [Kind] associated with the given LSP
// LanguageKind string from the LanguageID field of [lsp.TextDocumentItem],
// or UnknownKind if the language is not recognized.
func KindForLang(langID lsp.LanguageKind) Kind {
	switch langID {
	case "aidl":
		return AIDL
	default:
		return UnknownKind
	}
}
