package parser

import "fmt"

type DiagnosticKind int

const (
	Error DiagnosticKind = iota
	Warning
)

func (k DiagnosticKind) String() string {
	if k == Warning {
		return "warning"
	}
	return "error"
}

// Diagnostic is an error or warning attached to a range of a file.
type Diagnostic struct {
	Kind    DiagnosticKind
	Range   Range
	Message string
	// Hint is an optional suggestion shown next to the main message.
	Hint         string
	RelatedInfos []RelatedInfo
}

// RelatedInfo points at another location of the same file, e.g. the
// previous declaration of a duplicated name.
type RelatedInfo struct {
	Range   Range
	Message string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%d:%d: %s: %s", d.Range.Start.Line, d.Range.Start.Column, d.Kind, d.Message)
}

func errorf(r Range, format string, args ...any) Diagnostic {
	return Diagnostic{Kind: Error, Range: r, Message: fmt.Sprintf(format, args...)}
}

func warningf(r Range, format string, args ...any) Diagnostic {
	return Diagnostic{Kind: Warning, Range: r, Message: fmt.Sprintf(format, args...)}
}
