package server

import (
	"context"
	"fmt"
	"strings"

	"github.com/corymhall/aidllsp/lsp"
	"github.com/corymhall/aidllsp/metrics"
	"github.com/corymhall/aidllsp/parser"
)

// diagnosticSource tags every published diagnostic.
const diagnosticSource = "aidl"

// publishDiagnostics sends the diagnostics of every held file, in URI order.
// A send failure means the client is gone and is returned as is.
func (w *Workspace) publishDiagnostics(ctx context.Context) error {
	for _, uri := range w.URIs() {
		if err := w.publish(ctx, uri, w.results[uri].Diagnostics); err != nil {
			return err
		}
	}
	return nil
}

func (w *Workspace) publish(ctx context.Context, uri lsp.DocumentURI, diags []parser.Diagnostic) error {
	if err := w.publisher.PublishDiagnostics(ctx, &lsp.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: toProtocolDiagnostics(uri, diags),
	}); err != nil {
		return fmt.Errorf("publishing diagnostics for %s: %w", uri, err)
	}
	return nil
}

func toProtocolDiagnostics(uri lsp.DocumentURI, diags []parser.Diagnostic) []lsp.Diagnostic {
	reports := []lsp.Diagnostic{}
	errs, warnings := 0, 0
	for _, diag := range diags {
		pdiag := lsp.Diagnostic{
			Message:            strings.TrimSpace(diag.Message),
			Range:              toProtocolRange(diag.Range),
			Severity:           toProtocolSeverity(diag.Kind),
			Source:             diagnosticSource,
			RelatedInformation: relatedInformation(uri, diag),
		}
		if pdiag.Severity == lsp.SeverityError {
			errs++
		} else {
			warnings++
		}
		reports = append(reports, pdiag)
	}
	metrics.AddDiagnostics("error", errs)
	metrics.AddDiagnostics("warning", warnings)
	return reports
}

func toProtocolSeverity(kind parser.DiagnosticKind) lsp.DiagnosticSeverity {
	if kind == parser.Warning {
		return lsp.SeverityWarning
	}
	return lsp.SeverityError
}

// relatedInformation lists the hint, located at the diagnostic itself, then
// the related infos of the diagnostic.
func relatedInformation(uri lsp.DocumentURI, diag parser.Diagnostic) []lsp.DiagnosticRelatedInformation {
	var infos []lsp.DiagnosticRelatedInformation
	if diag.Hint != "" {
		infos = append(infos, lsp.DiagnosticRelatedInformation{
			Location: lsp.Location{URI: uri, Range: toProtocolRange(diag.Range)},
			Message:  diag.Hint,
		})
	}
	for _, ri := range diag.RelatedInfos {
		infos = append(infos, lsp.DiagnosticRelatedInformation{
			Location: lsp.Location{URI: uri, Range: toProtocolRange(ri.Range)},
			Message:  ri.Message,
		})
	}
	return infos
}
