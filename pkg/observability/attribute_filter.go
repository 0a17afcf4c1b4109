package observability

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// attrAction is what the span filter does with one attribute.
type attrAction int

const (
	attrDrop attrAction = iota
	attrKeep
	// attrBaseName keeps only the last path element, so spans name the file
	// being refactored without exporting the checkout location.
	attrBaseName
)

// spanAttrKeys lists exact keys. They take precedence over spanAttrNamespaces,
// which is how PHP text under an otherwise allowed namespace gets dropped.
var spanAttrKeys = map[string]attrAction{
	"error":           attrKeep,
	"refactor.file":   attrBaseName,
	"refactor.source": attrDrop,
	"refactor.code":   attrDrop,
	"mcp.arguments":   attrDrop,
	"lsp.params":      attrDrop,
}

var spanAttrNamespaces = []struct {
	prefix string
	action attrAction
}{
	{"phprefactor.", attrKeep},
	{"refactor.", attrKeep},
	{"mcp.", attrKeep},
	{"lsp.", attrKeep},
	{"rpc.", attrKeep},
	{"http.", attrKeep},
	{"error.", attrKeep},
}

// actionFor resolves a key against the policy. Unlisted keys are dropped.
func actionFor(key string) attrAction {
	if action, ok := spanAttrKeys[key]; ok {
		return action
	}

	for _, ns := range spanAttrNamespaces {
		if strings.HasPrefix(key, ns.prefix) {
			return ns.action
		}
	}

	return attrDrop
}

// attributeFilter rewrites span attributes on the way to the exporter: PHP
// source, tool arguments, and unlisted keys never leave the process, and file
// paths are cut to their base name.
type attributeFilter struct {
	delegate sdktrace.SpanProcessor
	logger   *slog.Logger
}

// NewAttributeFilter wraps delegate with the span attribute policy. When
// logger is non-nil each dropped key is logged at warn level, which is how
// dev mode surfaces instrumentation that would be lost.
func NewAttributeFilter(delegate sdktrace.SpanProcessor, logger *slog.Logger) sdktrace.SpanProcessor {
	return &attributeFilter{delegate: delegate, logger: logger}
}

func (f *attributeFilter) OnStart(parent context.Context, s sdktrace.ReadWriteSpan) {
	f.delegate.OnStart(parent, s)
}

// OnEnd hands the delegate a view of s with the policy applied; an ended
// span cannot be mutated in place.
func (f *attributeFilter) OnEnd(s sdktrace.ReadOnlySpan) {
	f.delegate.OnEnd(&filteredSpan{ReadOnlySpan: s, attrs: f.apply(s.Name(), s.Attributes())})
}

func (f *attributeFilter) Shutdown(ctx context.Context) error {
	if err := f.delegate.Shutdown(ctx); err != nil {
		return fmt.Errorf("attribute filter shutdown: %w", err)
	}

	return nil
}

func (f *attributeFilter) ForceFlush(ctx context.Context) error {
	if err := f.delegate.ForceFlush(ctx); err != nil {
		return fmt.Errorf("attribute filter flush: %w", err)
	}

	return nil
}

func (f *attributeFilter) apply(span string, attrs []attribute.KeyValue) []attribute.KeyValue {
	out := make([]attribute.KeyValue, 0, len(attrs))

	for _, kv := range attrs {
		switch actionFor(string(kv.Key)) {
		case attrKeep:
			out = append(out, kv)
		case attrBaseName:
			out = append(out, kv.Key.String(filepath.Base(kv.Value.Emit())))
		case attrDrop:
			if f.logger != nil {
				f.logger.Warn("span attribute dropped", "span", span, "key", string(kv.Key))
			}
		}
	}

	return out
}

// filteredSpan serves the filtered attribute set in place of the original.
type filteredSpan struct {
	sdktrace.ReadOnlySpan

	attrs []attribute.KeyValue
}

func (s *filteredSpan) Attributes() []attribute.KeyValue {
	return s.attrs
}
