package wideevent

import "context"

type ctxKey struct{}

// nop is returned by FromContext when no logger is bound, so handler code can
// log unconditionally without nil checks.
var nop = &Logger{}

// NewContext binds the request logger to ctx.
func NewContext(ctx context.Context, l *Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// FromContext returns the request logger bound to ctx, or a no-op logger if
// none is bound.
func FromContext(ctx context.Context) *Logger {
	if ctx == nil {
		return nop
	}
	if l, ok := ctx.Value(ctxKey{}).(*Logger); ok && l != nil {
		return l
	}
	return nop
}
