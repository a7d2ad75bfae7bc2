package wideevent

// RequestMeta is the request metadata a boundary binds to a Logger. Enrichers
// receive it alongside the in-progress event.
type RequestMeta struct {
	Method     string
	Path       string
	RequestID  string
	RemoteAddr string
	UserAgent  string
}

// Enricher augments an in-progress event before the sampling decision.
// Enrichers run in registration order and mutate the event in place; later
// enrichers observe fields set by earlier ones. A panicking enricher is
// isolated: it neither aborts the remaining enrichers nor finalization.
type Enricher interface {
	Enrich(ev Fields, meta RequestMeta)
}

// EnricherFunc adapts a function to the Enricher interface.
type EnricherFunc func(ev Fields, meta RequestMeta)

func (f EnricherFunc) Enrich(ev Fields, meta RequestMeta) { f(ev, meta) }
