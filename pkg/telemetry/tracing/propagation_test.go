package tracing

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const remoteParent = "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01"

func TestHTTPMiddlewareContinuesRemoteTrace(t *testing.T) {
	tr, exp := newTestTracer(t, nil)

	var handlerTraceID string
	h := HTTPMiddleware(tr)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handlerTraceID = TraceID(r.Context())
		w.WriteHeader(http.StatusServiceUnavailable)
	}))

	req := httptest.NewRequest(http.MethodGet, "/readyz", nil)
	req.Header.Set("traceparent", remoteParent)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	const wantTrace = "4bf92f3577b34da6a3ce929d0e0e4736"
	if handlerTraceID != wantTrace {
		t.Errorf("handler trace ID = %q, want %q", handlerTraceID, wantTrace)
	}
	if got := rec.Header().Get("X-Trace-ID"); got != wantTrace {
		t.Errorf("X-Trace-ID = %q, want %q", got, wantTrace)
	}

	spans := exp.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("got %d spans, want 1", len(spans))
	}
	span := spans[0]
	if span.Name != "GET /readyz" {
		t.Errorf("span name = %q", span.Name)
	}
	if span.SpanKind != trace.SpanKindServer {
		t.Errorf("span kind = %v, want server", span.SpanKind)
	}
	if span.Parent.SpanID().String() != "00f067aa0ba902b7" {
		t.Errorf("parent span = %s", span.Parent.SpanID())
	}
	if span.Status.Code != codes.Error {
		t.Errorf("status = %v, want Error for 503", span.Status.Code)
	}
}

func TestHTTPMiddlewareDisabled(t *testing.T) {
	h := HTTPMiddleware(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Code != http.StatusNoContent {
		t.Errorf("status = %d", rec.Code)
	}
	if got := rec.Header().Get("X-Trace-ID"); got != "" {
		t.Errorf("X-Trace-ID = %q, want empty", got)
	}
}

func TestInjectExtractRoundTrip(t *testing.T) {
	tr, _ := newTestTracer(t, nil)
	ctx, span := tr.Start(context.Background(), "client")
	defer span.End()

	h := http.Header{}
	Inject(ctx, h)
	if h.Get("traceparent") == "" {
		t.Fatal("traceparent not injected")
	}

	got := trace.SpanContextFromContext(Extract(context.Background(), h))
	if got.TraceID() != span.SpanContext().TraceID() {
		t.Errorf("extracted trace %s, want %s", got.TraceID(), span.SpanContext().TraceID())
	}
	if !got.IsRemote() {
		t.Error("extracted span context is not remote")
	}
}
