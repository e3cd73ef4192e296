package session

import "context"

type viewerContextKey struct{}

// ContextWithViewer attaches the session viewer to the context.
func ContextWithViewer(ctx context.Context, v Viewer) context.Context {
	return context.WithValue(ctx, viewerContextKey{}, &v)
}

// ViewerFromContext extracts the session viewer from the context.
func ViewerFromContext(ctx context.Context) (Viewer, bool) {
	if ctx == nil {
		return Viewer{}, false
	}
	v, ok := ctx.Value(viewerContextKey{}).(*Viewer)
	if !ok || v == nil {
		return Viewer{}, false
	}
	return *v, true
}
