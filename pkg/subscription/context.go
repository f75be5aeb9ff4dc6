package subscription

import "context"

type subjectCtxKey struct{}

// WithSubject stores the authenticated subject ID in the context. The gate
// middleware's default subject function reads it back.
func WithSubject(ctx context.Context, subjectID string) context.Context {
	return context.WithValue(ctx, subjectCtxKey{}, subjectID)
}

// SubjectFromContext returns the subject ID stored by WithSubject, or false
// for anonymous requests.
func SubjectFromContext(ctx context.Context) (string, bool) {
	subjectID, ok := ctx.Value(subjectCtxKey{}).(string)
	return subjectID, ok && subjectID != ""
}
