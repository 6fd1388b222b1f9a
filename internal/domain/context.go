package domain

import "context"

type clientIPKey struct{}

// ContextWithClientIP attaches the end user's IP, forwarded upstream on every call.
func ContextWithClientIP(ctx context.Context, ip string) context.Context {
	if ip == "" {
		return ctx
	}
	return context.WithValue(ctx, clientIPKey{}, ip)
}

// ClientIPFrom returns the IP set by ContextWithClientIP, or "".
func ClientIPFrom(ctx context.Context) string {
	ip, _ := ctx.Value(clientIPKey{}).(string)
	return ip
}
