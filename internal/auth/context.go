package auth

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"google.golang.org/grpc/metadata"
)

const HeaderStaffID = "X-Staff-ID"

type staffKey struct{}

// StaffMiddleware copies the acting staff id from the gateway header into
// the request context.
func StaffMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if id := strings.TrimSpace(c.GetHeader(HeaderStaffID)); id != "" {
			c.Request = c.Request.WithContext(WithStaffID(c.Request.Context(), id))
		}
		c.Next()
	}
}

func WithStaffID(ctx context.Context, staffID string) context.Context {
	return context.WithValue(ctx, staffKey{}, staffID)
}

// GetStaffID returns the staff id set by StaffMiddleware, falling back to
// incoming gRPC metadata.
func GetStaffID(ctx context.Context) string {
	if val, ok := ctx.Value(staffKey{}).(string); ok {
		return val
	}

	md, ok := metadata.FromIncomingContext(ctx)
	if ok {
		if val := md.Get(strings.ToLower(HeaderStaffID)); len(val) > 0 {
			return val[0]
		}
	}
	return ""
}
