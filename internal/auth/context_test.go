package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"google.golang.org/grpc/metadata"
)

func TestStaffMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	var seen string
	r := gin.New()
	r.Use(StaffMiddleware())
	r.GET("/", func(c *gin.Context) {
		seen = GetStaffID(c.Request.Context())
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderStaffID, " staff-9 ")
	r.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, "staff-9", seen)
}

func TestGetStaffIDFromMetadata(t *testing.T) {
	ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs("x-staff-id", "staff-3"))
	assert.Equal(t, "staff-3", GetStaffID(ctx))
	assert.Equal(t, "", GetStaffID(context.Background()))
}
