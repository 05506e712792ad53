package ginserver

import (
	_ "embed"
	"net/http"
	"strings"

	gin "github.com/gin-gonic/gin"
)

// The API document is maintained by hand under swagger/ and embedded so the
// binary serves its own docs.

//go:embed swagger/openapi.json
var openAPIDocument []byte

//go:embed swagger/index.html
var swaggerPage string

func registerSwaggerRoutes(router gin.IRoutes) {
	router.GET("/swagger/doc.json", func(c *gin.Context) {
		c.Data(http.StatusOK, "application/json", openAPIDocument)
	})
	router.GET("/swagger", func(c *gin.Context) {
		page := strings.ReplaceAll(swaggerPage, "{{SPEC_URL}}", "/swagger/doc.json")
		c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(page))
	})
}
