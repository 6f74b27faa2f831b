package server

import (
	"embed"
	"net/http"

	"github.com/gin-gonic/gin"
)

//go:embed ui/index.html
var uiFS embed.FS

func (s *Server) registerUIRoutes() {
	s.engine.GET("/", serveIndex)
}

func serveIndex(c *gin.Context) {
	page, err := uiFS.ReadFile("ui/index.html")
	if err != nil {
		c.Status(http.StatusInternalServerError)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", page)
}
