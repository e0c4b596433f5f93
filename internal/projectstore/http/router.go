package http

import "github.com/gin-gonic/gin"

// Register attaches the project server routes to the given router group.
func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.GET("/projects", h.list)
	rg.POST("/save-project", h.save)
	rg.POST("/delete-project", h.delete)
	rg.POST("/upload", h.upload)
	rg.POST("/delete-file", h.deleteFile)
	rg.POST("/archive-project", h.archive)
}
