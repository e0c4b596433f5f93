package http

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/studiodesk/studio-backend/internal/logger"
	"github.com/studiodesk/studio-backend/internal/projectstore/files"
	"github.com/studiodesk/studio-backend/internal/workspace/domain"
)

func failure(c *gin.Context, code int, err error) {
	if code >= http.StatusInternalServerError {
		logger.FromContext(c.Request.Context()).Error("project server request failed",
			"path", c.FullPath(), "error", err)
	}
	c.JSON(code, gin.H{"success": false, "message": err.Error()})
}

func (h *Handler) list(c *gin.Context) {
	items, err := h.docs.List(c.Request.Context())
	if err != nil {
		failure(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

func (h *Handler) save(c *gin.Context) {
	var p domain.Project
	if err := c.ShouldBindJSON(&p); err != nil {
		failure(c, http.StatusBadRequest, errors.New("invalid body"))
		return
	}
	if p.ID.IsZero() && strings.TrimSpace(p.Name) == "" {
		failure(c, http.StatusBadRequest, errors.New("Missing data"))
		return
	}
	if p.ID.IsZero() {
		p.ID = domain.NewTimestampID(time.Now())
	}
	for i := range p.Sections {
		if p.Sections[i].ID.IsZero() {
			p.Sections[i].ID = domain.ID(uuid.NewString())
		}
	}

	folder, err := h.docs.Upsert(c.Request.Context(), p)
	if err != nil {
		code := http.StatusInternalServerError
		if errors.Is(err, domain.ErrInvalidInput) {
			code = http.StatusBadRequest
		}
		failure(c, code, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "folderName": folder, "id": p.ID})
}

func (h *Handler) delete(c *gin.Context) {
	var req deleteReq
	if err := c.ShouldBindJSON(&req); err != nil {
		failure(c, http.StatusBadRequest, errors.New("invalid body"))
		return
	}

	ctx := c.Request.Context()
	var err error
	switch {
	case !req.ID.IsZero():
		_, err = h.docs.Delete(ctx, req.ID)
	case strings.TrimSpace(req.FolderName) != "":
		_, err = h.docs.DeleteByFolder(ctx, req.FolderName)
	}
	if err != nil {
		failure(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *Handler) upload(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		failure(c, http.StatusBadRequest, errors.New("No file"))
		return
	}
	f, err := fh.Open()
	if err != nil {
		failure(c, http.StatusBadRequest, err)
		return
	}
	defer f.Close()

	key := files.Key(c.PostForm("folderName"), c.PostForm("sectionName"), fh.Filename)
	url, err := h.files.Put(c.Request.Context(), key, f, fh.Size, fh.Header.Get("Content-Type"))
	if err != nil {
		code := http.StatusInternalServerError
		if errors.Is(err, files.ErrNotConfigured) {
			code = http.StatusServiceUnavailable
		}
		failure(c, code, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "url": url, "filename": fh.Filename})
}

// deleteFile is kept for older clients. File references live in the
// project document, which the client saves itself.
func (h *Handler) deleteFile(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *Handler) archive(c *gin.Context) {
	var req archiveReq
	if err := c.ShouldBindJSON(&req); err != nil || req.ProjectID.IsZero() {
		failure(c, http.StatusBadRequest, errors.New("projectId is required"))
		return
	}
	if h.archiver == nil {
		failure(c, http.StatusServiceUnavailable, errors.New("archive not configured"))
		return
	}

	ctx := c.Request.Context()
	p, err := h.docs.Get(ctx, req.ProjectID)
	if errors.Is(err, domain.ErrProjectNotFound) {
		failure(c, http.StatusNotFound, err)
		return
	}
	if err != nil {
		failure(c, http.StatusInternalServerError, err)
		return
	}

	res, err := h.archiver.Archive(ctx, *p)
	if err != nil {
		failure(c, http.StatusInternalServerError, err)
		return
	}
	logger.FromContext(ctx).Info("project archived",
		"operation", "archive_project", "project_id", p.ID, "drive", res.GoogleDrive.Success, "telegram", res.Telegram.Success)
	c.JSON(http.StatusOK, res)
}
