package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/studiodesk/studio-backend/internal/workspace/domain"
	"github.com/studiodesk/studio-backend/internal/workspace/service"
	"github.com/studiodesk/studio-backend/internal/workspace/workflow"
)

func (h *Handler) state(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true, "state": h.svc.State()})
}

func (h *Handler) progress(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true, "progress": h.svc.Progress()})
}

func (h *Handler) reminders(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true, "reminders": h.svc.Reminders()})
}

func (h *Handler) listProjects(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true, "projects": h.svc.Projects()})
}

func (h *Handler) getProject(c *gin.Context) {
	p, err := h.svc.Project(id(c, "id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "project": p})
}

func (h *Handler) createProject(c *gin.Context) {
	var req service.ProjectInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid body")
		return
	}
	p, err := h.svc.CreateProject(c.Request.Context(), req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true, "project": p})
}

func (h *Handler) updateProject(c *gin.Context) {
	var req service.ProjectPatch
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid body")
		return
	}
	p, err := h.svc.UpdateProject(c.Request.Context(), id(c, "id"), req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "project": p})
}

func (h *Handler) deleteProject(c *gin.Context) {
	if err := h.svc.DeleteProject(c.Request.Context(), id(c, "id")); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

type statusReq struct {
	Target  workflow.Target `json:"target"`
	Status  domain.Status   `json:"status"`
	Comment string          `json:"comment"`
}

func (h *Handler) changeStatus(c *gin.Context) {
	var req statusReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid body")
		return
	}
	h.applyStatus(c, workflow.Request{Target: req.Target, Status: req.Status, Comment: req.Comment})
}

func (h *Handler) changeSectionStatus(c *gin.Context) {
	var req statusReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid body")
		return
	}
	h.applyStatus(c, workflow.Request{
		Target:  workflow.Target{Level: workflow.LevelSection, SectionID: id(c, "sid")},
		Status:  req.Status,
		Comment: req.Comment,
	})
}

func (h *Handler) applyStatus(c *gin.Context, req workflow.Request) {
	res, err := h.svc.ChangeStatus(c.Request.Context(), id(c, "id"), req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "result": res})
}

type commentReq struct {
	Text string `json:"text"`
}

func (h *Handler) addComment(c *gin.Context) {
	var req commentReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid body")
		return
	}
	cm, err := h.svc.AddComment(c.Request.Context(), id(c, "id"), req.Text)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true, "comment": cm})
}

func (h *Handler) addSection(c *gin.Context) {
	var req service.SectionInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid body")
		return
	}
	sec, err := h.svc.AddSection(c.Request.Context(), id(c, "id"), req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true, "section": sec})
}

func (h *Handler) updateSection(c *gin.Context) {
	var req service.SectionInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid body")
		return
	}
	sec, err := h.svc.UpdateSection(c.Request.Context(), id(c, "id"), id(c, "sid"), req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "section": sec})
}

func (h *Handler) deleteSection(c *gin.Context) {
	if err := h.svc.DeleteSection(c.Request.Context(), id(c, "id"), id(c, "sid")); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

type reorderReq struct {
	IDs []domain.ID `json:"ids"`
}

func (h *Handler) reorderSections(c *gin.Context) {
	var req reorderReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid body")
		return
	}
	p, err := h.svc.ReorderSections(c.Request.Context(), id(c, "id"), req.IDs)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "project": p})
}

// isMultipart reports whether the request carries an uploaded file rather
// than a reference to one.
func isMultipart(c *gin.Context) bool {
	return strings.HasPrefix(c.ContentType(), "multipart/")
}

func (h *Handler) addSectionFile(c *gin.Context) {
	ctx := c.Request.Context()
	pid, sid := id(c, "id"), id(c, "sid")

	var (
		ref domain.FileRef
		err error
	)
	if isMultipart(c) {
		fh, ferr := c.FormFile("file")
		if ferr != nil {
			badRequest(c, "file is required")
			return
		}
		f, ferr := fh.Open()
		if ferr != nil {
			badRequest(c, "cannot read file")
			return
		}
		defer f.Close()
		ref, err = h.svc.UploadSectionFile(ctx, pid, sid, fh.Filename, c.PostForm("comment"), f)
	} else {
		var req service.FileInput
		if berr := c.ShouldBindJSON(&req); berr != nil {
			badRequest(c, "invalid body")
			return
		}
		ref, err = h.svc.AttachSectionFile(ctx, pid, sid, req)
	}
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true, "file": ref})
}

func (h *Handler) deleteSectionFile(c *gin.Context) {
	if err := h.svc.DeleteSectionFile(c.Request.Context(), id(c, "id"), id(c, "sid"), id(c, "fid")); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *Handler) addPhoto(c *gin.Context) {
	ctx := c.Request.Context()
	pid := id(c, "id")

	var (
		ref domain.FileRef
		err error
	)
	if isMultipart(c) {
		fh, ferr := c.FormFile("file")
		if ferr != nil {
			badRequest(c, "file is required")
			return
		}
		f, ferr := fh.Open()
		if ferr != nil {
			badRequest(c, "cannot read file")
			return
		}
		defer f.Close()
		ref, err = h.svc.UploadPhoto(ctx, pid, fh.Filename, c.PostForm("comment"), f)
	} else {
		var req service.FileInput
		if berr := c.ShouldBindJSON(&req); berr != nil {
			badRequest(c, "invalid body")
			return
		}
		ref, err = h.svc.AddPhoto(ctx, pid, req)
	}
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true, "photo": ref})
}

func (h *Handler) deletePhoto(c *gin.Context) {
	if err := h.svc.DeletePhoto(c.Request.Context(), id(c, "id"), id(c, "fid")); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *Handler) autoAssignProject(c *gin.Context) {
	out, err := h.svc.AutoAssignProject(c.Request.Context(), id(c, "id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "assignments": out})
}

func (h *Handler) autoAssignSection(c *gin.Context) {
	a, err := h.svc.AutoAssignSection(c.Request.Context(), id(c, "id"), id(c, "sid"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "assignment": a})
}
