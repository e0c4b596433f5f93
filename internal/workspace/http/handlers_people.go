package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/studiodesk/studio-backend/internal/workspace/service"
)

func (h *Handler) listClients(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true, "clients": h.svc.State().Clients})
}

func (h *Handler) createClient(c *gin.Context) {
	var req service.ClientInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid body")
		return
	}
	cl, err := h.svc.CreateClient(c.Request.Context(), req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true, "client": cl})
}

func (h *Handler) deleteClient(c *gin.Context) {
	if err := h.svc.DeleteClient(c.Request.Context(), id(c, "id")); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *Handler) listEmployees(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true, "employees": h.svc.State().Employees})
}

func (h *Handler) createEmployee(c *gin.Context) {
	var req service.EmployeeInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid body")
		return
	}
	e, err := h.svc.CreateEmployee(c.Request.Context(), req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true, "employee": e})
}

func (h *Handler) deleteEmployee(c *gin.Context) {
	if err := h.svc.DeleteEmployee(c.Request.Context(), id(c, "id")); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *Handler) listTasks(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true, "tasks": h.svc.State().Tasks})
}

func (h *Handler) createTask(c *gin.Context) {
	var req service.TaskInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid body")
		return
	}
	t, err := h.svc.CreateTask(c.Request.Context(), req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true, "task": t})
}

type taskDoneReq struct {
	Done bool `json:"done"`
}

func (h *Handler) setTaskDone(c *gin.Context) {
	var req taskDoneReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid body")
		return
	}
	t, err := h.svc.SetTaskDone(c.Request.Context(), id(c, "id"), req.Done)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "task": t})
}

func (h *Handler) deleteTask(c *gin.Context) {
	if err := h.svc.DeleteTask(c.Request.Context(), id(c, "id")); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *Handler) workload(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true, "workload": h.svc.Workload()})
}

func (h *Handler) bestEngineer(c *gin.Context) {
	var exclude []string
	if raw := strings.TrimSpace(c.Query("exclude")); raw != "" {
		exclude = strings.Split(raw, ",")
	}
	best, err := h.svc.BestEngineer(exclude)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "engineer": best})
}

func (h *Handler) restoreRegistry(c *gin.Context) {
	res, err := h.svc.RestoreRegistry(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "created": res.Created(), "result": res})
}

func (h *Handler) pull(c *gin.Context) {
	res, err := h.svc.LoadFromServer(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "loaded": res.Loaded, "warning": res.Warning})
}

func (h *Handler) push(c *gin.Context) {
	n := h.svc.PushAll(c.Request.Context())
	c.JSON(http.StatusAccepted, gin.H{"ok": true, "queued": n})
}
