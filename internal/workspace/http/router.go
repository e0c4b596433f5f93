package http

import "github.com/gin-gonic/gin"

// Register attaches workspace routes to the given router group.
func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.GET("/state", h.state)
	rg.GET("/progress", h.progress)
	rg.GET("/reminders", h.reminders)

	projects := rg.Group("/projects")
	projects.GET("", h.listProjects)
	projects.POST("", h.createProject)
	projects.GET("/:id", h.getProject)
	projects.PATCH("/:id", h.updateProject)
	projects.DELETE("/:id", h.deleteProject)
	projects.POST("/:id/status", h.changeStatus)
	projects.POST("/:id/comments", h.addComment)
	projects.POST("/:id/photos", h.addPhoto)
	projects.DELETE("/:id/photos/:fid", h.deletePhoto)
	projects.POST("/:id/auto-assign", h.autoAssignProject)
	projects.GET("/:id/finances", h.projectFinances)
	projects.PUT("/:id/contracts", h.setContract)
	projects.GET("/:id/contracts/:engineer", h.contractBalance)
	projects.POST("/:id/payments", h.addPayment)

	projects.POST("/:id/sections", h.addSection)
	projects.PUT("/:id/sections/order", h.reorderSections)
	projects.PUT("/:id/sections/:sid", h.updateSection)
	projects.DELETE("/:id/sections/:sid", h.deleteSection)
	projects.POST("/:id/sections/:sid/status", h.changeSectionStatus)
	projects.POST("/:id/sections/:sid/auto-assign", h.autoAssignSection)
	projects.POST("/:id/sections/:sid/files", h.addSectionFile)
	projects.DELETE("/:id/sections/:sid/files/:fid", h.deleteSectionFile)

	rg.GET("/transactions", h.listTransactions)
	rg.POST("/transactions", h.addTransaction)
	rg.DELETE("/transactions/:id", h.deleteTransaction)

	finance := rg.Group("/finance")
	finance.GET("/totals", h.totals)
	finance.GET("/periods", h.periods)
	finance.GET("/clients", h.clientStats)
	finance.POST("/migrate-advances", h.migrateAdvances)

	rg.GET("/clients", h.listClients)
	rg.POST("/clients", h.createClient)
	rg.DELETE("/clients/:id", h.deleteClient)
	rg.GET("/employees", h.listEmployees)
	rg.POST("/employees", h.createEmployee)
	rg.DELETE("/employees/:id", h.deleteEmployee)
	rg.GET("/tasks", h.listTasks)
	rg.POST("/tasks", h.createTask)
	rg.PATCH("/tasks/:id", h.setTaskDone)
	rg.DELETE("/tasks/:id", h.deleteTask)

	rg.GET("/workload", h.workload)
	rg.GET("/workload/best", h.bestEngineer)
	rg.POST("/registry/restore", h.restoreRegistry)

	rg.POST("/sync/pull", h.pull)
	rg.POST("/sync/push", h.push)
}
