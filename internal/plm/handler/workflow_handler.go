package handler

import (
	"github.com/Dokuly-PLM/dokuly-sub000/internal/plm/service"
	"github.com/gin-gonic/gin"
)

// WorkflowHandler 工作流处理器
type WorkflowHandler struct {
	svc *service.WorkflowService
}

// NewWorkflowHandler 创建工作流处理器
func NewWorkflowHandler(svc *service.WorkflowService) *WorkflowHandler {
	return &WorkflowHandler{svc: svc}
}

// Create 创建工作流
func (h *WorkflowHandler) Create(c *gin.Context) {
	var req service.CreateWorkflowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	workflow, err := h.svc.Create(c.Request.Context(), GetOrgID(c), GetUserID(c), req)
	if err != nil {
		HandleError(c, err)
		return
	}
	Created(c, workflow)
}

// Get 获取工作流详情
func (h *WorkflowHandler) Get(c *gin.Context) {
	workflow, err := h.svc.Get(c.Request.Context(), GetOrgID(c), c.Param("id"))
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, workflow)
}

// Update 更新工作流
func (h *WorkflowHandler) Update(c *gin.Context) {
	var req service.UpdateWorkflowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	workflow, err := h.svc.Update(c.Request.Context(), GetOrgID(c), GetUserID(c), c.Param("id"), req)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, workflow)
}

// Delete 删除工作流
func (h *WorkflowHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), GetOrgID(c), GetUserID(c), c.Param("id")); err != nil {
		HandleError(c, err)
		return
	}
	Success(c, nil)
}

// List 获取工作流列表
func (h *WorkflowHandler) List(c *gin.Context) {
	page, pageSize := GetPagination(c)
	result, err := h.svc.List(c.Request.Context(), GetOrgID(c), page, pageSize)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, result)
}

// ListExecutions 获取工作流执行记录
func (h *WorkflowHandler) ListExecutions(c *gin.Context) {
	page, pageSize := GetPagination(c)
	result, err := h.svc.ListExecutions(c.Request.Context(), GetOrgID(c), c.Param("id"), page, pageSize)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, result)
}

// ListAuditLogs 获取组织内工作流审计日志
func (h *WorkflowHandler) ListAuditLogs(c *gin.Context) {
	page, pageSize := GetPagination(c)
	result, err := h.svc.ListAuditLogs(c.Request.Context(), GetOrgID(c), page, pageSize)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, result)
}
