package handler

import (
	"github.com/Dokuly-PLM/dokuly-sub000/internal/plm/service"
	"github.com/gin-gonic/gin"
)

// IssueHandler 问题单处理器
type IssueHandler struct {
	svc *service.IssueService
}

// NewIssueHandler 创建问题单处理器
func NewIssueHandler(svc *service.IssueService) *IssueHandler {
	return &IssueHandler{svc: svc}
}

// Create 创建问题单
func (h *IssueHandler) Create(c *gin.Context) {
	var req service.CreateIssueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	issue, err := h.svc.Create(c.Request.Context(), GetOrgID(c), GetUserID(c), req)
	if err != nil {
		HandleError(c, err)
		return
	}
	Created(c, issue)
}

// Get 获取问题单详情
func (h *IssueHandler) Get(c *gin.Context) {
	issue, err := h.svc.Get(c.Request.Context(), GetOrgID(c), c.Param("id"))
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, issue)
}

// List 获取问题单列表
func (h *IssueHandler) List(c *gin.Context) {
	page, pageSize := GetPagination(c)
	result, err := h.svc.List(c.Request.Context(), GetOrgID(c), c.Query("status"), page, pageSize)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, result)
}

// Close 关闭问题单
func (h *IssueHandler) Close(c *gin.Context) {
	issue, err := h.svc.Close(c.Request.Context(), GetOrgID(c), GetUserID(c), c.Param("id"))
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, issue)
}

// Reopen 重开问题单
func (h *IssueHandler) Reopen(c *gin.Context) {
	issue, err := h.svc.Reopen(c.Request.Context(), GetOrgID(c), c.Param("id"))
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, issue)
}
