package handler

import (
	"github.com/Dokuly-PLM/dokuly-sub000/internal/plm/service"
	"github.com/gin-gonic/gin"
)

// OrganizationHandler 组织处理器
type OrganizationHandler struct {
	svc *service.OrganizationService
}

// NewOrganizationHandler 创建组织处理器
func NewOrganizationHandler(svc *service.OrganizationService) *OrganizationHandler {
	return &OrganizationHandler{svc: svc}
}

// Create 创建组织
func (h *OrganizationHandler) Create(c *gin.Context) {
	var req service.CreateOrganizationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	org, err := h.svc.Create(c.Request.Context(), GetUserID(c), req)
	if err != nil {
		HandleError(c, err)
		return
	}
	Created(c, org)
}

// Get 获取当前组织详情
func (h *OrganizationHandler) Get(c *gin.Context) {
	org, err := h.svc.Get(c.Request.Context(), GetOrgID(c))
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, org)
}

// UpdateNumbering 更新组织编号配置
func (h *OrganizationHandler) UpdateNumbering(c *gin.Context) {
	var req service.UpdateNumberingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	org, err := h.svc.UpdateNumbering(c.Request.Context(), GetOrgID(c), req)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, org)
}

// AddMemberRequest 添加成员请求
type AddMemberRequest struct {
	UserID string `json:"user_id" binding:"required"`
	Role   string `json:"role"`
}

// AddMember 添加组织成员
func (h *OrganizationHandler) AddMember(c *gin.Context) {
	var req AddMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	member, err := h.svc.AddMember(c.Request.Context(), GetOrgID(c), req.UserID, req.Role)
	if err != nil {
		HandleError(c, err)
		return
	}
	Created(c, member)
}

// ListMembers 列出组织成员
func (h *OrganizationHandler) ListMembers(c *gin.Context) {
	members, err := h.svc.ListMembers(c.Request.Context(), GetOrgID(c))
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, members)
}
