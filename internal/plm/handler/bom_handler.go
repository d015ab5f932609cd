package handler

import (
	"github.com/Dokuly-PLM/dokuly-sub000/internal/plm/service"
	"github.com/gin-gonic/gin"
)

// BOMHandler 装配体BOM处理器
type BOMHandler struct {
	svc *service.BOMService
}

// NewBOMHandler 创建BOM处理器
func NewBOMHandler(svc *service.BOMService) *BOMHandler {
	return &BOMHandler{svc: svc}
}

// AddItem 向装配体添加BOM行项
func (h *BOMHandler) AddItem(c *gin.Context) {
	var req service.AddBOMItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	item, err := h.svc.AddItem(c.Request.Context(), GetOrgID(c), GetUserID(c), c.Param("id"), req)
	if err != nil {
		HandleError(c, err)
		return
	}
	Created(c, item)
}

// List 获取装配体BOM
func (h *BOMHandler) List(c *gin.Context) {
	lines, err := h.svc.List(c.Request.Context(), GetOrgID(c), c.Param("id"))
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, lines)
}

// UpdateItem 更新BOM行项
func (h *BOMHandler) UpdateItem(c *gin.Context) {
	var req service.UpdateBOMItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	item, err := h.svc.UpdateItem(c.Request.Context(), GetOrgID(c), c.Param("itemId"), req)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, item)
}

// RemoveItem 删除BOM行项
func (h *BOMHandler) RemoveItem(c *gin.Context) {
	if err := h.svc.RemoveItem(c.Request.Context(), GetOrgID(c), c.Param("itemId")); err != nil {
		HandleError(c, err)
		return
	}
	Success(c, nil)
}
