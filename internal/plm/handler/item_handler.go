package handler

import (
	"github.com/Dokuly-PLM/dokuly-sub000/internal/plm/entity"
	"github.com/Dokuly-PLM/dokuly-sub000/internal/plm/service"
	"github.com/gin-gonic/gin"
)

// itemPtr 指向可修订条目实体的指针类型约束
type itemPtr[T any] interface {
	*T
	entity.Revisioned
}

// ItemHandler 可修订条目通用处理器
// 零件/PCBA/装配体/文档四组路由挂同一套方法
type ItemHandler[T any, PT itemPtr[T]] struct {
	svc *service.ItemService[T, PT]
}

// NewItemHandler 创建条目处理器
func NewItemHandler[T any, PT itemPtr[T]](svc *service.ItemService[T, PT]) *ItemHandler[T, PT] {
	return &ItemHandler[T, PT]{svc: svc}
}

// Create 创建条目
func (h *ItemHandler[T, PT]) Create(c *gin.Context) {
	var req service.CreateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	item, err := h.svc.Create(c.Request.Context(), GetOrgID(c), GetUserID(c), req)
	if err != nil {
		HandleError(c, err)
		return
	}
	Created(c, item)
}

// Get 获取条目详情
func (h *ItemHandler[T, PT]) Get(c *gin.Context) {
	item, err := h.svc.Get(c.Request.Context(), GetOrgID(c), c.Param("id"))
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, item)
}

// List 获取条目列表
// latest_only=true 时只返回各族未归档的最新修订
func (h *ItemHandler[T, PT]) List(c *gin.Context) {
	page, pageSize := GetPagination(c)
	latestOnly := c.Query("latest_only") == "true"

	result, err := h.svc.List(c.Request.Context(), GetOrgID(c), latestOnly, page, pageSize)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, result)
}

// Update 更新条目
func (h *ItemHandler[T, PT]) Update(c *gin.Context) {
	var req service.UpdateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	item, err := h.svc.Update(c.Request.Context(), GetOrgID(c), c.Param("id"), req)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, item)
}

// NewRevision 在条目族上创建新修订
func (h *ItemHandler[T, PT]) NewRevision(c *gin.Context) {
	var req service.NewRevisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	item, err := h.svc.NewRevision(c.Request.Context(), GetOrgID(c), GetUserID(c), c.Param("id"), req)
	if err != nil {
		HandleError(c, err)
		return
	}
	Created(c, item)
}

// Revisions 获取条目族的全部修订
func (h *ItemHandler[T, PT]) Revisions(c *gin.Context) {
	items, err := h.svc.Revisions(c.Request.Context(), GetOrgID(c), c.Param("id"))
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, items)
}

// Archive 归档修订行
func (h *ItemHandler[T, PT]) Archive(c *gin.Context) {
	if err := h.svc.Archive(c.Request.Context(), GetOrgID(c), c.Param("id")); err != nil {
		HandleError(c, err)
		return
	}
	Success(c, nil)
}

// Restore 恢复已归档的修订行
func (h *ItemHandler[T, PT]) Restore(c *gin.Context) {
	if err := h.svc.Restore(c.Request.Context(), GetOrgID(c), c.Param("id")); err != nil {
		HandleError(c, err)
		return
	}
	Success(c, nil)
}
