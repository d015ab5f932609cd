package handler

import (
	"errors"
	"strconv"

	"github.com/Dokuly-PLM/dokuly-sub000/internal/plm/entity"
	"github.com/Dokuly-PLM/dokuly-sub000/internal/plm/repository"
	"github.com/Dokuly-PLM/dokuly-sub000/internal/plm/service"
	"github.com/gin-gonic/gin"
)

// Handlers 处理器集合
type Handlers struct {
	Organization *OrganizationHandler
	Project      *ProjectHandler
	Part         *ItemHandler[entity.Part, *entity.Part]
	Pcba         *ItemHandler[entity.Pcba, *entity.Pcba]
	Assembly     *ItemHandler[entity.Assembly, *entity.Assembly]
	Document     *ItemHandler[entity.Document, *entity.Document]
	BOM          *BOMHandler
	Issue        *IssueHandler
	Workflow     *WorkflowHandler
}

// NewHandlers 创建处理器集合
func NewHandlers(svc *service.Services) *Handlers {
	return &Handlers{
		Organization: NewOrganizationHandler(svc.Organization),
		Project:      NewProjectHandler(svc.Project),
		Part:         NewItemHandler(svc.Part),
		Pcba:         NewItemHandler(svc.Pcba),
		Assembly:     NewItemHandler(svc.Assembly),
		Document:     NewItemHandler(svc.Document),
		BOM:          NewBOMHandler(svc.BOM),
		Issue:        NewIssueHandler(svc.Issue),
		Workflow:     NewWorkflowHandler(svc.Workflow),
	}
}

// Response 通用响应结构
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// Success 成功响应
func Success(c *gin.Context, data interface{}) {
	c.JSON(200, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

// Created 创建成功响应
func Created(c *gin.Context, data interface{}) {
	c.JSON(201, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

// Error 错误响应
func Error(c *gin.Context, code int, message string) {
	statusCode := code / 100
	if statusCode < 100 || statusCode > 599 {
		statusCode = 500
	}
	c.JSON(statusCode, Response{
		Code:    code,
		Message: message,
	})
}

// BadRequest 参数错误响应
func BadRequest(c *gin.Context, message string) {
	Error(c, 40000, message)
}

// Forbidden 禁止访问响应
func Forbidden(c *gin.Context, message string) {
	Error(c, 40300, message)
}

// NotFound 资源不存在响应
func NotFound(c *gin.Context, message string) {
	Error(c, 40400, message)
}

// Conflict 冲突响应
func Conflict(c *gin.Context, message string) {
	Error(c, 40900, message)
}

// InternalError 服务器错误响应
func InternalError(c *gin.Context, message string) {
	Error(c, 50000, message)
}

// HandleError 按业务错误类型映射响应
func HandleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		NotFound(c, "资源不存在")
	case errors.Is(err, service.ErrRevisionConflict):
		Conflict(c, err.Error())
	case errors.Is(err, service.ErrInvalidInput):
		BadRequest(c, err.Error())
	case errors.Is(err, service.ErrNotMember):
		Forbidden(c, err.Error())
	default:
		InternalError(c, err.Error())
	}
}

// GetUserID 从上下文获取用户ID
func GetUserID(c *gin.Context) string {
	userID, _ := c.Get("user_id")
	if id, ok := userID.(string); ok {
		return id
	}
	return ""
}

// GetOrgID 从上下文获取组织ID
func GetOrgID(c *gin.Context) string {
	orgID, _ := c.Get("org_id")
	if id, ok := orgID.(string); ok {
		return id
	}
	return ""
}

// GetPagination 从请求获取分页参数
func GetPagination(c *gin.Context) (page, pageSize int) {
	page = 1
	pageSize = 20

	if p := c.Query("page"); p != "" {
		if v, err := strconv.Atoi(p); err == nil && v > 0 {
			page = v
		}
	}

	if ps := c.Query("page_size"); ps != "" {
		if v, err := strconv.Atoi(ps); err == nil && v > 0 && v <= 100 {
			pageSize = v
		}
	}

	return page, pageSize
}

// RequireMembership 组织成员校验中间件，非成员请求一律403
func RequireMembership(orgSvc *service.OrganizationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		orgID := GetOrgID(c)
		userID := GetUserID(c)
		if err := orgSvc.CheckMembership(c.Request.Context(), orgID, userID); err != nil {
			if errors.Is(err, service.ErrNotMember) {
				Forbidden(c, err.Error())
			} else {
				InternalError(c, err.Error())
			}
			c.Abort()
			return
		}
		c.Next()
	}
}
