package handler

import (
	"github.com/Dokuly-PLM/dokuly-sub000/internal/middleware"
	"github.com/Dokuly-PLM/dokuly-sub000/internal/plm/entity"
	"github.com/Dokuly-PLM/dokuly-sub000/internal/plm/service"
	"github.com/gin-gonic/gin"
)

// RegisterRoutes 挂载 /api/v1 业务路由
// 除组织创建外的所有路由都要求JWT认证 + 组织上下文 + 成员校验
func RegisterRoutes(r *gin.Engine, h *Handlers, orgSvc *service.OrganizationService, jwtSecret string) {
	v1 := r.Group("/api/v1")

	authorized := v1.Group("")
	authorized.Use(middleware.JWTAuth(jwtSecret))

	// 组织创建不要求已有组织上下文
	authorized.POST("/organizations", h.Organization.Create)

	org := authorized.Group("")
	org.Use(middleware.OrgContext())
	org.Use(RequireMembership(orgSvc))
	{
		org.GET("/organization", h.Organization.Get)
		org.PUT("/organization/numbering", h.Organization.UpdateNumbering)
		org.GET("/organization/members", h.Organization.ListMembers)
		org.POST("/organization/members", h.Organization.AddMember)

		projects := org.Group("/projects")
		{
			projects.GET("", h.Project.List)
			projects.POST("", h.Project.Create)
			projects.GET("/:id", h.Project.Get)
			projects.PUT("/:id", h.Project.Update)
		}

		registerItemRoutes(org.Group("/parts"), h.Part)
		registerItemRoutes(org.Group("/pcbas"), h.Pcba)
		registerItemRoutes(org.Group("/documents"), h.Document)

		assemblies := org.Group("/assemblies")
		registerItemRoutes(assemblies, h.Assembly)
		{
			assemblies.GET("/:id/bom", h.BOM.List)
			assemblies.POST("/:id/bom", h.BOM.AddItem)
			assemblies.PUT("/:id/bom/:itemId", h.BOM.UpdateItem)
			assemblies.DELETE("/:id/bom/:itemId", h.BOM.RemoveItem)
		}

		issues := org.Group("/issues")
		{
			issues.GET("", h.Issue.List)
			issues.POST("", h.Issue.Create)
			issues.GET("/:id", h.Issue.Get)
			issues.POST("/:id/close", h.Issue.Close)
			issues.POST("/:id/reopen", h.Issue.Reopen)
		}

		workflows := org.Group("/workflows")
		{
			workflows.GET("", h.Workflow.List)
			workflows.POST("", h.Workflow.Create)
			workflows.GET("/audit-logs", h.Workflow.ListAuditLogs)
			workflows.GET("/:id", h.Workflow.Get)
			workflows.PUT("/:id", h.Workflow.Update)
			workflows.DELETE("/:id", h.Workflow.Delete)
			workflows.GET("/:id/executions", h.Workflow.ListExecutions)
		}
	}
}

// registerItemRoutes 注册四类可修订条目的公共路由
func registerItemRoutes[T any, PT interface {
	*T
	entity.Revisioned
}](g *gin.RouterGroup, h *ItemHandler[T, PT]) {
	g.GET("", h.List)
	g.POST("", h.Create)
	g.GET("/:id", h.Get)
	g.PUT("/:id", h.Update)
	g.POST("/:id/revisions", h.NewRevision)
	g.GET("/:id/revisions", h.Revisions)
	g.POST("/:id/archive", h.Archive)
	g.POST("/:id/restore", h.Restore)
}
