package service

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/Dokuly-PLM/dokuly-sub000/internal/plm/entity"
	"github.com/Dokuly-PLM/dokuly-sub000/internal/plm/repository"
	"github.com/Dokuly-PLM/dokuly-sub000/internal/shared/notify"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// placeholderRe 匹配动作配置中的 {{entity.xxx}} / {{user.xxx}} 占位符
var placeholderRe = regexp.MustCompile(`\{\{\s*(entity|user)\.([A-Za-z0-9_]+)\s*\}\}`)

// AutomationEvent 触发事件
type AutomationEvent struct {
	TriggerType    string
	EntityType     string
	EntityID       string
	OrganizationID string
	ProjectID      *string
	UserID         string
	Entity         map[string]interface{}
}

// ActionContext 动作执行上下文
type ActionContext struct {
	Event     AutomationEvent
	Workflow  *entity.Workflow
	Action    *entity.WorkflowAction
	Execution *entity.WorkflowExecution
	Vars      map[string]map[string]interface{}
}

// ActionFunc 动作执行函数
type ActionFunc func(ctx context.Context, ac *ActionContext) error

// AutomationService 工作流触发与执行服务
type AutomationService struct {
	workflowRepo *repository.WorkflowRepository
	issueSvc     *IssueService
	userRepo     *repository.UserRepository
	notifier     *notify.Client
	logger       *zap.Logger
	actions      map[string]ActionFunc
}

// NewAutomationService 创建工作流执行服务
func NewAutomationService(workflowRepo *repository.WorkflowRepository, issueSvc *IssueService, userRepo *repository.UserRepository, notifier *notify.Client, logger *zap.Logger) *AutomationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &AutomationService{
		workflowRepo: workflowRepo,
		issueSvc:     issueSvc,
		userRepo:     userRepo,
		notifier:     notifier,
		logger:       logger,
		actions:      make(map[string]ActionFunc),
	}
	s.RegisterAction(entity.ActionTypeCreateIssue, s.createIssueAction)
	return s
}

// RegisterAction 注册动作类型，启动期调用
func (s *AutomationService) RegisterAction(actionType string, fn ActionFunc) {
	s.actions[actionType] = fn
}

// Dispatch 解析并执行命中事件的全部工作流
// 执行失败只落库和记日志，绝不影响触发它的业务写入；
// 返回执行记录供调用方观察
func (s *AutomationService) Dispatch(ctx context.Context, event AutomationEvent) []*entity.WorkflowExecution {
	workflows, err := s.workflowRepo.Match(ctx, event.TriggerType, event.EntityType, event.OrganizationID, event.ProjectID)
	if err != nil {
		s.logger.Error("match workflows",
			zap.String("trigger_type", event.TriggerType),
			zap.String("entity_id", event.EntityID),
			zap.Error(err))
		return nil
	}
	if len(workflows) == 0 {
		return nil
	}

	vars := map[string]map[string]interface{}{
		"entity": event.Entity,
		"user":   s.userVars(ctx, event.UserID),
	}

	executions := make([]*entity.WorkflowExecution, 0, len(workflows))
	for i := range workflows {
		if exec := s.execute(ctx, &workflows[i], event, vars); exec != nil {
			executions = append(executions, exec)
		}
	}
	return executions
}

// execute 执行单个工作流
// 执行记录在跑动作之前先落库，动作全挂也不丢执行痕迹
func (s *AutomationService) execute(ctx context.Context, workflow *entity.Workflow, event AutomationEvent, vars map[string]map[string]interface{}) *entity.WorkflowExecution {
	execution := &entity.WorkflowExecution{
		ID:           uuid.New().String()[:32],
		WorkflowID:   workflow.ID,
		WorkflowName: workflow.Name,
		TriggerType:  event.TriggerType,
		EntityType:   event.EntityType,
		EntityID:     event.EntityID,
		Status:       entity.ExecutionStatusSuccess,
		ActionsRun:   entity.JSONBArray{},
		Errors:       entity.JSONBArray{},
		TriggeredBy:  event.UserID,
	}
	if err := s.workflowRepo.CreateExecution(ctx, execution); err != nil {
		s.logger.Error("create execution",
			zap.String("workflow_id", workflow.ID),
			zap.Error(err))
		return nil
	}

	succeeded, failed := 0, 0
	for i := range workflow.Actions {
		action := &workflow.Actions[i]
		if !action.IsEnabled {
			continue
		}

		err := s.runAction(ctx, &ActionContext{
			Event:     event,
			Workflow:  workflow,
			Action:    action,
			Execution: execution,
			Vars:      vars,
		})

		record := map[string]interface{}{
			"action_id":   action.ID,
			"action_type": action.ActionType,
			"status":      "success",
		}
		if err != nil {
			failed++
			record["status"] = "failed"
			record["error"] = err.Error()
			execution.Errors = append(execution.Errors, fmt.Sprintf("%s: %s", action.ActionType, err.Error()))
			s.logger.Warn("workflow action failed",
				zap.String("workflow_id", workflow.ID),
				zap.String("action_type", action.ActionType),
				zap.Error(err))
		} else {
			succeeded++
		}
		execution.ActionsRun = append(execution.ActionsRun, record)
	}

	switch {
	case failed == 0:
		execution.Status = entity.ExecutionStatusSuccess
	case succeeded == 0:
		execution.Status = entity.ExecutionStatusFailed
	default:
		execution.Status = entity.ExecutionStatusPartial
	}

	if err := s.workflowRepo.UpdateExecution(ctx, execution); err != nil {
		s.logger.Error("update execution",
			zap.String("execution_id", execution.ID),
			zap.Error(err))
	}

	if s.notifier != nil && execution.Status != entity.ExecutionStatusSuccess {
		go func(exec entity.WorkflowExecution) {
			nctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			err := s.notifier.Send(nctx, notify.Message{
				Title: "工作流执行异常",
				Text:  fmt.Sprintf("工作流 %s 执行状态 %s，触发条目 %s", exec.WorkflowName, exec.Status, exec.EntityID),
			})
			if err != nil {
				s.logger.Warn("send notification", zap.Error(err))
			}
		}(*execution)
	}
	return execution
}

// runAction 执行单个动作，panic一并捕获为失败
func (s *AutomationService) runAction(ctx context.Context, ac *ActionContext) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("action panic: %v", r)
		}
	}()

	fn, ok := s.actions[ac.Action.ActionType]
	if !ok {
		return fmt.Errorf("未知动作类型: %s", ac.Action.ActionType)
	}
	return fn(ctx, ac)
}

// createIssueAction 内置 create_issue 动作
// config.title / config.template_text 支持 {{entity.*}} / {{user.*}} 占位符；
// 走问题单服务的统一创建路径，创建通知随路径一并外发
func (s *AutomationService) createIssueAction(ctx context.Context, ac *ActionContext) error {
	title := configString(ac.Action.Config, "title")
	if title == "" {
		title = ac.Workflow.Name
	}
	description := configString(ac.Action.Config, "template_text")

	issue := &entity.Issue{
		OrganizationID: ac.Event.OrganizationID,
		ProjectID:      ac.Event.ProjectID,
		EntityType:     ac.Event.EntityType,
		EntityID:       ac.Event.EntityID,
		Title:          RenderPlaceholders(title, ac.Vars),
		Description:    RenderPlaceholders(description, ac.Vars),
		CreatedBy:      ac.Event.UserID,
		WorkflowID:     &ac.Workflow.ID,
		ExecutionID:    &ac.Execution.ID,
	}
	if _, err := s.issueSvc.CreateFromWorkflow(ctx, issue); err != nil {
		return err
	}
	return nil
}

// userVars 展开触发用户字段，查不到时只保留ID
func (s *AutomationService) userVars(ctx context.Context, userID string) map[string]interface{} {
	vars := map[string]interface{}{"id": userID}
	if userID == "" {
		return vars
	}
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return vars
	}
	vars["username"] = user.Username
	vars["name"] = user.Name
	vars["email"] = user.Email
	return vars
}

// RenderPlaceholders 替换文本中的 {{entity.xxx}} / {{user.xxx}} 占位符
// 未知路径原样保留
func RenderPlaceholders(text string, vars map[string]map[string]interface{}) string {
	return placeholderRe.ReplaceAllStringFunc(text, func(match string) string {
		groups := placeholderRe.FindStringSubmatch(match)
		scope, ok := vars[groups[1]]
		if !ok {
			return match
		}
		value, ok := scope[groups[2]]
		if !ok || value == nil {
			return match
		}
		return fmt.Sprintf("%v", value)
	})
}

func configString(config entity.JSONB, key string) string {
	if config == nil {
		return ""
	}
	if value, ok := config[key].(string); ok {
		return value
	}
	return ""
}
