package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Dokuly-PLM/dokuly-sub000/internal/plm/entity"
	"github.com/Dokuly-PLM/dokuly-sub000/internal/plm/repository"
	"github.com/Dokuly-PLM/dokuly-sub000/internal/plm/testutil"
	"github.com/Dokuly-PLM/dokuly-sub000/internal/shared/notify"
	"github.com/google/uuid"
)

func setupAutomationTest(t *testing.T) (*repository.Repositories, *AutomationService) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	repos := repository.NewRepositories(db)
	issueSvc := NewIssueService(repos.Issue, nil, nil)
	svc := NewAutomationService(repos.Workflow, issueSvc, repos.User, nil, nil)
	return repos, svc
}

func seedWorkflow(t *testing.T, repos *repository.Repositories, wf *entity.Workflow) *entity.Workflow {
	t.Helper()
	if wf.ID == "" {
		wf.ID = uuid.New().String()[:32]
	}
	for i := range wf.Actions {
		wf.Actions[i].ID = uuid.New().String()[:32]
		wf.Actions[i].WorkflowID = wf.ID
	}
	if err := repos.Workflow.Create(context.Background(), wf); err != nil {
		t.Fatalf("seed workflow: %v", err)
	}
	return wf
}

func createIssueAction(title, text string) entity.WorkflowAction {
	return entity.WorkflowAction{
		ActionType: entity.ActionTypeCreateIssue,
		Config:     entity.JSONB{"title": title, "template_text": text},
		IsEnabled:  true,
	}
}

func TestRenderPlaceholders(t *testing.T) {
	vars := map[string]map[string]interface{}{
		"entity": {"full_number": "PRT7B-0", "number": 7},
		"user":   {"name": "Alice"},
	}

	got := RenderPlaceholders("Review {{entity.full_number}} by {{ user.name }}", vars)
	if got != "Review PRT7B-0 by Alice" {
		t.Errorf("RenderPlaceholders = %q", got)
	}

	// 未知路径原样保留
	got = RenderPlaceholders("{{entity.missing}} / {{other.name}}", vars)
	if got != "{{entity.missing}} / {{other.name}}" {
		t.Errorf("Unknown placeholder must stay literal, got %q", got)
	}
}

func TestDispatchScopeResolution(t *testing.T) {
	repos, svc := setupAutomationTest(t)
	ctx := context.Background()

	orgA, orgB := "org-a", "org-b"
	projectP := "proj-p"

	orgWide := seedWorkflow(t, repos, &entity.Workflow{
		Name: "org wide", TriggerType: entity.TriggerPartCreated,
		TriggerEntityType: entity.EntityTypeAll, Scope: entity.ScopeOrganization,
		OrganizationID: &orgA, IsEnabled: true, CreatedBy: "u",
		Actions: []entity.WorkflowAction{createIssueAction("org issue", "")},
	})
	projOnly := seedWorkflow(t, repos, &entity.Workflow{
		Name: "project only", TriggerType: entity.TriggerPartCreated,
		TriggerEntityType: entity.EntityTypeParts, Scope: entity.ScopeProject,
		OrganizationID: &orgA, ProjectID: &projectP, IsEnabled: true, CreatedBy: "u",
		Actions: []entity.WorkflowAction{createIssueAction("proj issue", "")},
	})
	// 作用域字段缺失：项目级但未绑定项目，永不命中
	seedWorkflow(t, repos, &entity.Workflow{
		Name: "dangling scope", TriggerType: entity.TriggerPartCreated,
		TriggerEntityType: entity.EntityTypeAll, Scope: entity.ScopeProject,
		OrganizationID: &orgA, IsEnabled: true, CreatedBy: "u",
	})
	// 他组织的工作流不命中
	seedWorkflow(t, repos, &entity.Workflow{
		Name: "other org", TriggerType: entity.TriggerPartCreated,
		TriggerEntityType: entity.EntityTypeAll, Scope: entity.ScopeOrganization,
		OrganizationID: &orgB, IsEnabled: true, CreatedBy: "u",
	})
	// 停用的工作流不命中
	seedWorkflow(t, repos, &entity.Workflow{
		Name: "disabled", TriggerType: entity.TriggerPartCreated,
		TriggerEntityType: entity.EntityTypeAll, Scope: entity.ScopeOrganization,
		OrganizationID: &orgA, IsEnabled: false, CreatedBy: "u",
	})
	// 条目类型过滤不命中
	seedWorkflow(t, repos, &entity.Workflow{
		Name: "docs only", TriggerType: entity.TriggerPartCreated,
		TriggerEntityType: entity.EntityTypeDocuments, Scope: entity.ScopeOrganization,
		OrganizationID: &orgA, IsEnabled: true, CreatedBy: "u",
	})

	// 项目P内的事件：组织级 + P项目级
	execs := svc.Dispatch(ctx, AutomationEvent{
		TriggerType: entity.TriggerPartCreated, EntityType: entity.EntityTypeParts,
		EntityID: "part-1", OrganizationID: orgA, ProjectID: &projectP, UserID: "u",
		Entity: map[string]interface{}{"full_number": "PRT1A-0"},
	})
	if len(execs) != 2 {
		t.Fatalf("Project event executions = %d, want 2", len(execs))
	}
	hit := map[string]bool{}
	for _, exec := range execs {
		hit[exec.WorkflowID] = true
	}
	if !hit[orgWide.ID] || !hit[projOnly.ID] {
		t.Errorf("Expected org-wide and project workflows to fire, got %v", hit)
	}

	// 无项目的事件：只有组织级
	execs = svc.Dispatch(ctx, AutomationEvent{
		TriggerType: entity.TriggerPartCreated, EntityType: entity.EntityTypeParts,
		EntityID: "part-2", OrganizationID: orgA, UserID: "u",
		Entity: map[string]interface{}{},
	})
	if len(execs) != 1 || execs[0].WorkflowID != orgWide.ID {
		t.Fatalf("No-project event must fire only the org-wide workflow, got %d", len(execs))
	}
}

func TestExecuteStatusAndIssueCreation(t *testing.T) {
	repos, svc := setupAutomationTest(t)
	ctx := context.Background()

	orgA := "org-a"
	user := &entity.User{ID: "user-1", Username: "alice", Name: "Alice", Email: "a@test.com", Status: entity.UserStatusActive}
	if err := repos.User.Create(ctx, user); err != nil {
		t.Fatalf("seed user: %v", err)
	}

	wf := seedWorkflow(t, repos, &entity.Workflow{
		Name: "mixed actions", TriggerType: entity.TriggerPartCreated,
		TriggerEntityType: entity.EntityTypeAll, Scope: entity.ScopeOrganization,
		OrganizationID: &orgA, IsEnabled: true, CreatedBy: "user-1",
		Actions: []entity.WorkflowAction{
			createIssueAction("Review {{entity.full_number}}", "Created by {{user.name}}"),
			{ActionType: "nonexistent_action", IsEnabled: true, SortOrder: 1},
		},
	})

	execs := svc.Dispatch(ctx, AutomationEvent{
		TriggerType: entity.TriggerPartCreated, EntityType: entity.EntityTypeParts,
		EntityID: "part-9", OrganizationID: orgA, UserID: "user-1",
		Entity: map[string]interface{}{"full_number": "PRT9A-0"},
	})
	if len(execs) != 1 {
		t.Fatalf("executions = %d, want 1", len(execs))
	}

	exec := execs[0]
	if exec.Status != entity.ExecutionStatusPartial {
		t.Errorf("Status = %q, want partial", exec.Status)
	}
	if len(exec.ActionsRun) != 2 {
		t.Errorf("ActionsRun = %d entries, want 2", len(exec.ActionsRun))
	}
	if len(exec.Errors) != 1 {
		t.Errorf("Errors = %d entries, want 1", len(exec.Errors))
	}

	// 执行记录已落库
	stored, err := repos.Workflow.FindExecutionByID(ctx, exec.ID)
	if err != nil {
		t.Fatalf("FindExecutionByID: %v", err)
	}
	if stored.Status != entity.ExecutionStatusPartial || stored.WorkflowName != wf.Name {
		t.Errorf("Stored execution = %+v", stored)
	}

	// create_issue 动作产出的问题单带回溯引用和渲染后的文本
	issues, err := repos.Issue.ListByEntity(ctx, entity.EntityTypeParts, "part-9")
	if err != nil {
		t.Fatalf("ListByEntity: %v", err)
	}
	if len(issues) != 1 {
		t.Fatalf("issues = %d, want 1", len(issues))
	}
	issue := issues[0]
	if issue.Title != "Review PRT9A-0" {
		t.Errorf("Issue title = %q", issue.Title)
	}
	if issue.Description != "Created by Alice" {
		t.Errorf("Issue description = %q", issue.Description)
	}
	if issue.WorkflowID == nil || *issue.WorkflowID != wf.ID {
		t.Error("Issue must reference its workflow")
	}
	if issue.ExecutionID == nil || *issue.ExecutionID != exec.ID {
		t.Error("Issue must reference its execution")
	}
}

func TestCreateIssueActionNotifiesWebhook(t *testing.T) {
	received := make(chan notify.Message, 2)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var msg notify.Message
		_ = json.NewDecoder(r.Body).Decode(&msg)
		received <- msg
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	db := testutil.SetupTestDB(t)
	repos := repository.NewRepositories(db)
	client := notify.NewClient(srv.URL)
	issueSvc := NewIssueService(repos.Issue, client, nil)
	svc := NewAutomationService(repos.Workflow, issueSvc, repos.User, client, nil)
	ctx := context.Background()

	orgA := "org-a"
	seedWorkflow(t, repos, &entity.Workflow{
		Name: "notify on create", TriggerType: entity.TriggerPartCreated,
		TriggerEntityType: entity.EntityTypeAll, Scope: entity.ScopeOrganization,
		OrganizationID: &orgA, IsEnabled: true, CreatedBy: "u",
		Actions: []entity.WorkflowAction{createIssueAction("Review {{entity.full_number}}", "")},
	})

	execs := svc.Dispatch(ctx, AutomationEvent{
		TriggerType: entity.TriggerPartCreated, EntityType: entity.EntityTypeParts,
		EntityID: "part-1", OrganizationID: orgA, UserID: "u",
		Entity: map[string]interface{}{"full_number": "PRT1A-0"},
	})
	if len(execs) != 1 || execs[0].Status != entity.ExecutionStatusSuccess {
		t.Fatalf("Dispatch executions = %+v", execs)
	}

	// 动作执行成功也要外发创建通知
	select {
	case msg := <-received:
		if !strings.Contains(msg.Text, "Review PRT1A-0") {
			t.Errorf("Notification text = %q", msg.Text)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("No creation notification reached the webhook")
	}

	// 手工创建走同一条路径，同样外发
	if _, err := issueSvc.Create(ctx, orgA, "u", CreateIssueRequest{Title: "Manual check"}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	select {
	case msg := <-received:
		if !strings.Contains(msg.Text, "Manual check") {
			t.Errorf("Notification text = %q", msg.Text)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("No notification for manual issue creation")
	}
}

func TestExecuteAllActionsFailed(t *testing.T) {
	repos, svc := setupAutomationTest(t)
	ctx := context.Background()

	orgA := "org-a"
	seedWorkflow(t, repos, &entity.Workflow{
		Name: "broken", TriggerType: entity.TriggerDocumentCreated,
		TriggerEntityType: entity.EntityTypeAll, Scope: entity.ScopeOrganization,
		OrganizationID: &orgA, IsEnabled: true, CreatedBy: "u",
		Actions: []entity.WorkflowAction{
			{ActionType: "nope", IsEnabled: true},
		},
	})

	execs := svc.Dispatch(ctx, AutomationEvent{
		TriggerType: entity.TriggerDocumentCreated, EntityType: entity.EntityTypeDocuments,
		EntityID: "doc-1", OrganizationID: orgA, UserID: "u",
		Entity: map[string]interface{}{},
	})
	if len(execs) != 1 {
		t.Fatalf("executions = %d, want 1", len(execs))
	}
	if execs[0].Status != entity.ExecutionStatusFailed {
		t.Errorf("Status = %q, want failed", execs[0].Status)
	}
}

func TestExecuteNoActionsIsSuccess(t *testing.T) {
	repos, svc := setupAutomationTest(t)
	ctx := context.Background()

	orgA := "org-a"
	seedWorkflow(t, repos, &entity.Workflow{
		Name: "empty", TriggerType: entity.TriggerRevisionCreated,
		TriggerEntityType: entity.EntityTypeAll, Scope: entity.ScopeOrganization,
		OrganizationID: &orgA, IsEnabled: true, CreatedBy: "u",
	})

	execs := svc.Dispatch(ctx, AutomationEvent{
		TriggerType: entity.TriggerRevisionCreated, EntityType: entity.EntityTypeParts,
		EntityID: "part-1", OrganizationID: orgA, UserID: "u",
		Entity: map[string]interface{}{},
	})
	if len(execs) != 1 || execs[0].Status != entity.ExecutionStatusSuccess {
		t.Fatalf("Zero-action workflow must record a success execution, got %+v", execs)
	}
}
