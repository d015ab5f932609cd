package handler

import (
	"net/http"
	"testing"

	"github.com/Dokuly-PLM/dokuly-sub000/internal/plm/testutil"
)

func createIssue(t *testing.T, env *testEnv, token, orgID string, body map[string]interface{}) map[string]interface{} {
	t.Helper()
	w := testutil.DoRequest(env.Router, "POST", "/api/v1/issues", body, token, orgID)
	if w.Code != http.StatusCreated {
		t.Fatalf("Create issue: expected 201, got %d: %s", w.Code, w.Body.String())
	}
	return testutil.ParseResponse(w)["data"].(map[string]interface{})
}

func TestIssueLifecycle(t *testing.T) {
	env := setupTest(t)
	token, orgID := seedUserAndOrg(t, env, "user-001", "Acme")

	issue := createIssue(t, env, token, orgID, map[string]interface{}{
		"title":       "Bracket cracks under load",
		"description": "Seen on batch 12",
	})
	issueID := issue["id"].(string)
	if issue["status"] != "open" {
		t.Errorf("New issue status = %v, want open", issue["status"])
	}
	if issue["created_by"] != "user-001" {
		t.Errorf("created_by = %v, want user-001", issue["created_by"])
	}
	if issue["workflow_id"] != nil {
		t.Errorf("Manual issue must not reference a workflow, got %v", issue["workflow_id"])
	}

	// 关闭记录操作人和时间
	w := testutil.DoRequest(env.Router, "POST", "/api/v1/issues/"+issueID+"/close", nil, token, orgID)
	if w.Code != http.StatusOK {
		t.Fatalf("Close: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	closed := testutil.ParseResponse(w)["data"].(map[string]interface{})
	if closed["status"] != "closed" {
		t.Errorf("Closed status = %v", closed["status"])
	}
	if closed["closed_by"] != "user-001" || closed["closed_at"] == nil {
		t.Errorf("Close must record the actor and timestamp, got %v", closed)
	}

	// 重复关闭幂等
	w = testutil.DoRequest(env.Router, "POST", "/api/v1/issues/"+issueID+"/close", nil, token, orgID)
	if w.Code != http.StatusOK {
		t.Errorf("Repeated close: expected 200, got %d", w.Code)
	}

	// 重开清空关闭信息
	w = testutil.DoRequest(env.Router, "POST", "/api/v1/issues/"+issueID+"/reopen", nil, token, orgID)
	if w.Code != http.StatusOK {
		t.Fatalf("Reopen: expected 200, got %d", w.Code)
	}
	reopened := testutil.ParseResponse(w)["data"].(map[string]interface{})
	if reopened["status"] != "open" || reopened["closed_by"] != nil || reopened["closed_at"] != nil {
		t.Errorf("Reopened issue = %v", reopened)
	}
}

func TestIssueListStatusFilter(t *testing.T) {
	env := setupTest(t)
	token, orgID := seedUserAndOrg(t, env, "user-001", "Acme")

	first := createIssue(t, env, token, orgID, map[string]interface{}{"title": "First"})
	createIssue(t, env, token, orgID, map[string]interface{}{"title": "Second"})
	w := testutil.DoRequest(env.Router, "POST", "/api/v1/issues/"+first["id"].(string)+"/close", nil, token, orgID)
	if w.Code != http.StatusOK {
		t.Fatalf("Close: expected 200, got %d", w.Code)
	}

	w = testutil.DoRequest(env.Router, "GET", "/api/v1/issues?status=open", nil, token, orgID)
	result := testutil.ParseResponse(w)["data"].(map[string]interface{})
	if result["total"].(float64) != 1 {
		t.Errorf("Open issues = %v, want 1", result["total"])
	}
	items := result["items"].([]interface{})
	if items[0].(map[string]interface{})["title"] != "Second" {
		t.Errorf("Open issue = %v", items[0])
	}

	w = testutil.DoRequest(env.Router, "GET", "/api/v1/issues?status=closed", nil, token, orgID)
	result = testutil.ParseResponse(w)["data"].(map[string]interface{})
	if result["total"].(float64) != 1 {
		t.Errorf("Closed issues = %v, want 1", result["total"])
	}

	// 非法状态过滤
	w = testutil.DoRequest(env.Router, "GET", "/api/v1/issues?status=pending", nil, token, orgID)
	if w.Code != http.StatusBadRequest {
		t.Errorf("Invalid status filter: expected 400, got %d", w.Code)
	}
}

func TestIssueCrossOrgIsolation(t *testing.T) {
	env := setupTest(t)
	token, orgA := seedUserAndOrg(t, env, "user-001", "Acme")
	orgB := testutil.SeedTestOrg(t, env.DB, "Umbrella", "user-001")

	issue := createIssue(t, env, token, orgA, map[string]interface{}{"title": "Leak"})

	w := testutil.DoRequest(env.Router, "GET", "/api/v1/issues/"+issue["id"].(string), nil, token, orgB.ID)
	if w.Code != http.StatusNotFound {
		t.Errorf("Cross-org issue read: expected 404, got %d", w.Code)
	}

	w = testutil.DoRequest(env.Router, "GET", "/api/v1/issues", nil, token, orgB.ID)
	result := testutil.ParseResponse(w)["data"].(map[string]interface{})
	if result["total"].(float64) != 0 {
		t.Errorf("Org B issues = %v, want 0", result["total"])
	}
}
