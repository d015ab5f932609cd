package handler

import (
	"net/http"
	"testing"

	"github.com/Dokuly-PLM/dokuly-sub000/internal/plm/testutil"
)

func TestOrganizationCreateAndMembership(t *testing.T) {
	env := setupTest(t)
	alice := testutil.SeedTestUser(t, env.DB, "user-alice", "Alice")
	aliceToken := testutil.GenerateTestToken(alice.ID, alice.Username, alice.Name)

	// 创建组织不需要 X-Org-ID，创建者自动成为管理员成员
	w := testutil.DoRequest(env.Router, "POST", "/api/v1/organizations",
		map[string]interface{}{"name": "Acme"}, aliceToken, "")
	if w.Code != http.StatusCreated {
		t.Fatalf("Create org: expected 201, got %d: %s", w.Code, w.Body.String())
	}
	org := testutil.ParseResponse(w)["data"].(map[string]interface{})
	orgID := org["id"].(string)
	if org["name"] != "Acme" {
		t.Errorf("Org name = %v", org["name"])
	}
	partRev := org["part_revision"].(map[string]interface{})
	if partRev["revision_format"] != "major-minor" {
		t.Errorf("Default part revision_format = %v, want major-minor", partRev["revision_format"])
	}

	w = testutil.DoRequest(env.Router, "GET", "/api/v1/organization/members", nil, aliceToken, orgID)
	if w.Code != http.StatusOK {
		t.Fatalf("List members: expected 200, got %d", w.Code)
	}
	members := testutil.ParseResponse(w)["data"].([]interface{})
	if len(members) != 1 {
		t.Fatalf("Members = %d, want 1", len(members))
	}
	creator := members[0].(map[string]interface{})
	if creator["user_id"] != alice.ID || creator["role"] != "admin" {
		t.Errorf("Creator membership = %v", creator)
	}

	// 非成员访问组织资源被拒
	bob := testutil.SeedTestUser(t, env.DB, "user-bob", "Bob")
	bobToken := testutil.GenerateTestToken(bob.ID, bob.Username, bob.Name)
	w = testutil.DoRequest(env.Router, "GET", "/api/v1/organization", nil, bobToken, orgID)
	if w.Code != http.StatusForbidden {
		t.Errorf("Non-member access: expected 403, got %d", w.Code)
	}

	// 加入后可以访问
	w = testutil.DoRequest(env.Router, "POST", "/api/v1/organization/members",
		map[string]interface{}{"user_id": bob.ID}, aliceToken, orgID)
	if w.Code != http.StatusCreated {
		t.Fatalf("Add member: expected 201, got %d: %s", w.Code, w.Body.String())
	}
	w = testutil.DoRequest(env.Router, "GET", "/api/v1/organization", nil, bobToken, orgID)
	if w.Code != http.StatusOK {
		t.Errorf("Member access: expected 200, got %d", w.Code)
	}
}

func TestOrganizationNumberingValidation(t *testing.T) {
	env := setupTest(t)
	token, orgID := seedUserAndOrg(t, env, "user-001", "Acme")

	w := testutil.DoRequest(env.Router, "PUT", "/api/v1/organization/numbering",
		map[string]interface{}{
			"part_revision": map[string]interface{}{"revision_format": "semver"},
		}, token, orgID)
	if w.Code != http.StatusBadRequest {
		t.Errorf("Invalid revision_format: expected 400, got %d", w.Code)
	}

	// 空格式回落到默认 major-minor
	w = testutil.DoRequest(env.Router, "PUT", "/api/v1/organization/numbering",
		map[string]interface{}{
			"part_revision": map[string]interface{}{"use_number_revisions": true},
		}, token, orgID)
	if w.Code != http.StatusOK {
		t.Fatalf("Update numbering: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	org := testutil.ParseResponse(w)["data"].(map[string]interface{})
	partRev := org["part_revision"].(map[string]interface{})
	if partRev["revision_format"] != "major-minor" || partRev["use_number_revisions"] != true {
		t.Errorf("Normalized part_revision = %v", partRev)
	}
}

func TestMissingOrgHeader(t *testing.T) {
	env := setupTest(t)
	token, _ := seedUserAndOrg(t, env, "user-001", "Acme")

	w := testutil.DoRequest(env.Router, "GET", "/api/v1/parts", nil, token, "")
	if w.Code != http.StatusBadRequest {
		t.Errorf("Missing X-Org-ID: expected 400, got %d", w.Code)
	}
}
