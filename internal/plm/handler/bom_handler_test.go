package handler

import (
	"net/http"
	"testing"

	"github.com/Dokuly-PLM/dokuly-sub000/internal/plm/testutil"
)

func createAssembly(t *testing.T, env *testEnv, token, orgID, name string) map[string]interface{} {
	t.Helper()
	w := testutil.DoRequest(env.Router, "POST", "/api/v1/assemblies",
		map[string]interface{}{"display_name": name}, token, orgID)
	if w.Code != http.StatusCreated {
		t.Fatalf("Create assembly: expected 201, got %d: %s", w.Code, w.Body.String())
	}
	return testutil.ParseResponse(w)["data"].(map[string]interface{})
}

func TestBOMLifecycle(t *testing.T) {
	env := setupTest(t)
	token, orgID := seedUserAndOrg(t, env, "user-001", "Acme")

	assembly := createAssembly(t, env, token, orgID, "Enclosure")
	assemblyID := assembly["id"].(string)
	part := createPart(t, env, token, orgID, map[string]interface{}{"display_name": "Bracket"})
	partNumber := part["part_number"].(float64)

	// 按零件族编号添加行项，数量缺省为1
	w := testutil.DoRequest(env.Router, "POST", "/api/v1/assemblies/"+assemblyID+"/bom",
		map[string]interface{}{"part_number": partNumber, "designator": "BR1"}, token, orgID)
	if w.Code != http.StatusCreated {
		t.Fatalf("Add BOM item: expected 201, got %d: %s", w.Code, w.Body.String())
	}
	item := testutil.ParseResponse(w)["data"].(map[string]interface{})
	if item["quantity"].(float64) != 1 {
		t.Errorf("Default quantity = %v, want 1", item["quantity"])
	}
	itemID := item["id"].(string)

	// 同一零件族不能重复出现
	w = testutil.DoRequest(env.Router, "POST", "/api/v1/assemblies/"+assemblyID+"/bom",
		map[string]interface{}{"part_number": partNumber}, token, orgID)
	if w.Code != http.StatusBadRequest {
		t.Errorf("Duplicate BOM part: expected 400, got %d", w.Code)
	}

	// 未知零件族
	w = testutil.DoRequest(env.Router, "POST", "/api/v1/assemblies/"+assemblyID+"/bom",
		map[string]interface{}{"part_number": 999}, token, orgID)
	if w.Code != http.StatusNotFound {
		t.Errorf("Unknown part family: expected 404, got %d", w.Code)
	}

	// 列表解析零件族当前最新修订
	w = testutil.DoRequest(env.Router, "GET", "/api/v1/assemblies/"+assemblyID+"/bom", nil, token, orgID)
	if w.Code != http.StatusOK {
		t.Fatalf("List BOM: expected 200, got %d", w.Code)
	}
	lines := testutil.ParseResponse(w)["data"].([]interface{})
	if len(lines) != 1 {
		t.Fatalf("BOM lines = %d, want 1", len(lines))
	}
	resolved := lines[0].(map[string]interface{})["part"].(map[string]interface{})
	if resolved["formatted_revision"] != "A-0" {
		t.Errorf("Resolved revision = %v, want A-0", resolved["formatted_revision"])
	}

	// 零件出新版后BOM自动跟到最新修订，行项无需改动
	w = testutil.DoRequest(env.Router, "POST", "/api/v1/parts/"+part["id"].(string)+"/revisions",
		map[string]interface{}{"major_bump": true}, token, orgID)
	if w.Code != http.StatusCreated {
		t.Fatalf("New part revision: expected 201, got %d", w.Code)
	}
	w = testutil.DoRequest(env.Router, "GET", "/api/v1/assemblies/"+assemblyID+"/bom", nil, token, orgID)
	lines = testutil.ParseResponse(w)["data"].([]interface{})
	resolved = lines[0].(map[string]interface{})["part"].(map[string]interface{})
	if resolved["formatted_revision"] != "B-0" {
		t.Errorf("Resolved revision after bump = %v, want B-0", resolved["formatted_revision"])
	}

	// 数量更新与校验
	w = testutil.DoRequest(env.Router, "PUT", "/api/v1/assemblies/"+assemblyID+"/bom/"+itemID,
		map[string]interface{}{"quantity": 4}, token, orgID)
	if w.Code != http.StatusOK {
		t.Fatalf("Update quantity: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	updated := testutil.ParseResponse(w)["data"].(map[string]interface{})
	if updated["quantity"].(float64) != 4 {
		t.Errorf("Updated quantity = %v, want 4", updated["quantity"])
	}
	w = testutil.DoRequest(env.Router, "PUT", "/api/v1/assemblies/"+assemblyID+"/bom/"+itemID,
		map[string]interface{}{"quantity": 0}, token, orgID)
	if w.Code != http.StatusBadRequest {
		t.Errorf("Zero quantity: expected 400, got %d", w.Code)
	}

	// 删除行项
	w = testutil.DoRequest(env.Router, "DELETE", "/api/v1/assemblies/"+assemblyID+"/bom/"+itemID, nil, token, orgID)
	if w.Code != http.StatusOK {
		t.Fatalf("Remove BOM item: expected 200, got %d", w.Code)
	}
	w = testutil.DoRequest(env.Router, "GET", "/api/v1/assemblies/"+assemblyID+"/bom", nil, token, orgID)
	lines = testutil.ParseResponse(w)["data"].([]interface{})
	if len(lines) != 0 {
		t.Errorf("BOM lines after removal = %d, want 0", len(lines))
	}
}

func TestBOMArchivedFamilyResolvesToNull(t *testing.T) {
	env := setupTest(t)
	token, orgID := seedUserAndOrg(t, env, "user-001", "Acme")

	assembly := createAssembly(t, env, token, orgID, "Enclosure")
	assemblyID := assembly["id"].(string)
	part := createPart(t, env, token, orgID, map[string]interface{}{"display_name": "Bracket"})

	w := testutil.DoRequest(env.Router, "POST", "/api/v1/assemblies/"+assemblyID+"/bom",
		map[string]interface{}{"part_number": part["part_number"]}, token, orgID)
	if w.Code != http.StatusCreated {
		t.Fatalf("Add BOM item: expected 201, got %d", w.Code)
	}

	// 族内唯一修订归档后行项保留，解析出的零件为空
	w = testutil.DoRequest(env.Router, "POST", "/api/v1/parts/"+part["id"].(string)+"/archive", nil, token, orgID)
	if w.Code != http.StatusOK {
		t.Fatalf("Archive part: expected 200, got %d", w.Code)
	}
	w = testutil.DoRequest(env.Router, "GET", "/api/v1/assemblies/"+assemblyID+"/bom", nil, token, orgID)
	lines := testutil.ParseResponse(w)["data"].([]interface{})
	if len(lines) != 1 {
		t.Fatalf("BOM lines = %d, want 1", len(lines))
	}
	if lines[0].(map[string]interface{})["part"] != nil {
		t.Errorf("Fully archived family must resolve to no part, got %v", lines[0])
	}
}
