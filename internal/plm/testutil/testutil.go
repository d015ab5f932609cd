// Package testutil provides shared helpers for service and handler tests.
package testutil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Dokuly-PLM/dokuly-sub000/internal/plm/entity"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const JWTSecret = "dokuly-plm-test-jwt-secret"

// SetupTestDB creates an isolated in-memory database with all tables migrated.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	err = db.AutoMigrate(
		&entity.User{},
		&entity.Organization{},
		&entity.OrganizationMember{},
		&entity.Project{},
		&entity.Part{},
		&entity.Pcba{},
		&entity.Assembly{},
		&entity.Document{},
		&entity.BOMItem{},
		&entity.Issue{},
		&entity.Workflow{},
		&entity.WorkflowAction{},
		&entity.WorkflowExecution{},
		&entity.WorkflowAuditLog{},
	)
	if err != nil {
		t.Fatalf("Failed to migrate test tables: %v", err)
	}

	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		if sqlDB != nil {
			sqlDB.Close()
		}
	})

	return db
}

// SetupRouter creates a gin test router
func SetupRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(gin.Recovery())
	return r
}

// GenerateTestToken creates a valid JWT token for testing
func GenerateTestToken(userID, username, name string) string {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":      userID,
		"uid":      userID,
		"username": username,
		"name":     name,
		"iss":      "dokuly-plm",
		"iat":      now.Unix(),
		"exp":      now.Add(24 * time.Hour).Unix(),
		"jti":      fmt.Sprintf("test-jti-%d", now.UnixNano()),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, _ := token.SignedString([]byte(JWTSecret))
	return tokenString
}

// DoRequest executes an HTTP request against the test router.
// The org header is omitted when orgID is empty.
func DoRequest(r *gin.Engine, method, path string, body interface{}, token, orgID string) *httptest.ResponseRecorder {
	var reqBody *bytes.Buffer
	if body != nil {
		jsonBytes, _ := json.Marshal(body)
		reqBody = bytes.NewBuffer(jsonBytes)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req, _ := http.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if orgID != "" {
		req.Header.Set("X-Org-ID", orgID)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// ParseResponse parses the JSON response body into a map
func ParseResponse(w *httptest.ResponseRecorder) map[string]interface{} {
	var result map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &result)
	return result
}

// SeedTestUser creates a test user in the database
func SeedTestUser(t *testing.T, db *gorm.DB, id, name string) *entity.User {
	t.Helper()
	user := &entity.User{
		ID:       id,
		Username: "user_" + id,
		Name:     name,
		Email:    id + "@test.com",
		Status:   entity.UserStatusActive,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("Failed to seed test user: %v", err)
	}
	return user
}

// SeedTestOrg creates an organization with the given user as admin member
func SeedTestOrg(t *testing.T, db *gorm.DB, name, userID string) *entity.Organization {
	t.Helper()
	org := &entity.Organization{
		ID:   uuid.New().String()[:32],
		Name: name,
		PartRevision: entity.RevisionSettings{
			RevisionFormat: entity.RevisionFormatMajorMinor,
		},
		DocRevision: entity.RevisionSettings{
			RevisionFormat: entity.RevisionFormatMajorMinor,
		},
	}
	if err := db.Create(org).Error; err != nil {
		t.Fatalf("Failed to seed test org: %v", err)
	}
	member := &entity.OrganizationMember{
		ID:             uuid.New().String()[:32],
		OrganizationID: org.ID,
		UserID:         userID,
		Role:           "admin",
	}
	if err := db.Create(member).Error; err != nil {
		t.Fatalf("Failed to seed org member: %v", err)
	}
	return org
}

// SeedTestProject creates a project in the given organization
func SeedTestProject(t *testing.T, db *gorm.DB, orgID, number, name, userID string) *entity.Project {
	t.Helper()
	project := &entity.Project{
		ID:             uuid.New().String()[:32],
		OrganizationID: orgID,
		ProjectNumber:  number,
		Name:           name,
		Status:         entity.ProjectStatusActive,
		CreatedBy:      userID,
	}
	if err := db.Create(project).Error; err != nil {
		t.Fatalf("Failed to seed test project: %v", err)
	}
	return project
}
