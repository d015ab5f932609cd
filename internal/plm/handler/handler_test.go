package handler

import (
	"testing"

	"github.com/Dokuly-PLM/dokuly-sub000/internal/plm/repository"
	"github.com/Dokuly-PLM/dokuly-sub000/internal/plm/service"
	"github.com/Dokuly-PLM/dokuly-sub000/internal/plm/testutil"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type testEnv struct {
	DB       *gorm.DB
	Router   *gin.Engine
	Repos    *repository.Repositories
	Services *service.Services
}

// setupTest wires the full HTTP stack against an in-memory database.
// Redis and webhook notifications stay disabled.
func setupTest(t *testing.T) *testEnv {
	t.Helper()

	db := testutil.SetupTestDB(t)
	repos := repository.NewRepositories(db)
	services := service.NewServices(repos, nil, nil, nil)
	handlers := NewHandlers(services)

	router := testutil.SetupRouter()
	RegisterRoutes(router, handlers, services.Organization, testutil.JWTSecret)

	return &testEnv{DB: db, Router: router, Repos: repos, Services: services}
}

// seedUserAndOrg creates a user with a token and an organization they belong to
func seedUserAndOrg(t *testing.T, env *testEnv, userID, orgName string) (token, orgID string) {
	t.Helper()
	user := testutil.SeedTestUser(t, env.DB, userID, "User "+userID)
	org := testutil.SeedTestOrg(t, env.DB, orgName, user.ID)
	return testutil.GenerateTestToken(user.ID, user.Username, user.Name), org.ID
}
