package agent_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/altovacio/duelo-de-plumas-sub002/internal/api/v1/agent"
	"github.com/altovacio/duelo-de-plumas-sub002/internal/database"
	"github.com/altovacio/duelo-de-plumas-sub002/internal/models"
	"github.com/altovacio/duelo-de-plumas-sub002/internal/utils"
)

func setupTestDB() {
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	if err != nil {
		panic("failed to connect database")
	}

	db.Migrator().DropTable(&models.User{}, &models.Agent{}, &models.AgentExecution{})
	if err := db.AutoMigrate(&models.User{}, &models.Agent{}, &models.AgentExecution{}); err != nil {
		panic("failed to migrate database")
	}

	database.DB = db
	database.RedisClient = nil
}

func setupRouter(u models.User) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	group := r.Group("/api/v1")
	group.Use(func(c *gin.Context) {
		c.Set("user", u)
		c.Next()
	})
	agent.RegisterRoutes(group)
	return r
}

func TestCreateAndGetAgent(t *testing.T) {
	setupTestDB()
	u := models.User{ID: 1, Username: "alice", Role: "user"}
	database.DB.Create(&u)
	r := setupRouter(u)

	body, _ := json.Marshal(map[string]interface{}{
		"name":        "verse-smith",
		"type":        "writer",
		"personality": "A laconic poet.",
		"model":       "claude-sonnet-4",
	})
	req, _ := http.NewRequest(http.MethodPost, "/api/v1/agents", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusCreated, w.Code)

	var resp utils.Response
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	created := resp.Data.(map[string]interface{})
	assert.Equal(t, "verse-smith", created["name"])
	assert.Equal(t, float64(1), created["owner_id"])

	req, _ = http.NewRequest(http.MethodGet, "/api/v1/agents/1", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCreateAgentRejectsUnknownType(t *testing.T) {
	setupTestDB()
	u := models.User{ID: 1, Username: "alice", Role: "user"}
	database.DB.Create(&u)
	r := setupRouter(u)

	body, _ := json.Marshal(map[string]interface{}{
		"name":        "oracle",
		"type":        "oracle",
		"personality": "p",
		"model":       "m",
	})
	req, _ := http.NewRequest(http.MethodPost, "/api/v1/agents", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetPrivateAgentForbidden(t *testing.T) {
	setupTestDB()
	owner := models.User{ID: 1, Username: "owner", Role: "user"}
	stranger := models.User{ID: 2, Username: "stranger", Role: "user"}
	database.DB.Create(&owner)
	database.DB.Create(&stranger)

	database.DB.Create(&models.Agent{
		Name: "secret", Type: models.AgentTypeWriter, OwnerID: owner.ID,
		Personality: "p", Model: "m",
	})

	r := setupRouter(stranger)
	req, _ := http.NewRequest(http.MethodGet, "/api/v1/agents/1", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestDeleteBusyAgentConflicts(t *testing.T) {
	setupTestDB()
	u := models.User{ID: 1, Username: "alice", Role: "user"}
	database.DB.Create(&u)

	database.DB.Create(&models.Agent{
		Name: "busy", Type: models.AgentTypeWriter, OwnerID: u.ID,
		Personality: "p", Model: "m",
	})
	database.DB.Create(&models.AgentExecution{
		ID: "e-1", AgentID: 1, UserID: u.ID,
		Type: models.AgentTypeWriter, Status: models.ExecutionStatusRunning,
	})

	r := setupRouter(u)
	req, _ := http.NewRequest(http.MethodDelete, "/api/v1/agents/1", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusConflict, w.Code)
}
