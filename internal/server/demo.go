// Package restapi hosts the built-in demo backend: a gin server replaying
// the same fixtures the stores degrade to, plus a scripted job lifecycle, so
// the CLI can be exercised end to end without the real platform.
package restapi

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/kginsights/datapuur/internal/domain"
	"github.com/kginsights/datapuur/internal/stores"
)

// demoJob advances one lifecycle step per poll: pending, running, completed.
type demoJob struct {
	job   domain.Job
	polls int
}

// DemoHandler serves the demo API surface.
type DemoHandler struct {
	log *slog.Logger

	mu       sync.Mutex
	tokens   map[string]string // token -> username
	schemas  []domain.GraphSchema
	plans    []domain.TransformationPlan
	jobs     map[string]*demoJob
	users    []domain.AdminUser
	roles    []domain.Role
	settings domain.AdminSettings
}

// NewDemoHandler registers the demo routes on the engine.
func NewDemoHandler(r *gin.Engine, log *slog.Logger) *DemoHandler {
	if log == nil {
		log = slog.Default()
	}
	h := &DemoHandler{
		log:      log,
		tokens:   make(map[string]string),
		schemas:  stores.DemoSchemas(),
		plans:    stores.DemoPlans(),
		jobs:     make(map[string]*demoJob),
		users:    stores.DemoUsers(),
		roles:    stores.DemoRoles(),
		settings: stores.DemoSettings(),
	}

	r.POST("/api/auth/token", h.Login)
	r.POST("/api/auth/register", h.Accept)
	r.POST("/api/auth/forgot-password", h.Accept)
	r.POST("/api/auth/reset-password", h.Accept)
	r.POST("/api/auth/reset-password-direct", h.Accept)

	authed := r.Group("/", h.RequireToken)
	authed.GET("/api/datapuur/sources", h.ListDatasets)
	authed.GET("/api/datapuur/sources/:id/profile", h.GetProfile)

	authed.GET("/api/graphschema/schemas", h.ListSchemas)
	authed.POST("/api/graphschema/schemas", h.SaveSchema)
	authed.DELETE("/api/graphschema/schemas/:id", h.DeleteSchema)
	authed.POST("/api/graphschema/chat", h.Chat)
	authed.GET("/api/graphschema/visualize/:id", h.Visualize)

	authed.GET("/api/admin/stats", h.Stats)
	authed.GET("/api/admin/users", h.Users)
	authed.DELETE("/api/admin/users/:username", h.DeleteUser)
	authed.GET("/api/admin/activity", h.Activity)
	authed.GET("/api/admin/settings", h.Settings)
	authed.PUT("/api/admin/settings", h.UpdateSettings)
	authed.GET("/api/admin/roles", h.Roles)
	authed.GET("/api/admin/permissions", h.Permissions)
	authed.POST("/api/admin/roles", h.CreateRole)
	authed.DELETE("/api/admin/roles/:id", h.DeleteRole)

	authed.GET("/api/datapuur-ai/transformations", h.ListPlans)
	authed.GET("/api/datapuur-ai/transformations/:id", h.GetPlan)
	authed.DELETE("/api/datapuur-ai/transformations/:id", h.DeletePlan)
	authed.POST("/api/datapuur-ai/execute", h.Execute)
	authed.GET("/api/datapuur-ai/jobs/:id", h.JobStatus)

	return h
}

// Login accepts any non-empty credentials and issues a demo token.
func (h *DemoHandler) Login(c *gin.Context) {
	username := c.PostForm("username")
	password := c.PostForm("password")
	if username == "" || password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username and password required"})
		return
	}

	token := uuid.NewString()
	h.mu.Lock()
	h.tokens[token] = username
	h.mu.Unlock()

	role := "analyst"
	perms := []string{"datapuur:read", "datapuur:write", "kginsights:read"}
	if username == "admin" {
		role = "admin"
		perms = append(perms, "admin:read", "admin:manage")
	}
	h.log.Info("demo login", "username", username, "role", role)
	c.JSON(http.StatusOK, gin.H{
		"access_token": token,
		"token_type":   "bearer",
		"username":     username,
		"role":         role,
		"permissions":  perms,
	})
}

// Accept acknowledges the one-shot auth POSTs (register, password resets).
func (h *DemoHandler) Accept(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// RequireToken rejects requests whose bearer token was not issued by Login.
func (h *DemoHandler) RequireToken(c *gin.Context) {
	header := c.GetHeader("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || token == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
		return
	}
	h.mu.Lock()
	_, known := h.tokens[token]
	h.mu.Unlock()
	if !known {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}
	c.Next()
}

func (h *DemoHandler) ListDatasets(c *gin.Context) {
	c.JSON(http.StatusOK, stores.DemoDatasets())
}

func (h *DemoHandler) GetProfile(c *gin.Context) {
	min, max, mean := 1.0, 9200.0, 418.7
	c.JSON(http.StatusOK, domain.Profile{
		DatasetID:   c.Param("id"),
		RowCount:    120_000,
		ColumnCount: 3,
		Columns: []domain.ColumnProfile{
			{Name: "order_id", DataType: "string", Count: 120_000, UniqueCount: 120_000},
			{Name: "total", DataType: "float", Count: 120_000, NullCount: 42, Min: &min, Max: &max, Mean: &mean},
			{Name: "segment", DataType: "string", Count: 120_000, UniqueCount: 4, TopValues: []domain.ValueCount{
				{Value: "retail", Count: 78_000},
				{Value: "wholesale", Count: 30_000},
			}},
		},
	})
}

func (h *DemoHandler) ListSchemas(c *gin.Context) {
	h.mu.Lock()
	defer h.mu.Unlock()
	c.JSON(http.StatusOK, h.schemas)
}

func (h *DemoHandler) SaveSchema(c *gin.Context) {
	var schema domain.GraphSchema
	if err := c.ShouldBindJSON(&schema); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if schema.ID == "" {
		schema.ID = uuid.NewString()
	}
	h.mu.Lock()
	h.schemas = append(h.schemas, schema)
	h.mu.Unlock()
	c.JSON(http.StatusOK, schema)
}

func (h *DemoHandler) DeleteSchema(c *gin.Context) {
	id := c.Param("id")
	h.mu.Lock()
	defer h.mu.Unlock()
	for i, s := range h.schemas {
		if s.ID == id {
			h.schemas = append(h.schemas[:i], h.schemas[i+1:]...)
			c.JSON(http.StatusOK, gin.H{"status": "deleted"})
			return
		}
	}
	c.JSON(http.StatusNotFound, gin.H{"error": "schema not found"})
}

// Chat replies with a canned draft derived from the first demo schema.
func (h *DemoHandler) Chat(c *gin.Context) {
	var req struct {
		Messages []domain.ChatMessage `json:"messages"`
		SourceID string               `json:"source_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	draft := stores.DemoSchemas()[0]
	draft.ID = ""
	draft.Name = ""
	draft.SourceID = req.SourceID
	c.JSON(http.StatusOK, domain.ChatResponse{
		Message: "Here is a draft schema based on the dataset columns. Adjust the name and save it when ready.",
		Schema:  &draft,
	})
}

func (h *DemoHandler) Visualize(c *gin.Context) {
	id := c.Param("id")
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, s := range h.schemas {
		if s.ID == id {
			c.JSON(http.StatusOK, gin.H{
				"schema_id":  s.ID,
				"node_count": len(s.Nodes),
				"edge_count": len(s.Relationships),
				"nodes":      s.Nodes,
			})
			return
		}
	}
	c.JSON(http.StatusNotFound, gin.H{"error": "schema not found"})
}

func (h *DemoHandler) Stats(c *gin.Context)    { c.JSON(http.StatusOK, stores.DemoStats()) }
func (h *DemoHandler) Activity(c *gin.Context) { c.JSON(http.StatusOK, stores.DemoActivity()) }

func (h *DemoHandler) Users(c *gin.Context) {
	h.mu.Lock()
	defer h.mu.Unlock()
	c.JSON(http.StatusOK, h.users)
}

func (h *DemoHandler) DeleteUser(c *gin.Context) {
	username := c.Param("username")
	h.mu.Lock()
	defer h.mu.Unlock()
	for i, u := range h.users {
		if u.Username == username {
			h.users = append(h.users[:i], h.users[i+1:]...)
			c.JSON(http.StatusOK, gin.H{"status": "deleted"})
			return
		}
	}
	c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
}

func (h *DemoHandler) Settings(c *gin.Context) {
	h.mu.Lock()
	defer h.mu.Unlock()
	c.JSON(http.StatusOK, h.settings)
}

func (h *DemoHandler) UpdateSettings(c *gin.Context) {
	var settings domain.AdminSettings
	if err := c.ShouldBindJSON(&settings); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.mu.Lock()
	h.settings = settings
	h.mu.Unlock()
	c.JSON(http.StatusOK, settings)
}

func (h *DemoHandler) Permissions(c *gin.Context) {
	c.JSON(http.StatusOK, stores.DemoPermissions())
}

func (h *DemoHandler) Roles(c *gin.Context) {
	h.mu.Lock()
	defer h.mu.Unlock()
	c.JSON(http.StatusOK, h.roles)
}

func (h *DemoHandler) CreateRole(c *gin.Context) {
	var role domain.Role
	if err := c.ShouldBindJSON(&role); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	maxID := 0
	for _, r := range h.roles {
		if r.Name == role.Name {
			c.JSON(http.StatusConflict, gin.H{"error": "role already exists"})
			return
		}
		if r.ID > maxID {
			maxID = r.ID
		}
	}
	role.ID = maxID + 1
	h.roles = append(h.roles, role)
	c.JSON(http.StatusOK, role)
}

func (h *DemoHandler) DeleteRole(c *gin.Context) {
	id := c.Param("id")
	h.mu.Lock()
	defer h.mu.Unlock()
	for i, r := range h.roles {
		if strconv.Itoa(r.ID) == id {
			if r.IsSystemRole {
				c.JSON(http.StatusForbidden, gin.H{"error": "system roles cannot be deleted"})
				return
			}
			h.roles = append(h.roles[:i], h.roles[i+1:]...)
			c.JSON(http.StatusOK, gin.H{"status": "deleted"})
			return
		}
	}
	c.JSON(http.StatusNotFound, gin.H{"error": "role not found"})
}

func (h *DemoHandler) ListPlans(c *gin.Context) {
	h.mu.Lock()
	defer h.mu.Unlock()
	c.JSON(http.StatusOK, h.plans)
}

func (h *DemoHandler) GetPlan(c *gin.Context) {
	id := c.Param("id")
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, p := range h.plans {
		if p.ID == id {
			c.JSON(http.StatusOK, p)
			return
		}
	}
	c.JSON(http.StatusNotFound, gin.H{"error": "plan not found"})
}

func (h *DemoHandler) DeletePlan(c *gin.Context) {
	id := c.Param("id")
	h.mu.Lock()
	defer h.mu.Unlock()
	for i, p := range h.plans {
		if p.ID == id {
			h.plans = append(h.plans[:i], h.plans[i+1:]...)
			c.JSON(http.StatusOK, gin.H{"status": "deleted"})
			return
		}
	}
	c.JSON(http.StatusNotFound, gin.H{"error": "plan not found"})
}

// Execute creates a scripted job that completes after two polls.
func (h *DemoHandler) Execute(c *gin.Context) {
	var req struct {
		PlanID string `json:"plan_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	job := domain.Job{ID: uuid.NewString(), Status: domain.JobPending}
	h.mu.Lock()
	h.jobs[job.ID] = &demoJob{job: job}
	h.mu.Unlock()
	h.log.Info("demo job started", "job", job.ID, "plan", req.PlanID)
	c.JSON(http.StatusOK, job)
}

// JobStatus advances the scripted lifecycle one step per poll.
func (h *DemoHandler) JobStatus(c *gin.Context) {
	id := c.Param("id")
	h.mu.Lock()
	defer h.mu.Unlock()

	entry, ok := h.jobs[id]
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "job not found"})
		return
	}
	entry.polls++
	switch {
	case entry.polls == 1:
		entry.job.Status = domain.JobRunning
		entry.job.Progress = 40
	case entry.polls >= 2 && !entry.job.Status.Terminal():
		entry.job.Status = domain.JobCompleted
		entry.job.Progress = 100
		entry.job.Result = &domain.JobResult{OutputFile: "transformed_" + id[:8] + ".csv"}
	}
	c.JSON(http.StatusOK, entry.job)
}
