package api_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/EgehanKilicarslan/taskmanager/backend-go/internal/api"
	"github.com/EgehanKilicarslan/taskmanager/backend-go/internal/auth"
	"github.com/EgehanKilicarslan/taskmanager/backend-go/internal/database/repository"
	"github.com/EgehanKilicarslan/taskmanager/backend-go/internal/database/service"
	"github.com/EgehanKilicarslan/taskmanager/backend-go/internal/handler"
	"github.com/EgehanKilicarslan/taskmanager/backend-go/internal/middleware"
	"github.com/EgehanKilicarslan/taskmanager/backend-go/internal/testutil"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type envelope struct {
	StatusCode    int             `json:"statusCode"`
	StatusMessage string          `json:"statusMessage"`
	Data          json.RawMessage `json:"data"`
	Error         string          `json:"error"`
}

type session struct {
	UserID uint   `json:"userId"`
	Email  string `json:"email"`
	Token  string `json:"token"`
}

func setupRouter(t *testing.T) *gin.Engine {
	t.Helper()

	cfg := testutil.TestConfig()
	log := testutil.TestLogger()
	db := testutil.NewTestDB(t)

	userRepo := repository.NewUserRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	hasher := auth.NewBcryptHasher(int(cfg.BcryptCost))
	tokens, err := auth.NewJWTService(cfg.JWTSecret, cfg.TokenTTL())
	require.NoError(t, err)

	userService := service.NewUserService(userRepo, hasher, log)
	authService := service.NewAuthService(userService, userRepo, hasher, tokens, log)
	taskService := service.NewTaskService(userRepo, taskRepo, log)

	reg := prometheus.NewRegistry()
	return api.SetupRouter(
		api.Handlers{
			Auth: handler.NewAuthHandler(authService, log),
			User: handler.NewUserHandler(userService, log),
			Task: handler.NewTaskHandler(taskService, log),
		},
		middleware.NewAuthMiddleware(tokens, userRepo, log),
		middleware.NewMetrics(reg),
		reg,
		log,
	)
}

func call(t *testing.T, router *gin.Engine, method, path, token string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 && strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	}
	return w, env
}

func register(t *testing.T, router *gin.Engine, email string) session {
	t.Helper()

	w, env := call(t, router, http.MethodPost, testutil.RegisterEndpoint, "", gin.H{
		"email":                email,
		"password":             "password123",
		"passwordConfirmation": "password123",
	})
	require.Equal(t, http.StatusCreated, w.Code, env.Error)

	var s session
	require.NoError(t, json.Unmarshal(env.Data, &s))
	return s
}

func userPath(id uint, suffix string) string {
	return fmt.Sprintf("%s%d%s", testutil.UsersEndpoint, id, suffix)
}

func TestHealthAndMetrics(t *testing.T) {
	router := setupRouter(t)

	w, env := call(t, router, http.MethodGet, testutil.HealthEndpoint, "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "OK", env.StatusMessage)
	assert.JSONEq(t, `{"status":"ok"}`, string(env.Data))

	w, _ = call(t, router, http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "taskmanager_http_requests_total")
}

func TestNoRoute(t *testing.T) {
	router := setupRouter(t)

	w, env := call(t, router, http.MethodGet, "/api/v1/nothing-here", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, 404, env.StatusCode)
	assert.True(t, strings.HasPrefix(env.Error, "NoHandlerFound: "))
}

func TestRegisterAndLogin(t *testing.T) {
	router := setupRouter(t)
	u1 := register(t, router, "u1@example.com")
	assert.NotZero(t, u1.UserID)
	assert.NotEmpty(t, u1.Token)

	tests := []struct {
		name       string
		path       string
		body       any
		wantStatus int
		wantPrefix string
	}{
		{
			name:       "login ok",
			path:       testutil.LoginEndpoint,
			body:       gin.H{"email": "u1@example.com", "password": "password123"},
			wantStatus: http.StatusOK,
		},
		{
			name:       "login wrong password",
			path:       testutil.LoginEndpoint,
			body:       gin.H{"email": "u1@example.com", "password": "nope-nope"},
			wantStatus: http.StatusBadRequest,
			wantPrefix: "InvalidPassword: ",
		},
		{
			name:       "login unknown email",
			path:       testutil.LoginEndpoint,
			body:       gin.H{"email": "zz@example.com", "password": "password123"},
			wantStatus: http.StatusBadRequest,
			wantPrefix: "IllegalArgument: ",
		},
		{
			name:       "login missing password",
			path:       testutil.LoginEndpoint,
			body:       gin.H{"email": "u1@example.com"},
			wantStatus: http.StatusBadRequest,
			wantPrefix: "IllegalArgument: password is required",
		},
		{
			name:       "register bad email",
			path:       testutil.RegisterEndpoint,
			body:       gin.H{"email": "bad", "password": "password123", "passwordConfirmation": "password123"},
			wantStatus: http.StatusBadRequest,
			wantPrefix: "InvalidEmailFormat: ",
		},
		{
			name:       "register duplicate",
			path:       testutil.RegisterEndpoint,
			body:       gin.H{"email": "u1@example.com", "password": "password123", "passwordConfirmation": "password123"},
			wantStatus: http.StatusConflict,
			wantPrefix: "EmailAlreadyExists: ",
		},
		{
			name:       "register mismatch",
			path:       testutil.RegisterEndpoint,
			body:       gin.H{"email": "u3@example.com", "password": "password123", "passwordConfirmation": "password321"},
			wantStatus: http.StatusBadRequest,
			wantPrefix: "InvalidPassword: ",
		},
		{
			name:       "malformed json",
			path:       testutil.RegisterEndpoint,
			body:       `{"email":`,
			wantStatus: http.StatusBadRequest,
			wantPrefix: "IllegalArgument: ",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, env := call(t, router, http.MethodPost, tt.path, "", tt.body)
			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantStatus, env.StatusCode)
			assert.Equal(t, http.StatusText(tt.wantStatus), env.StatusMessage)
			if tt.wantPrefix != "" {
				assert.True(t, strings.HasPrefix(env.Error, tt.wantPrefix), "error %q", env.Error)
			} else {
				var s session
				require.NoError(t, json.Unmarshal(env.Data, &s))
				assert.Equal(t, u1.UserID, s.UserID)
				assert.NotEmpty(t, s.Token)
			}
		})
	}
}

func TestEndToEndScenario(t *testing.T) {
	router := setupRouter(t)

	u1 := register(t, router, "u1@example.com")
	u2 := register(t, router, "u2@example.com")

	w, env := call(t, router, http.MethodPost, testutil.LoginEndpoint, "", gin.H{"email": "u1@example.com", "password": "password123"})
	require.Equal(t, http.StatusOK, w.Code)
	var login session
	require.NoError(t, json.Unmarshal(env.Data, &login))

	task := gin.H{"name": "Task 1", "description": "d"}
	w, env = call(t, router, http.MethodPost, userPath(u1.UserID, "/tasks"), login.Token, task)
	require.Equal(t, http.StatusCreated, w.Code, env.Error)
	var created service.TaskDetails
	require.NoError(t, json.Unmarshal(env.Data, &created))
	assert.NotZero(t, created.TaskID)
	assert.Equal(t, u1.UserID, created.UserID)

	w, env = call(t, router, http.MethodPost, userPath(u1.UserID, "/tasks"), login.Token, task)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.True(t, strings.HasPrefix(env.Error, "TaskAlreadyExists: "))

	// u2 cannot reach u1's resources.
	w, env = call(t, router, http.MethodGet, userPath(u1.UserID, "/tasks"), u2.Token, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.True(t, strings.HasPrefix(env.Error, "AccessDenied: "))

	w, _ = call(t, router, http.MethodDelete, userPath(u2.UserID, fmt.Sprintf("/tasks/%d", created.TaskID)), u2.Token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, env = call(t, router, http.MethodPost, userPath(u2.UserID, "/delete"), u2.Token, gin.H{
		"email":           "u2@example.com",
		"currentPassword": "password123",
	})
	assert.Equal(t, http.StatusNoContent, w.Code, env.Error)
	assert.Empty(t, w.Body.String())

	w, env = call(t, router, http.MethodGet, userPath(u2.UserID, ""), u2.Token, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.True(t, strings.HasPrefix(env.Error, "AuthenticationCredentialsNotFound: "))

	w, _ = call(t, router, http.MethodPost, testutil.LoginEndpoint, "", gin.H{"email": "u2@example.com", "password": "password123"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// u1 is unaffected.
	w, env = call(t, router, http.MethodGet, userPath(u1.UserID, "/tasks"), login.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var tasks []service.TaskDetails
	require.NoError(t, json.Unmarshal(env.Data, &tasks))
	require.Len(t, tasks, 1)
	assert.Equal(t, "Task 1", tasks[0].Name)
}

func TestTaskLifecycle(t *testing.T) {
	router := setupRouter(t)
	u := register(t, router, "tasks@example.com")

	w, env := call(t, router, http.MethodGet, userPath(u.UserID, "/tasks"), u.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, string(env.Data))

	w, env = call(t, router, http.MethodPost, userPath(u.UserID, "/tasks"), u.Token, gin.H{"name": "   ", "description": "d"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "IllegalArgument: name must not be blank", env.Error)

	w, env = call(t, router, http.MethodPost, userPath(u.UserID, "/tasks"), u.Token, gin.H{"name": "write", "description": "draft"})
	require.Equal(t, http.StatusCreated, w.Code)
	var created service.TaskDetails
	require.NoError(t, json.Unmarshal(env.Data, &created))
	taskPath := userPath(u.UserID, fmt.Sprintf("/tasks/%d", created.TaskID))

	w, env = call(t, router, http.MethodPut, taskPath, u.Token, gin.H{"name": "write", "description": "final"})
	require.Equal(t, http.StatusOK, w.Code)
	var updated service.TaskDetails
	require.NoError(t, json.Unmarshal(env.Data, &updated))
	assert.Equal(t, "final", updated.Description)

	w, env = call(t, router, http.MethodGet, taskPath, u.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var fetched service.TaskDetails
	require.NoError(t, json.Unmarshal(env.Data, &fetched))
	assert.Equal(t, updated, fetched)

	w, _ = call(t, router, http.MethodDelete, taskPath, u.Token, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w, env = call(t, router, http.MethodGet, taskPath, u.Token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.True(t, strings.HasPrefix(env.Error, "TaskNotFound: "))

	w, env = call(t, router, http.MethodGet, userPath(u.UserID, "/tasks/abc"), u.Token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.True(t, strings.HasPrefix(env.Error, "IllegalArgument: "))
}

func TestPasswordChange(t *testing.T) {
	router := setupRouter(t)
	u := register(t, router, "pw@example.com")

	w, env := call(t, router, http.MethodGet, userPath(u.UserID, ""), "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.True(t, strings.HasPrefix(env.Error, "InsufficientAuthentication: "))

	w, env = call(t, router, http.MethodPut, userPath(u.UserID, "/password"), u.Token, gin.H{
		"currentPassword":         "password123",
		"newPassword":             "password456",
		"newPasswordConfirmation": "password456",
	})
	require.Equal(t, http.StatusOK, w.Code, env.Error)
	assert.JSONEq(t, fmt.Sprintf(`{"userId":%d,"email":"pw@example.com"}`, u.UserID), string(env.Data))

	w, _ = call(t, router, http.MethodPost, testutil.LoginEndpoint, "", gin.H{"email": "pw@example.com", "password": "password123"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = call(t, router, http.MethodPost, testutil.LoginEndpoint, "", gin.H{"email": "pw@example.com", "password": "password456"})
	assert.Equal(t, http.StatusOK, w.Code)
}
