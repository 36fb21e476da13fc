package handlers

import (
	"context"
	"net/http"
	"sync"

	"load_transient/internal/models"
	"load_transient/internal/service"

	"github.com/gin-gonic/gin"
)

// ---- Service Mocks ----

type mockAuth struct {
	signUpID      int
	signUpErr     error
	genTokenToken string
	genTokenErr   error
	parseID       int
	parseErr      error

	lastSignUpUsername string
	lastGenUsername    string
	lastParseToken     string
}

func (m *mockAuth) SignUp(ctx context.Context, username, password string) (int, error) {
	m.lastSignUpUsername = username
	return m.signUpID, m.signUpErr
}
func (m *mockAuth) GenerateToken(ctx context.Context, username, password string) (string, error) {
	m.lastGenUsername = username
	return m.genTokenToken, m.genTokenErr
}
func (m *mockAuth) ParseToken(token string) (int, error) {
	m.lastParseToken = token
	return m.parseID, m.parseErr
}

type mockTestRun struct {
	defaults     models.TestConfiguration
	startState   models.RunState
	startErr     error
	cancelErr    error
	waitErr      error
	lastConfig   models.TestConfiguration
	lastOperator int
	startCalls   int
	cancelCalls  int
}

func (m *mockTestRun) Start(ctx context.Context, operatorID int, cfg models.TestConfiguration) (models.RunState, error) {
	m.startCalls++
	m.lastOperator = operatorID
	m.lastConfig = cfg
	return m.startState, m.startErr
}
func (m *mockTestRun) Cancel(ctx context.Context) error {
	m.cancelCalls++
	return m.cancelErr
}
func (m *mockTestRun) Wait(ctx context.Context) error {
	return m.waitErr
}
func (m *mockTestRun) Defaults() models.TestConfiguration {
	return m.defaults.Clone()
}

type mockMonitoring struct {
	state models.RunState
	err   error
}

func (m *mockMonitoring) GetState(ctx context.Context) (models.RunState, error) {
	return m.state, m.err
}

type mockEventLog struct {
	mu   sync.Mutex
	resp []models.RunEvent
	err  error
	last service.LogFilter
}

func (m *mockEventLog) List(ctx context.Context, f service.LogFilter) ([]models.RunEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.last = f
	return append([]models.RunEvent(nil), m.resp...), m.err
}

func (m *mockEventLog) set(events []models.RunEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resp = events
}

// ---- Shared Test Helpers ----

func newTestRouter(s *service.Service) *gin.Engine {
	h := NewHandler(s, nil)
	gin.SetMode(gin.TestMode)
	return h.InitRoutes()
}

func authHeader(token string) http.Header {
	h := http.Header{}
	if token != "" {
		h.Set("Authorization", "Bearer "+token)
	}
	return h
}
