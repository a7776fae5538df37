package tracking

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xyz-asif/schoolsafe/internal/features/identity"
	"github.com/xyz-asif/schoolsafe/internal/features/reports"
	"github.com/xyz-asif/schoolsafe/internal/pkg/jwt"
)

type staticSession struct {
	principal *identity.Principal
	err       error
	calls     int
}

func (s *staticSession) EnsureSession(context.Context) (*identity.Principal, error) {
	s.calls++
	return s.principal, s.err
}

func guest() *staticSession {
	return &staticSession{principal: &identity.Principal{UID: "anon_1"}}
}

func seed(t *testing.T, repo *reports.MemoryRepository, code, reply string) string {
	t.Helper()
	id, err := repo.Create(context.Background(), &reports.Report{
		Title:        "Bị mất xe đạp",
		Category:     reports.CategoryOther,
		Status:       reports.StatusPending,
		Identity:     reports.Disclosed{Name: "Nguyen An"},
		TrackingCode: code,
		AdminReply:   reply,
		Timestamp:    1,
	})
	require.NoError(t, err)
	return id
}

func TestGenerate_Shape(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 500; i++ {
		code, err := Generate()
		require.NoError(t, err)
		require.Regexp(t, `^[A-Z0-9]{6}$`, code)
		seen[code] = true
	}
	require.Greater(t, len(seen), 490)
}

func TestNormalize(t *testing.T) {
	require.Equal(t, "K7Q2ZD", Normalize("  k7q2zd \n"))
	require.True(t, Valid(Normalize("k7q2zd")))
	require.False(t, Valid("K7Q2Z"))
	require.False(t, Valid("K7Q-ZD"))
}

func TestIssuer_RetriesOnCollision(t *testing.T) {
	repo := reports.NewMemoryRepository()
	seed(t, repo, "AAAAAA", "")

	codes := []string{"AAAAAA", "AAAAAA", "BBBBBB"}
	issuer := NewIssuer(repo, zap.NewNop())
	issuer.generate = func() (string, error) {
		c := codes[0]
		codes = codes[1:]
		return c, nil
	}

	code, err := issuer.Issue(context.Background())
	require.NoError(t, err)
	require.Equal(t, "BBBBBB", code)
}

func TestIssuer_GivesUpAfterMaxAttempts(t *testing.T) {
	repo := reports.NewMemoryRepository()
	seed(t, repo, "AAAAAA", "")

	calls := 0
	issuer := NewIssuer(repo, zap.NewNop())
	issuer.generate = func() (string, error) {
		calls++
		return "AAAAAA", nil
	}

	code, err := issuer.Issue(context.Background())
	require.NoError(t, err)
	require.Equal(t, "AAAAAA", code)
	require.Equal(t, maxIssueAttempts, calls)
}

func TestIssuer_CheckFailureAcceptsCode(t *testing.T) {
	repo := reports.NewMemoryRepository()
	repo.FailReads(errors.New("offline"))

	code, err := NewIssuer(repo, zap.NewNop()).Issue(context.Background())
	require.NoError(t, err)
	require.True(t, Valid(code))
}

func TestLookup_Found(t *testing.T) {
	repo := reports.NewMemoryRepository()
	seed(t, repo, "K7Q2ZD", "")
	svc := NewService(repo, zap.NewNop())

	result, err := svc.Lookup(context.Background(), guest(), " k7q2zd ")
	require.NoError(t, err)
	require.Equal(t, StatusFound, result.Status)
	require.True(t, result.AwaitingReply)
	require.Equal(t, reports.StatusPending, result.Report.Status)
	require.Nil(t, result.Report.AIAnalysis)
}

func TestLookup_ReplyVisible(t *testing.T) {
	repo := reports.NewMemoryRepository()
	seed(t, repo, "K7Q2ZD", "Nhà trường đã liên hệ phụ huynh.")
	svc := NewService(repo, zap.NewNop())

	result, err := svc.Lookup(context.Background(), guest(), "K7Q2ZD")
	require.NoError(t, err)
	require.False(t, result.AwaitingReply)
	require.Equal(t, "Nhà trường đã liên hệ phụ huynh.", result.Report.AdminReply)
}

func TestLookup_NotFoundDoesNotMutate(t *testing.T) {
	repo := reports.NewMemoryRepository()
	seed(t, repo, "K7Q2ZD", "")
	writes := repo.WriteCalls()
	svc := NewService(repo, zap.NewNop())

	result, err := svc.Lookup(context.Background(), guest(), "ZZZZZZ")
	require.NoError(t, err)
	require.Equal(t, StatusNotFound, result.Status)
	require.Equal(t, writes, repo.WriteCalls())

	result, err = svc.Lookup(context.Background(), guest(), "??")
	require.NoError(t, err)
	require.Equal(t, StatusNotFound, result.Status)
}

func TestLookup_StoreFailures(t *testing.T) {
	repo := reports.NewMemoryRepository()
	svc := NewService(repo, zap.NewNop())

	repo.DenyReads(true)
	_, err := svc.Lookup(context.Background(), guest(), "K7Q2ZD")
	var lookupErr *LookupError
	require.ErrorAs(t, err, &lookupErr)
	require.Equal(t, KindPermission, lookupErr.Kind)
	require.Equal(t, PermissionDeniedCode, lookupErr.Code)

	repo.DenyReads(false)
	repo.FailReads(errors.New("deadline exceeded"))
	_, err = svc.Lookup(context.Background(), guest(), "K7Q2ZD")
	require.ErrorAs(t, err, &lookupErr)
	require.Equal(t, KindConnectivity, lookupErr.Kind)
	require.Empty(t, lookupErr.Code)
}

func TestLookup_AuthSetupFailure(t *testing.T) {
	repo := reports.NewMemoryRepository()
	repo.FailReads(errors.New("should not be reached"))
	svc := NewService(repo, zap.NewNop())

	_, err := svc.Lookup(context.Background(), &staticSession{err: errors.New("no network")}, "K7Q2ZD")
	require.ErrorIs(t, err, identity.ErrAuthSetup)

	var lookupErr *LookupError
	require.False(t, errors.As(err, &lookupErr))
}

func setupRouter(t *testing.T) (*gin.Engine, *reports.MemoryRepository) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	repo := reports.NewMemoryRepository()
	auth := identity.NewAuthenticator(identity.NewMemoryStaffRepository(), jwt.DefaultConfig("test"), zap.NewNop())
	r := gin.New()
	pass := func(c *gin.Context) { c.Next() }
	RegisterRoutes(r.Group("/api/v1"), NewHandler(NewService(repo, zap.NewNop()), auth, zap.NewNop()), pass, pass)
	return r, repo
}

func TestHandler_Lookup(t *testing.T) {
	r, repo := setupRouter(t)
	seed(t, repo, "K7Q2ZD", "")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/track/k7q2zd", nil))
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"awaitingReply":true`)
	require.Contains(t, w.Body.String(), `"accessToken"`)
	require.NotContains(t, w.Body.String(), "Nguyen An")

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/track/ZZZZZZ", nil))
	require.Equal(t, http.StatusNotFound, w.Code)
	require.Contains(t, w.Body.String(), "CODE_NOT_FOUND")

	repo.DenyReads(true)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/track/K7Q2ZD", nil))
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	require.Contains(t, w.Body.String(), "permission-denied")
}
