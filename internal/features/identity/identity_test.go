package identity

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/xyz-asif/schoolsafe/internal/pkg/jwt"
)

func newTestAuthenticator(t *testing.T) *Authenticator {
	t.Helper()
	a := NewAuthenticator(NewMemoryStaffRepository(), jwt.DefaultConfig("test-secret"), zap.NewNop())
	require.NoError(t, a.EnsureStaff(context.Background(), "Teacher@School.edu.vn", "s3cret", "Cô Lan"))
	return a
}

func TestResolveRole(t *testing.T) {
	require.Equal(t, RoleStudent, ResolveRole(nil))
	require.Equal(t, RoleStudent, ResolveRole(&Principal{UID: "a"}))
	require.Equal(t, RoleStudent, ResolveRole(&Principal{UID: "a", Email: "  "}))
	require.Equal(t, RoleTeacher, ResolveRole(&Principal{UID: "t", Email: "t@school.edu.vn"}))
}

type failingAuth struct {
	mu    sync.Mutex
	calls int
}

func (f *failingAuth) SignInAnonymously(context.Context) (*Principal, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	return nil, errors.New("network unreachable")
}

func (f *failingAuth) SignInWithCredentials(context.Context, string, string) (*Principal, error) {
	return nil, ErrInvalidCredentials
}

func (f *failingAuth) SignOut(context.Context) error { return nil }

func (f *failingAuth) OnPrincipalChanged(fn func(*Principal)) func() {
	fn(nil)
	return func() {}
}

func TestResolver_AnonymousFailureIsNonFatal(t *testing.T) {
	auth := &failingAuth{}
	r := NewResolver(auth, zap.NewNop())

	require.Equal(t, RoleStudent, r.Resolve(context.Background(), nil))
	require.Equal(t, 1, auth.calls)
	require.Nil(t, r.Current())
}

func TestResolver_EnsureSessionFailure(t *testing.T) {
	r := NewResolver(&failingAuth{}, zap.NewNop())

	_, err := r.EnsureSession(context.Background())
	require.ErrorIs(t, err, ErrAuthSetup)
}

func TestResolver_SignsInAnonymouslyWhenAbsent(t *testing.T) {
	client := NewClient(newTestAuthenticator(t))
	r := NewResolver(client, zap.NewNop())

	require.Equal(t, RoleStudent, r.Resolve(context.Background(), nil))
	require.NotNil(t, r.Current())
	require.True(t, r.Current().Anonymous())

	p, err := r.EnsureSession(context.Background())
	require.NoError(t, err)
	require.Equal(t, r.Current(), p)
}

func TestAuthenticator_Login(t *testing.T) {
	a := newTestAuthenticator(t)

	session, err := a.Login(context.Background(), "teacher@school.edu.vn", "s3cret")
	require.NoError(t, err)
	require.Equal(t, "teacher", session.Role)
	require.Equal(t, "teacher@school.edu.vn", session.Principal.Email)

	p, err := a.Verify(context.Background(), session.Token)
	require.NoError(t, err)
	require.Equal(t, RoleTeacher, ResolveRole(p))
}

func TestAuthenticator_LoginFailuresAreGeneric(t *testing.T) {
	a := newTestAuthenticator(t)

	_, errWrongPassword := a.Login(context.Background(), "teacher@school.edu.vn", "nope")
	_, errUnknownEmail := a.Login(context.Background(), "ghost@school.edu.vn", "s3cret")

	require.ErrorIs(t, errWrongPassword, ErrInvalidCredentials)
	require.ErrorIs(t, errUnknownEmail, ErrInvalidCredentials)
	require.Equal(t, errWrongPassword.Error(), errUnknownEmail.Error())
	require.Equal(t, "Email hoặc mật khẩu không chính xác.", errUnknownEmail.Error())
}

func TestAuthenticator_UnknownEmailStillComparesHash(t *testing.T) {
	a := newTestAuthenticator(t)
	var hashes [][]byte
	a.compareHash = func(hash, password []byte) error {
		hashes = append(hashes, hash)
		return bcrypt.CompareHashAndPassword(hash, password)
	}

	_, err := a.Login(context.Background(), "ghost@school.edu.vn", "s3cret")
	require.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = a.Login(context.Background(), "teacher@school.edu.vn", "nope")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	require.Len(t, hashes, 2)
	cost, err := bcrypt.Cost(hashes[0])
	require.NoError(t, err)
	staffCost, err := bcrypt.Cost(hashes[1])
	require.NoError(t, err)
	require.Equal(t, staffCost, cost)
}

func TestAuthenticator_AnonymousSession(t *testing.T) {
	a := newTestAuthenticator(t)

	session, err := a.Anonymous(context.Background())
	require.NoError(t, err)
	require.Equal(t, "student", session.Role)

	p, err := a.Verify(context.Background(), session.Token)
	require.NoError(t, err)
	require.True(t, p.Anonymous())
	require.True(t, strings.HasPrefix(p.UID, "anon_"))
}

func TestEnsureStaff_RejectsMalformedAccounts(t *testing.T) {
	a := newTestAuthenticator(t)

	require.Error(t, a.EnsureStaff(context.Background(), "not-an-email", "s3cret", ""))
	require.Error(t, a.EnsureStaff(context.Background(), "teacher2@school.edu.vn", "", ""))

	_, err := a.Login(context.Background(), "not-an-email", "s3cret")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestEnsureStaff_Idempotent(t *testing.T) {
	a := newTestAuthenticator(t)
	require.NoError(t, a.EnsureStaff(context.Background(), "teacher@school.edu.vn", "other", ""))

	_, err := a.Login(context.Background(), "teacher@school.edu.vn", "s3cret")
	require.NoError(t, err)
}

func TestClient_ObserversSeeEveryChange(t *testing.T) {
	client := NewClient(newTestAuthenticator(t))

	var seen []*Principal
	unsubscribe := client.OnPrincipalChanged(func(p *Principal) { seen = append(seen, p) })

	_, err := client.SignInAnonymously(context.Background())
	require.NoError(t, err)
	_, err = client.SignInWithCredentials(context.Background(), "teacher@school.edu.vn", "s3cret")
	require.NoError(t, err)
	require.NoError(t, client.SignOut(context.Background()))

	unsubscribe()
	_, err = client.SignInAnonymously(context.Background())
	require.NoError(t, err)

	require.Len(t, seen, 4)
	require.Nil(t, seen[0])
	require.Equal(t, RoleStudent, ResolveRole(seen[1]))
	require.Equal(t, RoleTeacher, ResolveRole(seen[2]))
	require.Nil(t, seen[3])
}

func TestChainVerifier(t *testing.T) {
	a := newTestAuthenticator(t)
	session, err := a.Anonymous(context.Background())
	require.NoError(t, err)

	chain := ChainVerifier{nil, a}
	p, err := chain.Verify(context.Background(), session.Token)
	require.NoError(t, err)
	require.Equal(t, session.Principal.UID, p.UID)

	_, err = chain.Verify(context.Background(), "garbage")
	require.ErrorIs(t, err, ErrInvalidSession)
}

func setupRouter(t *testing.T) (*gin.Engine, *Authenticator) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	a := newTestAuthenticator(t)
	r := gin.New()
	noop := func(c *gin.Context) { c.Next() }
	RegisterRoutes(r.Group("/api/v1"), NewHandler(a, zap.NewNop()), NewAuthMiddleware(a), noop)
	r.GET("/teacher-only", NewAuthMiddleware(a), RequireTeacher(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	return r, a
}

func TestHandler_LoginInvalidCredentials(t *testing.T) {
	r, _ := setupRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(`{"email":"ghost@x.vn","password":"x"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusUnauthorized, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Equal(t, "Email hoặc mật khẩu không chính xác.", body["error"])
	require.Equal(t, "AUTH_FAILED", body["code"])
}

func TestHandler_MeRequiresToken(t *testing.T) {
	r, _ := setupRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil))

	require.Equal(t, http.StatusUnauthorized, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Equal(t, "AUTH_REQUIRED", body["code"])
}

func TestRequireTeacher(t *testing.T) {
	r, a := setupRouter(t)

	anon, err := a.Anonymous(context.Background())
	require.NoError(t, err)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/teacher-only", nil)
	req.Header.Set("Authorization", "Bearer "+anon.Token)
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusForbidden, w.Code)

	staff, err := a.Login(context.Background(), "teacher@school.edu.vn", "s3cret")
	require.NoError(t, err)
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/teacher-only", nil)
	req.Header.Set("Authorization", "Bearer "+staff.Token)
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
}
