package auth

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/TretaGroup/tretaweb/internal/instrumentation"
	"github.com/TretaGroup/tretaweb/pkg"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

// use TestMain(m *testing.M) { ... } for
// global set-up/tear-down for all the tests in a package
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const testLoginPassword = "testpass"

type handlerTestSetup struct {
	router       *mux.Router
	store        *storeMock
	tokenService *TokenService
	limiter      *LoginLimiter
	adminUser    UserRecord
	viewerUser   UserRecord
}

func setupAuthHandlerForTests(t *testing.T, maxLoginAttempts int) *handlerTestSetup {
	t.Helper()

	passwordHash, err := pkg.HashPassword(testLoginPassword)
	require.NoError(t, err)

	store := newStoreMock()
	adminUser := UserRecord{
		ID:           1,
		Username:     "marko",
		Name:         gofakeit.Name(),
		Role:         RoleAdmin,
		PasswordHash: passwordHash,
	}
	viewerUser := UserRecord{
		ID:           2,
		Username:     "guest",
		Name:         gofakeit.Name(),
		Role:         RoleOther,
		PasswordHash: passwordHash,
	}
	store.AddUser(adminUser)
	store.AddUser(viewerUser)

	tokenService := NewTokenService([]byte("test-secret"), SessionTTL)
	limiter := NewLoginLimiter(maxLoginAttempts, 15*time.Minute)

	r := mux.NewRouter()
	handler := NewHandler(store, tokenService, limiter, instrumentation.NewTestInstrumentation(), false)
	handler.SetupRoutes(r)

	return &handlerTestSetup{
		router:       r,
		store:        store,
		tokenService: tokenService,
		limiter:      limiter,
		adminUser:    adminUser,
		viewerUser:   viewerUser,
	}
}

func loginReqJson(t *testing.T, username, password string) *http.Request {
	t.Helper()
	body := fmt.Sprintf(`{"username":%q,"password":%q}`, username, password)
	req := httptest.NewRequest(http.MethodPost, "/api/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestHandleLogin_Success(t *testing.T) {
	setup := setupAuthHandlerForTests(t, DefaultLoginMaxAttempts)

	w := httptest.NewRecorder()
	setup.router.ServeHTTP(w, loginReqJson(t, "marko", testLoginPassword))

	require.Equal(t, http.StatusOK, w.Code)

	var resp loginResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, setup.adminUser.ID, resp.User.ID)
	assert.Equal(t, "marko", resp.User.Username)
	assert.Equal(t, RoleAdmin, resp.User.Role)
	require.NotEmpty(t, resp.Token)

	// returned token decodes to the same user
	claims, err := setup.tokenService.Verify(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, setup.adminUser.ID, claims.UserID)
	assert.Equal(t, setup.adminUser.Name, claims.Name)

	// session cookie mirrors the token
	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	cookie := cookies[0]
	assert.Equal(t, SessionCookieName, cookie.Name)
	assert.Equal(t, resp.Token, cookie.Value)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, http.SameSiteStrictMode, cookie.SameSite)
	assert.Equal(t, int(SessionTTL.Seconds()), cookie.MaxAge)
}

func TestHandleLogin_FormEncoded(t *testing.T) {
	setup := setupAuthHandlerForTests(t, DefaultLoginMaxAttempts)

	form := url.Values{}
	form.Set("username", "marko")
	form.Set("password", testLoginPassword)
	req := httptest.NewRequest(http.MethodPost, "/api/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	w := httptest.NewRecorder()
	setup.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestHandleLogin_WrongCredentials(t *testing.T) {
	setup := setupAuthHandlerForTests(t, DefaultLoginMaxAttempts)

	// unknown user
	w1 := httptest.NewRecorder()
	setup.router.ServeHTTP(w1, loginReqJson(t, "who-is-this", testLoginPassword))
	assert.Equal(t, http.StatusUnauthorized, w1.Code)

	// known user, wrong password
	w2 := httptest.NewRecorder()
	setup.router.ServeHTTP(w2, loginReqJson(t, "marko", "not-the-password"))
	assert.Equal(t, http.StatusUnauthorized, w2.Code)

	// enumeration resistance: both failures are byte-identical
	assert.Equal(t, w1.Body.String(), w2.Body.String())
}

func TestHandleLogin_MissingFields(t *testing.T) {
	setup := setupAuthHandlerForTests(t, DefaultLoginMaxAttempts)

	w := httptest.NewRecorder()
	setup.router.ServeHTTP(w, loginReqJson(t, "", testLoginPassword))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = httptest.NewRecorder()
	setup.router.ServeHTTP(w, loginReqJson(t, "marko", ""))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleLogin_RateLimited(t *testing.T) {
	setup := setupAuthHandlerForTests(t, 10)

	// 10 failed attempts from the same client still come back as 401
	for i := 0; i < 10; i++ {
		w := httptest.NewRecorder()
		req := loginReqJson(t, "marko", "wrong-password")
		req.Header.Set("X-Forwarded-For", "203.0.113.50")
		setup.router.ServeHTTP(w, req)
		require.Equal(t, http.StatusUnauthorized, w.Code, "attempt %d", i+1)
	}

	// the 11th is rate limited, even with correct credentials
	w := httptest.NewRecorder()
	req := loginReqJson(t, "marko", testLoginPassword)
	req.Header.Set("X-Forwarded-For", "203.0.113.50")
	setup.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)

	// a different client is unaffected
	w = httptest.NewRecorder()
	req = loginReqJson(t, "marko", testLoginPassword)
	req.Header.Set("X-Forwarded-For", "198.51.100.7")
	setup.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestHandleLogin_StoreUnavailable(t *testing.T) {
	setup := setupAuthHandlerForTests(t, DefaultLoginMaxAttempts)
	setup.store.LoadErr = ErrStoreUnavailable

	w := httptest.NewRecorder()
	setup.router.ServeHTTP(w, loginReqJson(t, "marko", testLoginPassword))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestHandleGetUsers_NoToken(t *testing.T) {
	setup := setupAuthHandlerForTests(t, DefaultLoginMaxAttempts)

	req := httptest.NewRequest(http.MethodGet, "/api/users", nil)
	w := httptest.NewRecorder()
	setup.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

// TestHandleGetUsers_AuthenticatedNonAdmin_Allowed pins the asymmetry:
// get-users checks authentication only, NOT role. Even a non-admin
// identity can read the full collection, hashes included.
func TestHandleGetUsers_AuthenticatedNonAdmin_Allowed(t *testing.T) {
	setup := setupAuthHandlerForTests(t, DefaultLoginMaxAttempts)

	claims := &Claims{
		UserID:   setup.viewerUser.ID,
		Username: setup.viewerUser.Username,
		Role:     RoleOther,
	}
	req := httptest.NewRequest(http.MethodGet, "/api/users", nil)
	req = req.WithContext(ContextWithClaims(req.Context(), claims))

	w := httptest.NewRecorder()
	setup.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var users []UserRecord
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &users))
	require.Len(t, users, 2)
	for _, u := range users {
		assert.NotEmpty(t, u.PasswordHash)
	}
}

func TestHandleGetUsers_StoreUnavailable(t *testing.T) {
	setup := setupAuthHandlerForTests(t, DefaultLoginMaxAttempts)
	setup.store.LoadErr = ErrStoreUnavailable

	claims := &Claims{UserID: 1, Username: "marko", Role: RoleAdmin}
	req := httptest.NewRequest(http.MethodGet, "/api/users", nil)
	req = req.WithContext(ContextWithClaims(req.Context(), claims))

	w := httptest.NewRecorder()
	setup.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestHandleLogout(t *testing.T) {
	setup := setupAuthHandlerForTests(t, DefaultLoginMaxAttempts)

	req := httptest.NewRequest(http.MethodGet, "/api/logout", nil)
	w := httptest.NewRecorder()
	setup.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, SessionCookieName, cookies[0].Name)
	assert.Empty(t, cookies[0].Value)
	assert.Equal(t, -1, cookies[0].MaxAge)
}
