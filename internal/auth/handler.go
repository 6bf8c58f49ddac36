package auth

import (
	"encoding/json"
	"net/http"

	"github.com/TretaGroup/tretaweb/internal/instrumentation"
	"github.com/TretaGroup/tretaweb/internal/telemetry/tracing"
	"github.com/TretaGroup/tretaweb/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/codes"
)

// SessionCookieName is the cookie carrying the session token for browser clients.
const SessionCookieName = "treta_session"

type Handler struct {
	store        UserStore
	tokenService *TokenService
	limiter      Limiter
	instr        *instrumentation.Instrumentation
	cookieSecure bool
}

func NewHandler(
	store UserStore,
	tokenService *TokenService,
	limiter Limiter,
	instr *instrumentation.Instrumentation,
	cookieSecure bool,
) *Handler {
	return &Handler{
		store:        store,
		tokenService: tokenService,
		limiter:      limiter,
		instr:        instr,
		cookieSecure: cookieSecure,
	}
}

func (handler *Handler) SetupRoutes(mainRouter *mux.Router) {
	apiRouter := mainRouter.PathPrefix("/api").Subrouter()
	apiRouter.HandleFunc("/login", handler.handleLogin).Methods("POST", "OPTIONS").Name("login")
	apiRouter.HandleFunc("/logout", handler.handleLogout).Methods("GET", "OPTIONS").Name("logout")
	apiRouter.HandleFunc("/users", handler.handleGetUsers).Methods("GET", "OPTIONS").Name("get-users")
}

type loginResponse struct {
	Success bool        `json:"success"`
	User    userSummary `json:"user"`
	Token   string      `json:"token"`
}

type userSummary struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
	Role     Role   `json:"role"`
}

func (handler *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	_, span := tracing.GlobalTracer.Start(r.Context(), "authHandler.login")
	defer span.End()

	if r.Method == http.MethodOptions {
		w.Header().Add("Allow", "POST, OPTIONS")
		w.WriteHeader(http.StatusOK)
		return
	}

	// rate limit first, independently of credential correctness
	clientKey := pkg.ClientKey(r)
	if !handler.limiter.Admit(clientKey) {
		log.Tracef("[rate limited] login attempt from: %s", clientKey)
		handler.instr.CounterRateLimitedLogins.Inc()
		span.SetStatus(codes.Error, "rate-limited")
		http.Error(w, "too many login attempts, try again later", http.StatusTooManyRequests)
		return
	}

	type loginRequest struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}

	var loginReq loginRequest
	if r.Header.Get("Content-Type") == "application/json" {
		if err := json.NewDecoder(r.Body).Decode(&loginReq); err != nil {
			log.Errorf("login, unmarshal json params: %s", err)
			http.Error(w, "login failed", http.StatusBadRequest)
			return
		}
	} else {
		if err := r.ParseForm(); err != nil {
			log.Errorf("login failed, parse form error: %s", err)
			http.Error(w, "parse form error", http.StatusInternalServerError)
			return
		}
		loginReq = loginRequest{
			Username: r.Form.Get("username"),
			Password: r.Form.Get("password"),
		}
	}

	if loginReq.Username == "" {
		http.Error(w, "error, username empty", http.StatusBadRequest)
		return
	}
	if loginReq.Password == "" {
		http.Error(w, "error, password empty", http.StatusBadRequest)
		return
	}

	user, found, err := handler.store.FindByUsername(r.Context(), loginReq.Username)
	if err != nil {
		log.Errorf("login failed, user store: %s", err)
		span.SetStatus(codes.Error, "store-unavailable")
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	// unknown user and wrong password must be indistinguishable
	if !found || !pkg.CheckPasswordHash(loginReq.Password, user.PasswordHash) {
		log.Tracef("failed login attempt for user: %s", loginReq.Username)
		handler.instr.CounterFailedLogins.Inc()
		span.SetStatus(codes.Error, "wrong-credentials")
		http.Error(w, "wrong credentials", http.StatusUnauthorized)
		return
	}

	token, err := handler.tokenService.Issue(user)
	if err != nil {
		log.Errorf("login failed, generate token error: %s", err)
		span.SetStatus(codes.Error, "token-issue-failed")
		http.Error(w, "generate token error", http.StatusInternalServerError)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(SessionTTL.Seconds()),
		HttpOnly: true,
		Secure:   handler.cookieSecure,
		SameSite: http.SameSiteStrictMode,
	})

	resp, err := json.Marshal(loginResponse{
		Success: true,
		User: userSummary{
			ID:       user.ID,
			Username: user.Username,
			Name:     user.Name,
			Role:     user.Role,
		},
		Token: token,
	})
	if err != nil {
		log.Errorf("login, marshal response: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	log.Tracef("new login success: %s", user.Username)
	span.SetStatus(codes.Ok, "ok")
	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, resp)
}

func (handler *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodOptions {
		w.Header().Add("Allow", "GET, OPTIONS")
		w.WriteHeader(http.StatusOK)
		return
	}

	// tokens are stateless, logout just clears the browser cookie
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   handler.cookieSecure,
		SameSite: http.SameSiteStrictMode,
	})

	pkg.WriteTextResponseOK(w, "logged-out")
}

// handleGetUsers returns the full user collection, password hashes included.
// It requires authentication but no particular role - any logged-in user can
// read it. Tightening it to EditorRoles is a one-line change here.
func (handler *Handler) handleGetUsers(w http.ResponseWriter, r *http.Request) {
	_, span := tracing.GlobalTracer.Start(r.Context(), "authHandler.getUsers")
	defer span.End()

	if r.Method == http.MethodOptions {
		w.Header().Add("Allow", "GET, OPTIONS")
		w.WriteHeader(http.StatusOK)
		return
	}

	if _, ok := ClaimsFromContext(r.Context()); !ok {
		span.SetStatus(codes.Error, "no-claims")
		http.Error(w, "no authentication token provided", http.StatusUnauthorized)
		return
	}

	users, err := handler.store.LoadUsers(r.Context())
	if err != nil {
		log.Errorf("get users failed: %s", err)
		span.SetStatus(codes.Error, "store-unavailable")
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	usersJson, err := json.Marshal(users)
	if err != nil {
		log.Errorf("get users, marshal response: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	span.SetStatus(codes.Ok, "ok")
	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, usersJson)
}
