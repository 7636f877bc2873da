package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/upfeed/upfeed/internal/constants"
	"github.com/upfeed/upfeed/internal/dto"
	"github.com/upfeed/upfeed/internal/middleware"
	"github.com/upfeed/upfeed/internal/models"
	"github.com/upfeed/upfeed/internal/repository"
	"github.com/upfeed/upfeed/internal/services"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// fakeTokenRepo is an in-memory ResetTokenRepository for tests.
type fakeTokenRepo struct {
	tokens map[string]uint64
}

func newFakeTokenRepo() *fakeTokenRepo {
	return &fakeTokenRepo{tokens: make(map[string]uint64)}
}

func (f *fakeTokenRepo) Store(token string, userID uint64) error {
	f.tokens[token] = userID
	return nil
}

func (f *fakeTokenRepo) Lookup(token string) (uint64, bool, error) {
	userID, ok := f.tokens[token]
	return userID, ok, nil
}

func (f *fakeTokenRepo) Delete(token string) error {
	delete(f.tokens, token)
	return nil
}

// fakeMailer records reset emails instead of talking to SMTP.
type fakeMailer struct {
	sentTo    []string
	sentLinks []string
}

func (f *fakeMailer) SendPasswordResetEmail(to, resetLink string) {
	f.sentTo = append(f.sentTo, to)
	f.sentLinks = append(f.sentLinks, resetLink)
}

type authTestEnv struct {
	db          *gorm.DB
	handler     *AuthHandler
	authService *services.AuthService
	tokenRepo   *fakeTokenRepo
	mailer      *fakeMailer
}

func setupAuthTestEnv(t *testing.T) authTestEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.User{},
		&models.Post{},
		&models.Vote{},
	)
	require.NoError(t, err)

	userRepo := repository.NewUserRepository(db)
	tokenRepo := newFakeTokenRepo()
	mailer := &fakeMailer{}
	authService := services.NewAuthService(userRepo, tokenRepo, mailer, "http://localhost:3000")
	handler := NewAuthHandler(authService)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	return authTestEnv{
		db:          db,
		handler:     handler,
		authService: authService,
		tokenRepo:   tokenRepo,
		mailer:      mailer,
	}
}

func newAuthRouter(env authTestEnv) *gin.Engine {
	r := gin.New()
	store := cookie.NewStore([]byte("secret"))
	r.Use(sessions.Sessions(constants.SessionCookieName, store))
	r.Use(middleware.LoadUser())
	r.POST("/api/auth/register", env.handler.Register)
	r.POST("/api/auth/login", env.handler.Login)
	r.POST("/api/auth/logout", env.handler.Logout)
	r.POST("/api/auth/forgot-password", env.handler.ForgotPassword)
	r.POST("/api/auth/change-password", env.handler.ChangePassword)
	r.GET("/api/auth/me", env.handler.Me)
	return r
}

func postJSON(t *testing.T, r *gin.Engine, url string, payload interface{}, cookies []*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, url, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeUserResponse(t *testing.T, w *httptest.ResponseRecorder) dto.UserResponse {
	t.Helper()
	var resp dto.UserResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestAuthHandler_Register(t *testing.T) {
	env := setupAuthTestEnv(t)
	r := newAuthRouter(env)

	w := postJSON(t, r, "/api/auth/register", map[string]string{
		"username": "newuser",
		"email":    "newuser@example.com",
		"password": "supersecret",
	}, nil)

	require.Equal(t, http.StatusOK, w.Code)

	resp := decodeUserResponse(t, w)
	require.Empty(t, resp.Errors)
	require.NotNil(t, resp.User)
	require.Equal(t, "newuser", resp.User.Username)

	// The session is established immediately
	require.NotEmpty(t, w.Result().Cookies(), "expected session cookie to be set")

	var count int64
	env.db.Model(&models.User{}).Count(&count)
	require.EqualValues(t, 1, count)
}

func TestAuthHandler_Register_Validation(t *testing.T) {
	env := setupAuthTestEnv(t)
	r := newAuthRouter(env)

	tests := []struct {
		name    string
		payload map[string]string
		field   string
	}{
		{
			name:    "short username",
			payload: map[string]string{"username": "ab", "email": "a@b.com", "password": "supersecret"},
			field:   "username",
		},
		{
			name:    "username with at sign",
			payload: map[string]string{"username": "not@ok", "email": "a@b.com", "password": "supersecret"},
			field:   "username",
		},
		{
			name:    "bad email",
			payload: map[string]string{"username": "validname", "email": "nope", "password": "supersecret"},
			field:   "email",
		},
		{
			name:    "short password",
			payload: map[string]string{"username": "validname", "email": "a@b.com", "password": "abc"},
			field:   "password",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postJSON(t, r, "/api/auth/register", tt.payload, nil)
			require.Equal(t, http.StatusOK, w.Code)

			resp := decodeUserResponse(t, w)
			require.Nil(t, resp.User)
			require.NotEmpty(t, resp.Errors)
			require.Equal(t, tt.field, resp.Errors[0].Field)
		})
	}

	var count int64
	env.db.Model(&models.User{}).Count(&count)
	require.EqualValues(t, 0, count)
}

func TestAuthHandler_Register_Duplicate(t *testing.T) {
	env := setupAuthTestEnv(t)
	r := newAuthRouter(env)

	w := postJSON(t, r, "/api/auth/register", map[string]string{
		"username": "taken",
		"email":    "taken@example.com",
		"password": "supersecret",
	}, nil)
	require.Equal(t, http.StatusOK, w.Code)

	// Same username, different email
	w = postJSON(t, r, "/api/auth/register", map[string]string{
		"username": "taken",
		"email":    "other@example.com",
		"password": "supersecret",
	}, nil)
	resp := decodeUserResponse(t, w)
	require.Nil(t, resp.User)
	require.NotEmpty(t, resp.Errors)
	require.Equal(t, "username", resp.Errors[0].Field)

	// Same email, different username
	w = postJSON(t, r, "/api/auth/register", map[string]string{
		"username": "someoneelse",
		"email":    "taken@example.com",
		"password": "supersecret",
	}, nil)
	resp = decodeUserResponse(t, w)
	require.Nil(t, resp.User)
	require.NotEmpty(t, resp.Errors)
	require.Equal(t, "email", resp.Errors[0].Field)

	var count int64
	env.db.Model(&models.User{}).Count(&count)
	require.EqualValues(t, 1, count)
}

func TestAuthHandler_Login(t *testing.T) {
	env := setupAuthTestEnv(t)
	r := newAuthRouter(env)

	_, fieldErrs, err := env.authService.Register(services.RegisterInput{
		Username: "existing",
		Email:    "existing@example.com",
		Password: "supersecret",
	})
	require.NoError(t, err)
	require.Empty(t, fieldErrs)

	// By username
	w := postJSON(t, r, "/api/auth/login", map[string]string{
		"usernameOrEmail": "existing",
		"password":        "supersecret",
	}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	resp := decodeUserResponse(t, w)
	require.NotNil(t, resp.User)
	require.Equal(t, "existing", resp.User.Username)
	require.NotEmpty(t, w.Result().Cookies(), "expected session cookie to be set")

	// By email
	w = postJSON(t, r, "/api/auth/login", map[string]string{
		"usernameOrEmail": "existing@example.com",
		"password":        "supersecret",
	}, nil)
	resp = decodeUserResponse(t, w)
	require.NotNil(t, resp.User)

	// Unknown account
	w = postJSON(t, r, "/api/auth/login", map[string]string{
		"usernameOrEmail": "nobody",
		"password":        "supersecret",
	}, nil)
	resp = decodeUserResponse(t, w)
	require.Nil(t, resp.User)
	require.Equal(t, "usernameOrEmail", resp.Errors[0].Field)

	// Wrong password
	w = postJSON(t, r, "/api/auth/login", map[string]string{
		"usernameOrEmail": "existing",
		"password":        "wrongwrong",
	}, nil)
	resp = decodeUserResponse(t, w)
	require.Nil(t, resp.User)
	require.Equal(t, "password", resp.Errors[0].Field)
}

func TestAuthHandler_MeAndLogout(t *testing.T) {
	env := setupAuthTestEnv(t)
	r := newAuthRouter(env)

	// Unauthenticated: me resolves null
	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	resp := decodeUserResponse(t, w)
	require.Nil(t, resp.User)

	w = postJSON(t, r, "/api/auth/register", map[string]string{
		"username": "me-user",
		"email":    "me@example.com",
		"password": "supersecret",
	}, nil)
	cookies := w.Result().Cookies()

	// Authenticated: me resolves the registered user
	req = httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w2 := httptest.NewRecorder()
	r.ServeHTTP(w2, req)
	resp = decodeUserResponse(t, w2)
	require.NotNil(t, resp.User)
	require.Equal(t, "me-user", resp.User.Username)

	// Logout destroys the session
	w3 := postJSON(t, r, "/api/auth/logout", nil, cookies)
	require.Equal(t, http.StatusOK, w3.Code)
	var logoutResp map[string]bool
	require.NoError(t, json.Unmarshal(w3.Body.Bytes(), &logoutResp))
	require.True(t, logoutResp["success"])
}

func TestAuthHandler_ForgotPassword(t *testing.T) {
	env := setupAuthTestEnv(t)
	r := newAuthRouter(env)

	_, _, err := env.authService.Register(services.RegisterInput{
		Username: "forgetful",
		Email:    "forgetful@example.com",
		Password: "supersecret",
	})
	require.NoError(t, err)

	// Unknown email: still complete, nothing sent
	w := postJSON(t, r, "/api/auth/forgot-password", map[string]string{
		"email": "ghost@example.com",
	}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var resp map[string]bool
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.True(t, resp["complete"])
	require.Empty(t, env.mailer.sentTo)
	require.Empty(t, env.tokenRepo.tokens)

	// Known email: complete, token stored, mail sent
	w = postJSON(t, r, "/api/auth/forgot-password", map[string]string{
		"email": "forgetful@example.com",
	}, nil)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.True(t, resp["complete"])
	require.Equal(t, []string{"forgetful@example.com"}, env.mailer.sentTo)
	require.Len(t, env.tokenRepo.tokens, 1)
	for token := range env.tokenRepo.tokens {
		require.Contains(t, env.mailer.sentLinks[0], "/change-password/"+token)
	}
}

func TestAuthHandler_ChangePassword(t *testing.T) {
	env := setupAuthTestEnv(t)
	r := newAuthRouter(env)

	user, _, err := env.authService.Register(services.RegisterInput{
		Username: "resetme",
		Email:    "resetme@example.com",
		Password: "oldpassword",
	})
	require.NoError(t, err)

	require.NoError(t, env.tokenRepo.Store("valid-token", user.ID))

	// Unknown token
	w := postJSON(t, r, "/api/auth/change-password", map[string]string{
		"token":       "bogus",
		"newPassword": "newpassword",
	}, nil)
	resp := decodeUserResponse(t, w)
	require.Nil(t, resp.User)
	require.Equal(t, "token", resp.Errors[0].Field)

	// Short new password leaves the hash untouched
	w = postJSON(t, r, "/api/auth/change-password", map[string]string{
		"token":       "valid-token",
		"newPassword": "abc",
	}, nil)
	resp = decodeUserResponse(t, w)
	require.Nil(t, resp.User)
	require.Equal(t, "newPassword", resp.Errors[0].Field)
	_, fieldErrs, err := env.authService.Login(services.LoginInput{
		UsernameOrEmail: "resetme",
		Password:        "oldpassword",
	})
	require.NoError(t, err)
	require.Empty(t, fieldErrs)

	// Valid token: password changes, caller is logged in
	w = postJSON(t, r, "/api/auth/change-password", map[string]string{
		"token":       "valid-token",
		"newPassword": "newpassword",
	}, nil)
	resp = decodeUserResponse(t, w)
	require.NotNil(t, resp.User)
	require.NotEmpty(t, w.Result().Cookies(), "expected session cookie to be set")

	_, fieldErrs, err = env.authService.Login(services.LoginInput{
		UsernameOrEmail: "resetme",
		Password:        "newpassword",
	})
	require.NoError(t, err)
	require.Empty(t, fieldErrs)

	// Token is single-use
	w = postJSON(t, r, "/api/auth/change-password", map[string]string{
		"token":       "valid-token",
		"newPassword": "anotherpassword",
	}, nil)
	resp = decodeUserResponse(t, w)
	require.Nil(t, resp.User)
	require.Equal(t, "token", resp.Errors[0].Field)
}
