package handler_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Baaaki/yamdb/internal/handler"
	"github.com/Baaaki/yamdb/internal/middleware"
	"github.com/Baaaki/yamdb/internal/models"
	"github.com/Baaaki/yamdb/internal/repository"
	"github.com/Baaaki/yamdb/internal/service"
	"github.com/Baaaki/yamdb/internal/testutil"
	"github.com/Baaaki/yamdb/internal/utils"
	"github.com/Baaaki/yamdb/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/gorm"
)

const testJWTSecret = "test-secret-key"

// APIIntegrationTestSuite drives the full router against in-memory SQLite.
type APIIntegrationTestSuite struct {
	suite.Suite
	db     *gorm.DB
	mailer *testutil.RecordingMailer
	router *gin.Engine

	admin *models.User
	alice *models.User
	bob   *models.User
}

// SetupTest gives every test a fresh database and router
func (s *APIIntegrationTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)

	s.db = testutil.SetupTestDatabase(s.T()).DB
	s.mailer = &testutil.RecordingMailer{}

	userRepo := repository.NewUserRepository(s.db)
	categoryRepo := repository.NewCategoryRepository(s.db)
	genreRepo := repository.NewGenreRepository(s.db)
	titleRepo := repository.NewTitleRepository(s.db)
	reviewRepo := repository.NewReviewRepository(s.db)
	commentRepo := repository.NewCommentRepository(s.db)

	services := handler.Services{
		Auth:     service.NewAuthService(userRepo, s.mailer, testJWTSecret, time.Hour, time.Hour),
		Users:    service.NewUserService(userRepo),
		Catalog:  service.NewCatalogService(categoryRepo, genreRepo),
		Titles:   service.NewTitleService(titleRepo, categoryRepo, genreRepo),
		Reviews:  service.NewReviewService(reviewRepo, titleRepo),
		Comments: service.NewCommentService(commentRepo, reviewRepo),
	}

	s.router = gin.New()
	limiter := middleware.NewLocalLimiter(middleware.RateLimiterConfig{MaxRequests: 100, Window: time.Minute})
	handler.RegisterRoutes(s.router, services, middleware.RateLimit(limiter))

	s.admin = testutil.CreateUser(s.T(), s.db, "admin", models.RoleAdmin)
	s.alice = testutil.CreateUser(s.T(), s.db, "alice", models.RoleUser)
	s.bob = testutil.CreateUser(s.T(), s.db, "bob", models.RoleUser)
}

func (s *APIIntegrationTestSuite) token(user *models.User) string {
	token, err := utils.GenerateToken(user, testJWTSecret, time.Hour)
	require.NoError(s.T(), err)
	return token
}

// do sends body as JSON; user may be nil for anonymous requests.
func (s *APIIntegrationTestSuite) do(method, path string, user *models.User, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.T(), json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if user != nil {
		req.Header.Set("Authorization", "Bearer "+s.token(user))
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func (s *APIIntegrationTestSuite) TestSignupAndTokenFlow() {
	w := s.do(http.MethodPost, "/api/v1/auth/signup", nil, map[string]string{
		"username": "carol",
		"email":    "carol@example.com",
	})
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	body := decode(s.T(), w)
	s.Equal("carol", body["username"])
	s.Equal("carol@example.com", body["email"])

	w = s.do(http.MethodPost, "/api/v1/auth/token", nil, map[string]string{
		"username":          "carol",
		"confirmation_code": "wrong",
	})
	s.Equal(http.StatusBadRequest, w.Code)
	s.Equal("invalid confirmation code", decode(s.T(), w)["error"])

	w = s.do(http.MethodPost, "/api/v1/auth/token", nil, map[string]string{
		"username":          "carol",
		"confirmation_code": s.mailer.LastCode(),
	})
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	token, _ := decode(s.T(), w)["token"].(string)
	s.NotEmpty(token)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	s.Equal(http.StatusOK, rec.Code)
	s.Equal("carol", decode(s.T(), rec)["username"])
}

func (s *APIIntegrationTestSuite) TestAuthEndpointsIgnoreStaleBearer() {
	expired, err := utils.GenerateToken(s.alice, testJWTSecret, -time.Minute)
	s.Require().NoError(err)

	post := func(path, authorization string, body map[string]string) *httptest.ResponseRecorder {
		var buf bytes.Buffer
		s.Require().NoError(json.NewEncoder(&buf).Encode(body))
		req := httptest.NewRequest(http.MethodPost, path, &buf)
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", authorization)
		w := httptest.NewRecorder()
		s.router.ServeHTTP(w, req)
		return w
	}

	w := post("/api/v1/auth/signup", "Bearer "+expired, map[string]string{
		"username": "carol",
		"email":    "carol@example.com",
	})
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	w = post("/api/v1/auth/token", "Bearer "+expired, map[string]string{
		"username":          "carol",
		"confirmation_code": s.mailer.LastCode(),
	})
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	s.NotEmpty(decode(s.T(), w)["token"])

	w = post("/api/v1/auth/signup", "garbage", map[string]string{
		"username": "carol",
		"email":    "carol@example.com",
	})
	s.Equal(http.StatusOK, w.Code, w.Body.String())

	// Everything else still rejects the stale token.
	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil)
	req.Header.Set("Authorization", "Bearer "+expired)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	s.Equal(http.StatusUnauthorized, rec.Code)
}

func (s *APIIntegrationTestSuite) TestSignupLogOmitsEmail() {
	core, logs := observer.New(zap.DebugLevel)
	previous := logger.Log
	logger.Log = zap.New(core)
	defer func() { logger.Log = previous }()

	w := s.do(http.MethodPost, "/api/v1/auth/signup", nil, map[string]string{
		"username": "carol",
		"email":    "carol@example.com",
	})
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	attempts := logs.FilterMessage("Signup attempt").All()
	s.Require().Len(attempts, 1)
	s.NotContains(attempts[0].ContextMap(), "email")
	s.Equal("carol", attempts[0].ContextMap()["username"])
}

func (s *APIIntegrationTestSuite) TestSignupErrors() {
	w := s.do(http.MethodPost, "/api/v1/auth/signup", nil, map[string]string{"username": "me", "email": "me@example.com"})
	s.Equal(http.StatusBadRequest, w.Code)

	w = s.do(http.MethodPost, "/api/v1/auth/signup", nil, map[string]string{"username": "alice", "email": "x@example.com"})
	s.Equal(http.StatusConflict, w.Code)

	w = s.do(http.MethodPost, "/api/v1/auth/signup", nil, map[string]string{"username": "carol"})
	s.Equal(http.StatusBadRequest, w.Code)

	s.mailer.Err = fmt.Errorf("smtp down")
	w = s.do(http.MethodPost, "/api/v1/auth/signup", nil, map[string]string{"username": "carol", "email": "carol@example.com"})
	s.Equal(http.StatusInternalServerError, w.Code)
}

func (s *APIIntegrationTestSuite) TestCatalogGates() {
	body := map[string]string{"name": "Books"}

	s.Equal(http.StatusUnauthorized, s.do(http.MethodPost, "/api/v1/categories", nil, body).Code)
	s.Equal(http.StatusForbidden, s.do(http.MethodPost, "/api/v1/categories", s.alice, body).Code)

	w := s.do(http.MethodPost, "/api/v1/categories", s.admin, body)
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	s.Equal("books", decode(s.T(), w)["slug"])

	s.Equal(http.StatusConflict, s.do(http.MethodPost, "/api/v1/categories", s.admin, body).Code)

	w = s.do(http.MethodGet, "/api/v1/categories", nil, nil)
	s.Require().Equal(http.StatusOK, w.Code)
	list := decode(s.T(), w)
	s.Equal(float64(1), list["count"])

	s.Equal(http.StatusForbidden, s.do(http.MethodPost, "/api/v1/genres", s.alice, body).Code)
	s.Equal(http.StatusForbidden, s.do(http.MethodDelete, "/api/v1/categories/books", s.alice, nil).Code)
	s.Equal(http.StatusUnauthorized, s.do(http.MethodPost, "/api/v1/titles", nil, map[string]interface{}{"name": "Dune", "year": 1965}).Code)
	s.Equal(http.StatusForbidden, s.do(http.MethodDelete, "/api/v1/titles/1", s.alice, nil).Code)
	s.Equal(http.StatusOK, s.do(http.MethodGet, "/api/v1/genres", nil, nil).Code)

	s.Equal(http.StatusNotFound, s.do(http.MethodDelete, "/api/v1/categories/films", s.admin, nil).Code)
	s.Equal(http.StatusNoContent, s.do(http.MethodDelete, "/api/v1/categories/books", s.admin, nil).Code)
}

func (s *APIIntegrationTestSuite) TestTitleLifecycle() {
	testutil.CreateCategory(s.T(), s.db, "Books", "books")
	testutil.CreateGenre(s.T(), s.db, "Sci-Fi", "sci-fi")

	w := s.do(http.MethodPost, "/api/v1/titles", s.admin, map[string]interface{}{
		"name":     "Dune",
		"year":     1965,
		"category": "books",
		"genre":    []string{"sci-fi"},
	})
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	created := decode(s.T(), w)
	s.Nil(created["rating"])
	s.Equal("books", created["category"].(map[string]interface{})["slug"])
	id := int(created["id"].(float64))

	w = s.do(http.MethodPost, "/api/v1/titles", s.admin, map[string]interface{}{
		"name": "Future",
		"year": time.Now().Year() + 1,
	})
	s.Equal(http.StatusBadRequest, w.Code)

	path := fmt.Sprintf("/api/v1/titles/%d", id)
	s.Equal(http.StatusForbidden, s.do(http.MethodPatch, path, s.alice, map[string]string{"name": "x"}).Code)

	w = s.do(http.MethodPatch, path, s.admin, map[string]interface{}{"name": "Dune (1965)", "category": ""})
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	s.Nil(decode(s.T(), w)["category"])

	w = s.do(http.MethodGet, "/api/v1/titles?genre=sci-fi", nil, nil)
	s.Require().Equal(http.StatusOK, w.Code)
	s.Equal(float64(1), decode(s.T(), w)["count"])

	s.Equal(http.StatusBadRequest, s.do(http.MethodGet, "/api/v1/titles?year=abc", nil, nil).Code)
	s.Equal(http.StatusNotFound, s.do(http.MethodGet, "/api/v1/titles/abc", nil, nil).Code)

	s.Equal(http.StatusNoContent, s.do(http.MethodDelete, path, s.admin, nil).Code)
	s.Equal(http.StatusNotFound, s.do(http.MethodGet, path, nil, nil).Code)
}

func (s *APIIntegrationTestSuite) TestReviewsAndRating() {
	title := testutil.CreateTitle(s.T(), s.db, "Dune", 1965, nil)
	reviews := fmt.Sprintf("/api/v1/titles/%d/reviews", title.ID)

	s.Equal(http.StatusUnauthorized, s.do(http.MethodPost, reviews, nil, map[string]interface{}{"text": "t", "score": 5}).Code)
	s.Equal(http.StatusNotFound, s.do(http.MethodPost, "/api/v1/titles/9999/reviews", nil, map[string]interface{}{"text": "t", "score": 5}).Code)
	s.Equal(http.StatusNotFound, s.do(http.MethodPost, "/api/v1/titles/9999/reviews", nil, map[string]interface{}{"text": "x"}).Code)
	s.Equal(http.StatusUnauthorized, s.do(http.MethodPost, reviews, nil, map[string]interface{}{"text": "x"}).Code)

	w := s.do(http.MethodPost, reviews, s.alice, map[string]interface{}{"text": "good", "score": 3})
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	review := decode(s.T(), w)
	s.Equal("alice", review["author"])
	reviewPath := fmt.Sprintf("%s/%d", reviews, int(review["id"].(float64)))

	s.Equal(http.StatusConflict, s.do(http.MethodPost, reviews, s.alice, map[string]interface{}{"text": "again", "score": 9}).Code)
	s.Equal(http.StatusCreated, s.do(http.MethodPost, reviews, s.bob, map[string]interface{}{"text": "ok", "score": 5}).Code)
	s.Equal(http.StatusCreated, s.do(http.MethodPost, reviews, s.admin, map[string]interface{}{"text": "wow", "score": 10}).Code)
	s.Equal(http.StatusBadRequest, s.do(http.MethodPost, reviews, s.admin, map[string]interface{}{"text": "no score"}).Code)

	w = s.do(http.MethodGet, fmt.Sprintf("/api/v1/titles/%d", title.ID), nil, nil)
	s.Require().Equal(http.StatusOK, w.Code)
	s.InDelta(6.0, decode(s.T(), w)["rating"].(float64), 1e-9)

	s.Equal(http.StatusForbidden, s.do(http.MethodPatch, reviewPath, s.bob, map[string]interface{}{"score": 1}).Code)
	s.Equal(http.StatusForbidden, s.do(http.MethodDelete, reviewPath, s.bob, nil).Code)

	w = s.do(http.MethodGet, reviewPath, nil, nil)
	s.Require().Equal(http.StatusOK, w.Code)
	s.Equal(float64(3), decode(s.T(), w)["score"])

	w = s.do(http.MethodPatch, reviewPath, s.alice, map[string]interface{}{"score": 4})
	s.Require().Equal(http.StatusOK, w.Code)
	s.Equal(float64(4), decode(s.T(), w)["score"])

	s.Equal(http.StatusNoContent, s.do(http.MethodDelete, reviewPath, s.admin, nil).Code)
}

func (s *APIIntegrationTestSuite) TestCommentsScopedByTitle() {
	a := testutil.CreateTitle(s.T(), s.db, "A", 2000, nil)
	b := testutil.CreateTitle(s.T(), s.db, "B", 2001, nil)
	review := testutil.CreateReview(s.T(), s.db, b, s.alice, 5)
	comment := testutil.CreateComment(s.T(), s.db, review, s.bob, "hi")

	wrong := fmt.Sprintf("/api/v1/titles/%d/reviews/%d/comments", a.ID, review.ID)
	right := fmt.Sprintf("/api/v1/titles/%d/reviews/%d/comments", b.ID, review.ID)

	s.Equal(http.StatusNotFound, s.do(http.MethodGet, wrong, nil, nil).Code)
	s.Equal(http.StatusNotFound, s.do(http.MethodGet, fmt.Sprintf("%s/%d", wrong, comment.ID), nil, nil).Code)
	s.Equal(http.StatusNotFound, s.do(http.MethodPost, wrong, s.bob, map[string]string{"text": "x"}).Code)

	w := s.do(http.MethodGet, right, nil, nil)
	s.Require().Equal(http.StatusOK, w.Code)
	s.Equal(float64(1), decode(s.T(), w)["count"])

	w = s.do(http.MethodPost, right, s.alice, map[string]string{"text": "reply"})
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	s.Equal("alice", decode(s.T(), w)["author"])

	s.Equal(http.StatusForbidden, s.do(http.MethodDelete, fmt.Sprintf("%s/%d", right, comment.ID), s.alice, nil).Code)
	s.Equal(http.StatusNoContent, s.do(http.MethodDelete, fmt.Sprintf("%s/%d", right, comment.ID), s.bob, nil).Code)
}

func (s *APIIntegrationTestSuite) TestUsersEndpoints() {
	s.Equal(http.StatusUnauthorized, s.do(http.MethodGet, "/api/v1/users", nil, nil).Code)
	s.Equal(http.StatusForbidden, s.do(http.MethodGet, "/api/v1/users", s.alice, nil).Code)

	w := s.do(http.MethodGet, "/api/v1/users?search=bo", s.admin, nil)
	s.Require().Equal(http.StatusOK, w.Code)
	s.Equal(float64(1), decode(s.T(), w)["count"])

	w = s.do(http.MethodPost, "/api/v1/users", s.admin, map[string]string{
		"username": "mod",
		"email":    "mod@example.com",
		"role":     "moderator",
	})
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	s.Equal("moderator", decode(s.T(), w)["role"])

	w = s.do(http.MethodPatch, "/api/v1/users/me", s.alice, map[string]string{"role": "admin", "bio": "hi"})
	s.Require().Equal(http.StatusOK, w.Code)
	me := decode(s.T(), w)
	s.Equal("user", me["role"])
	s.Equal("hi", me["bio"])

	w = s.do(http.MethodPatch, "/api/v1/users/alice", s.admin, map[string]string{"role": "moderator"})
	s.Require().Equal(http.StatusOK, w.Code)
	s.Equal("moderator", decode(s.T(), w)["role"])

	s.Equal(http.StatusNoContent, s.do(http.MethodDelete, "/api/v1/users/bob", s.admin, nil).Code)
	s.Equal(http.StatusNotFound, s.do(http.MethodGet, "/api/v1/users/bob", s.admin, nil).Code)
	s.Equal(http.StatusUnauthorized, s.do(http.MethodGet, "/api/v1/users/me", s.bob, nil).Code, "deleted user's token stops working")

	s.Equal(http.StatusUnauthorized, s.do(http.MethodGet, "/api/v1/users/me", nil, nil).Code)
}

func (s *APIIntegrationTestSuite) TestHealth() {
	w := s.do(http.MethodGet, "/health", nil, nil)
	assert.Equal(s.T(), http.StatusOK, w.Code)
}

func TestAPIIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(APIIntegrationTestSuite))
}
