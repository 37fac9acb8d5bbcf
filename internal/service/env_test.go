package service_test

import (
	"testing"
	"time"

	"github.com/Baaaki/yamdb/internal/models"
	"github.com/Baaaki/yamdb/internal/repository"
	"github.com/Baaaki/yamdb/internal/service"
	"github.com/Baaaki/yamdb/internal/testutil"
	"gorm.io/gorm"
)

const testJWTSecret = "test-secret-key"

// env wires every service against a fresh in-memory database.
type env struct {
	db     *gorm.DB
	mailer *testutil.RecordingMailer

	users    *repository.UserRepository
	comments *repository.CommentRepository

	auth     *service.AuthService
	userSvc  *service.UserService
	catalog  *service.CatalogService
	titles   *service.TitleService
	reviews  *service.ReviewService
	commentS *service.CommentService

	admin     *models.User
	moderator *models.User
	alice     *models.User
	bob       *models.User
}

func newEnv(t *testing.T) *env {
	t.Helper()

	db := testutil.SetupTestDatabase(t).DB
	mailer := &testutil.RecordingMailer{}

	userRepo := repository.NewUserRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	genreRepo := repository.NewGenreRepository(db)
	titleRepo := repository.NewTitleRepository(db)
	reviewRepo := repository.NewReviewRepository(db)
	commentRepo := repository.NewCommentRepository(db)

	return &env{
		db:       db,
		mailer:   mailer,
		users:    userRepo,
		comments: commentRepo,

		auth:     service.NewAuthService(userRepo, mailer, testJWTSecret, time.Hour, time.Hour),
		userSvc:  service.NewUserService(userRepo),
		catalog:  service.NewCatalogService(categoryRepo, genreRepo),
		titles:   service.NewTitleService(titleRepo, categoryRepo, genreRepo),
		reviews:  service.NewReviewService(reviewRepo, titleRepo),
		commentS: service.NewCommentService(commentRepo, reviewRepo),

		admin:     testutil.CreateUser(t, db, "admin", models.RoleAdmin),
		moderator: testutil.CreateUser(t, db, "moderator", models.RoleModerator),
		alice:     testutil.CreateUser(t, db, "alice", models.RoleUser),
		bob:       testutil.CreateUser(t, db, "bob", models.RoleUser),
	}
}

func strPtr(s string) *string { return &s }

func intPtr(i int) *int { return &i }
