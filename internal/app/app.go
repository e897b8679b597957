package app

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/nikkilog/nikki/internal/config"
	"github.com/nikkilog/nikki/internal/db"
	"github.com/nikkilog/nikki/internal/repository"
	"github.com/nikkilog/nikki/internal/service"
)

type App struct {
	Cfg             *config.Config
	DB              *sqlx.DB
	AuthService     *service.AuthService
	UserService     *service.UserService
	ArticleService  *service.ArticleService
	CommentService  *service.CommentService
	CategoryService *service.CategoryService
	EmailService    *service.EmailService
	ContentService  *service.ContentService
}

func New(cfg *config.Config) (*App, error) {
	database, err := db.Init(cfg.DBDriver, cfg.DBConnection)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %v", err)
	}

	err = db.RunMigrations(database.DB, cfg.DBDriver)
	if err != nil {
		return nil, fmt.Errorf("failed to run migrations: %v", err)
	}

	// Repositories
	userRepository := repository.NewUserRepository(database)
	categoryRepository := repository.NewCategoryRepository(database)
	articleRepository := repository.NewArticleRepository(database)
	commentRepository := repository.NewCommentRepository(database)

	// Services
	emailService := service.NewEmailService(service.EmailConfig{
		APIKey:       cfg.ResendAPIKey,
		FromEmail:    cfg.EmailFrom,
		SupportEmail: cfg.SupportEmail,
		AppURL:       cfg.AppURL,
		AppName:      cfg.AppName,
		IsDev:        cfg.IsDevelopment(),
	})
	authService := service.NewAuthService(
		userRepository,
		emailService,
		cfg.JWTSecret,
		cfg.JWTExpiry,
		cfg.IsProduction(),
	)
	userService := service.NewUserService(userRepository)
	articleService := service.NewArticleService(articleRepository, categoryRepository, commentRepository, userRepository)
	commentService := service.NewCommentService(commentRepository, articleRepository)
	categoryService := service.NewCategoryService(categoryRepository)

	contentService := service.NewContentService(cfg.ContentPath)
	err = contentService.LoadPages()
	if err != nil {
		return nil, fmt.Errorf("failed to load content pages: %v", err)
	}

	return &App{
		Cfg:             cfg,
		DB:              database,
		AuthService:     authService,
		UserService:     userService,
		ArticleService:  articleService,
		CommentService:  commentService,
		CategoryService: categoryService,
		EmailService:    emailService,
		ContentService:  contentService,
	}, nil
}

func (a *App) Close() error {
	if a.DB != nil {
		return a.DB.Close()
	}
	return nil
}
