package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"engunity-backend/internal/account"
	"engunity-backend/internal/assist"
	googleauth "engunity-backend/internal/auth"
	"engunity-backend/internal/backend"
	"engunity-backend/internal/chat"
	"engunity-backend/internal/documents"
	"engunity-backend/internal/insights"
	"engunity-backend/internal/notifications"
	"engunity-backend/internal/projects"
	"engunity-backend/internal/queue"
	"engunity-backend/internal/settings"
	"engunity-backend/internal/shared/config"
	"engunity-backend/internal/shared/server"
	"engunity-backend/internal/shared/storage/db"
	"engunity-backend/internal/shared/storage/mongodb"
	"engunity-backend/internal/shared/storage/object"
	localstore "engunity-backend/internal/shared/storage/object/local"
	s3store "engunity-backend/internal/shared/storage/object/s3"
	"engunity-backend/internal/users"
)

// App holds shared dependencies for the API server and the queue worker.
type App struct {
	Config config.Config
	Router *gin.Engine

	DB    *sql.DB
	Mongo *mongo.Client
	Store object.ObjectStore
	Queue queue.Client

	Backend *backend.Client

	Documents     *documents.Service
	Chats         *chat.Service
	Notifications *notifications.Service
	Settings      *settings.Service
	Projects      *projects.Service
	Users         *users.Service
	Account       *account.Service

	DocumentsHandler     *documents.Handler
	ChatHandler          *chat.Handler
	NotificationsHandler *notifications.Handler
	SettingsHandler      *settings.Handler
	ProjectsHandler      *projects.Handler
	AssistHandler        *assist.Handler
	InsightsHandler      *insights.Handler
	AccountHandler       *account.Handler
	UsersHandler         *users.Handler
	GoogleAuth           *googleauth.GoogleService
}

// Build prepares shared dependencies and the router.
func Build(cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if strings.TrimSpace(cfg.ObjectStoreType) == "" {
		cfg.ObjectStoreType = "local"
	}
	ctx := context.Background()

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	mongoClient, err := buildMongo(ctx, cfg)
	if err != nil {
		return nil, err
	}

	store, err := buildStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	queueClient, err := buildQueue(ctx)
	if err != nil {
		return nil, err
	}

	app := &App{
		Config: cfg,
		DB:     sqlDB,
		Mongo:  mongoClient,
		Store:  store,
		Queue:  queueClient,
	}

	if err := buildServices(ctx, app); err != nil {
		return nil, err
	}

	app.Router = server.NewRouter(server.RouterDeps{
		Config:               app.Config,
		DocumentsHandler:     app.DocumentsHandler,
		ChatHandler:          app.ChatHandler,
		NotificationsHandler: app.NotificationsHandler,
		SettingsHandler:      app.SettingsHandler,
		ProjectsHandler:      app.ProjectsHandler,
		AssistHandler:        app.AssistHandler,
		InsightsHandler:      app.InsightsHandler,
		AccountHandler:       app.AccountHandler,
		UsersHandler:         app.UsersHandler,
		GoogleAuth:           app.GoogleAuth,
	})

	return app, nil
}

// Close releases database and Mongo connections.
func (a *App) Close() {
	if a == nil {
		return
	}
	if a.DB != nil {
		_ = a.DB.Close()
	}
	if a.Mongo != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = a.Mongo.Disconnect(ctx)
	}
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: DATABASE_URL empty; legacy document store disabled")
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	opts := db.OptionsFromEnv(db.DefaultServerOptions())
	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, opts)
	if err != nil {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: database connect failed; legacy document store disabled: %v", err)
			return nil, nil
		}
		return nil, err
	}

	if err := db.RunMigrations(ctx, sqlDB); err != nil {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: migrations failed; legacy document store disabled: %v", err)
			_ = sqlDB.Close()
			return nil, nil
		}
		return nil, err
	}

	return sqlDB, nil
}

func buildMongo(ctx context.Context, cfg config.Config) (*mongo.Client, error) {
	if strings.TrimSpace(cfg.MongoURI) == "" {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: MONGODB_URI empty; using in-memory repositories")
			return nil, nil
		}
		return nil, fmt.Errorf("MONGODB_URI is required")
	}

	client, err := mongodb.Connect(ctx, cfg.MongoURI)
	if err != nil {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: mongo connect failed; using in-memory repositories: %v", err)
			return nil, nil
		}
		return nil, err
	}
	return client, nil
}

func buildStore(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID)
	default:
		return localstore.New(cfg.LocalStoreDir), nil
	}
}

func buildQueue(ctx context.Context) (queue.Client, error) {
	if strings.TrimSpace(os.Getenv("ENG_SQS_QUEUE_URL")) == "" {
		return nil, nil
	}
	return queue.NewSQSClient(ctx)
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}

func buildServices(ctx context.Context, app *App) error {
	var (
		docPrimary   documents.Repo
		docLegacy    documents.Repo
		chatRepo     chat.Repo
		notifRepo    notifications.Repo
		projectRepo  projects.Repo
		settingStore settings.Store
		userRepo     users.Repo
	)

	if app.Mongo != nil {
		mdb := app.Mongo.Database(app.Config.MongoDatabase)
		docMongo := documents.NewMongoRepo(mdb)
		chatMongo := chat.NewMongoRepo(mdb)
		notifMongo := notifications.NewMongoRepo(mdb)
		projectMongo := projects.NewMongoRepo(mdb)

		// Index creation is best effort; queries still work without them.
		idxCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		for name, ensure := range map[string]func(context.Context) error{
			"documents":     docMongo.EnsureIndexes,
			"chat":          chatMongo.EnsureIndexes,
			"notifications": notifMongo.EnsureIndexes,
			"projects":      projectMongo.EnsureIndexes,
		} {
			if err := ensure(idxCtx); err != nil {
				log.Printf("bootstrap: ensure %s indexes: %v", name, err)
			}
		}

		docPrimary = docMongo
		chatRepo = chatMongo
		notifRepo = notifMongo
		projectRepo = projectMongo
		settingStore = settings.NewMongoStore(mdb)
	} else {
		docPrimary = documents.NewMemoryRepo()
		chatRepo = chat.NewMemoryRepo()
		notifRepo = notifications.NewMemoryRepo()
		projectRepo = projects.NewMemoryRepo()
		settingStore = settings.NewMemoryStore()
	}

	if app.DB != nil {
		docLegacy = &documents.PGRepo{DB: app.DB}
		userRepo = &users.PGRepo{DB: app.DB}
	} else {
		userRepo = users.NewMemoryRepo()
	}

	backendClient := backend.NewClient(app.Config.BackendURL)

	chatSvc := &chat.Service{
		Repo:      chatRepo,
		Responder: backendClient,
	}

	docSvc := &documents.Service{
		Primary:         docPrimary,
		Legacy:          docLegacy,
		Store:           app.Store,
		StorageProvider: app.Config.ObjectStoreType,
		Chats:           chatSvc,
		Summarizer:      backendClient,
		JobQueue:        app.Queue,
	}
	chatSvc.Documents = docSvc

	notifSvc := notifications.NewService(notifRepo)
	settingsSvc := &settings.Service{
		Store:   settingStore,
		Emitter: settings.NewEmitter(),
	}
	projectSvc := projects.NewService(projectRepo)
	userSvc := users.NewService(userRepo)

	accountSvc := &account.Service{
		Documents:     docSvc,
		Chats:         chatSvc,
		Notifications: notifSvc,
		Settings:      settingsSvc,
		Projects:      projectSvc,
		Users:         userSvc,
	}

	googleAuthSvc := googleauth.NewGoogleService(
		app.Config.GoogleClientID,
		app.Config.GoogleClientSecret,
		app.Config.GoogleRedirectURL,
		app.Config.UIRedirectURL,
		userSvc,
	)

	app.Backend = backendClient
	app.Documents = docSvc
	app.Chats = chatSvc
	app.Notifications = notifSvc
	app.Settings = settingsSvc
	app.Projects = projectSvc
	app.Users = userSvc
	app.Account = accountSvc

	app.DocumentsHandler = documents.NewHandler(docSvc)
	app.ChatHandler = chat.NewHandler(chatSvc)
	app.NotificationsHandler = notifications.NewHandler(notifSvc)
	app.SettingsHandler = settings.NewHandler(settingsSvc)
	app.ProjectsHandler = projects.NewHandler(projectSvc)
	app.AssistHandler = assist.NewHandler(backendClient)
	app.InsightsHandler = insights.NewHandler()
	app.AccountHandler = account.NewHandler(accountSvc)
	app.UsersHandler = users.NewHandler(userSvc)
	app.GoogleAuth = googleAuthSvc

	return nil
}
