package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/prepnexus/prepnexus-api/internal/config"
	"github.com/prepnexus/prepnexus-api/internal/database"
	"github.com/prepnexus/prepnexus-api/internal/handler"
	"github.com/prepnexus/prepnexus-api/internal/middleware"
	"github.com/prepnexus/prepnexus-api/internal/models"
	"github.com/prepnexus/prepnexus-api/internal/repository"
	"github.com/prepnexus/prepnexus-api/internal/router"
	"github.com/prepnexus/prepnexus-api/internal/service"
	"github.com/prepnexus/prepnexus-api/pkg/ai"
	cloud "github.com/prepnexus/prepnexus-api/pkg/cloudinary"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(
		&models.Student{},
		&models.AssessmentResult{},
		&models.Resume{},
		&models.Course{},
		&models.LearningPathItem{},
		&models.Message{},
		&models.PlacementRound{},
		&models.ShortlistedStudent{},
		&models.BatchUpload{},
	); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	redisClient, err := database.ConnectRedis(cfg.RedisURL)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()

	var natsConn *nats.Conn
	if cfg.NATSURL != "" {
		natsConn, err = nats.Connect(cfg.NATSURL, nats.Name(cfg.AppName))
		if err != nil {
			logger.Warn().Err(err).Msg("nats unavailable, cross-node fanout runs on redis only")
			natsConn = nil
		} else {
			defer natsConn.Drain()
		}
	}

	gateway, err := ai.NewOpenAIGateway(ai.OpenAIConfig{
		APIKey:    cfg.AIGatewayAPIKey,
		BaseURL:   cfg.AIGatewayBaseURL,
		Model:     cfg.AIModel,
		MaxTokens: cfg.AIMaxTokens,
		Logger:    logger,
	})
	if err != nil {
		log.Fatalf("failed to create ai gateway: %v", err)
	}

	var uploader service.FileUploader
	if cfg.CloudinaryCloudName != "" {
		cloudService, err := cloud.New(cloud.Config{
			CloudName: cfg.CloudinaryCloudName,
			APIKey:    cfg.CloudinaryAPIKey,
			APISecret: cfg.CloudinaryAPISecret,
			Folder:    cfg.CloudinaryUploadFolder,
		}, logger)
		if err != nil {
			logger.Warn().Err(err).Msg("cloudinary unavailable, resume files will not be stored")
		} else {
			uploader = cloudService
		}
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	studentRepo := repository.NewStudentRepository(db)
	assessmentRepo := repository.NewAssessmentRepository(db)
	resumeRepo := repository.NewResumeRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	pathRepo := repository.NewLearningPathRepository(db)
	messageRepo := repository.NewMessageRepository(db)
	placementRepo := repository.NewPlacementRepository(db)

	attemptStore := service.NewRedisAttemptStore(redisClient, cfg.AttemptTTL)
	questionService := service.NewQuestionService(gateway, logger)
	verificationService := service.NewVerificationService(gateway, logger)
	predictionService := service.NewPredictionService(gateway, logger)
	assessmentService := service.NewAssessmentService(
		questionService,
		verificationService,
		predictionService,
		attemptStore,
		studentRepo,
		assessmentRepo,
		validate,
		logger,
		cfg.QuestionsPerAssessment,
		cfg.AttemptTTL,
	)
	authService := service.NewAuthService(studentRepo, validate, logger, cfg.JWTSecret, cfg.SessionTTL)
	resumeService := service.NewResumeService(resumeRepo, uploader, gateway, validate, logger)
	pathService := service.NewLearningPathService(pathRepo, courseRepo, assessmentRepo, gateway, logger)
	messageService := service.NewMessageService(messageRepo, redisClient, cfg.RealtimeChannelBase, natsConn, validate, logger)
	analyticsService := service.NewAnalyticsService(studentRepo, assessmentRepo, redisClient, cfg.AnalyticsCacheTTL, logger)
	placementService := service.NewPlacementService(placementRepo, studentRepo, messageService, validate, logger)
	chatService := service.NewCareerChatService(gateway, assessmentService, resumeService, validate, logger)
	seedService := service.NewSeedService(courseRepo, logger)

	bootCtx, cancelBoot := context.WithTimeout(context.Background(), 30*time.Second)
	if err := seedService.SeedCourses(bootCtx); err != nil {
		logger.Warn().Err(err).Msg("course catalog seeding failed")
	}
	cancelBoot()

	consumerCtx, stopConsumers := context.WithCancel(context.Background())
	defer stopConsumers()
	messageService.Start(consumerCtx)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		AuthHandler:         handler.NewAuthHandler(authService, logger),
		AssessmentHandler:   handler.NewAssessmentHandler(assessmentService, logger),
		ResumeHandler:       handler.NewResumeHandler(resumeService, logger),
		LearningPathHandler: handler.NewLearningPathHandler(pathService, logger),
		MessageHandler:      handler.NewMessageHandler(messageService, logger),
		AnalyticsHandler:    handler.NewAnalyticsHandler(analyticsService, logger),
		PlacementHandler:    handler.NewPlacementHandler(placementService, logger),
		CareerChatHandler:   handler.NewCareerChatHandler(chatService, logger),
		JWTMiddleware:       middleware.JWTProtected(cfg.JWTSecret),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app)
}

func waitForShutdown(app *fiber.App) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
