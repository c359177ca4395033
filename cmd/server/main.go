package main

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	config "github.com/vk-0-7/media-poster/configs"
	"github.com/vk-0-7/media-poster/internal/api/handlers"
	"github.com/vk-0-7/media-poster/internal/api/middleware"
	"github.com/vk-0-7/media-poster/internal/jobs"
	"github.com/vk-0-7/media-poster/internal/queue"
	"github.com/vk-0-7/media-poster/internal/repository"
	"github.com/vk-0-7/media-poster/internal/service"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Failed to load environment variables", err)
	}

	cfg := config.LoadConfig()

	db, err := sql.Open("postgres", cfg.PostgresURI)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer closeDB(db)

	if err := db.Ping(); err != nil {
		log.Fatalf("Database is unreachable: %v", err)
	}

	redisConn := asynq.RedisClientOpt{Addr: cfg.RedisURI}
	client := asynq.NewClient(redisConn)
	defer client.Close()

	app := fiber.New(fiber.Config{
		ReadTimeout:  10 * time.Minute,
		WriteTimeout: 10 * time.Minute,
		BodyLimit:    100 * 1024 * 1024, // 100 MB, ingest files can be large
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			log.Printf("Error: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		},
	})

	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOriginsFunc: func(origin string) bool {
			return true
		},
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           3600,
	}))

	postRepo := repository.NewPostRepository(db)

	r2Service := service.NewR2Service(*cfg)
	selectorService := service.NewSelectorService(postRepo, cfg.CandidateFetchLimit)
	downloaderService := service.NewDownloaderService(cfg.DownloadDir)
	instagramService := service.NewInstagramService(*cfg, r2Service)
	postService := service.NewPostService(postRepo)
	secondaries := map[string]service.SecondaryPublisher{
		"twitter": service.NewTwitterService(*cfg),
		"bluesky": service.NewBlueskyService(*cfg),
		"threads": service.NewThreadsService(*cfg, r2Service),
	}
	autoPostService := service.NewAutoPostService(selectorService, downloaderService, instagramService, secondaries)

	scheduler := jobs.NewScheduler(autoPostService)
	defer scheduler.Stop()

	authMiddleware := middleware.NewAuthMiddleware(*cfg)

	auth := handlers.NewAuthHandler(*cfg)
	app.Post("/auth/token", auth.IssueToken)

	cronGroup := app.Group("/cron")
	cronHandler := handlers.NewCronHandler(*cfg, autoPostService)
	schedulerHandler := handlers.NewSchedulerHandler(scheduler)
	cronGroup.Get("/auto-post", cronHandler.Health)
	cronGroup.Get("/scheduler", schedulerHandler.Info)
	cronGroup.Use(authMiddleware.CronAuth())
	cronGroup.Post("/auto-post", cronHandler.TriggerAutoPost)
	cronGroup.Post("/scheduler", schedulerHandler.Manage)

	api := app.Group("/api")
	api.Use(authMiddleware.DashboardAuth())

	post := handlers.NewPostHandler(postService, selectorService, client)
	api.Get("/posts", post.ListPosts)
	api.Put("/posts", post.UpdatePost)
	api.Delete("/posts", post.RemovePost)
	api.Post("/posts/schedule", post.SchedulePost)
	api.Get("/posts/history", post.PostingHistory)
	api.Get("/posts/top", post.TopPerformers)

	upload := handlers.NewUploadHandler(postService)
	api.Post("/upload", upload.Upload)

	// queue worker for posts scheduled from the dashboard
	queueW := queue.NewQueue(autoPostService)

	go func() {
		server := asynq.NewServer(redisConn, asynq.Config{
			Concurrency: 10,
		})

		mux := asynq.NewServeMux()
		mux.HandleFunc(queue.TaskTypeSchedulePost, queueW.HandleSchedulePostTask)

		log.Println("Starting the Asynq server...")
		if err := server.Run(mux); err != nil {
			log.Fatalf("Could not start Asynq server: %v", err)
		}
	}()

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()
	log.Printf("Server is running on http://localhost:%s", cfg.Port)

	gracefulShutdown(app, db)
}

func closeDB(db *sql.DB) {
	fmt.Fprint(os.Stdout, "Closing database connection... ")
	if err := db.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to close database: %v", err)
		return
	}
	fmt.Fprintln(os.Stdout, "Done")
}

func gracefulShutdown(app *fiber.App, db *sql.DB) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	<-quit
	log.Println("Shutting down server...")

	if err := app.Shutdown(); err != nil {
		log.Fatalf("Failed to shut down server: %v", err)
	}

	closeDB(db)
	log.Println("Server shutdown complete.")
}
