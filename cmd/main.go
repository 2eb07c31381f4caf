package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"grievance-app/internal/config"
	"grievance-app/internal/handler"
	"grievance-app/internal/repository"
	"grievance-app/internal/services"
	"grievance-app/internal/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const callSessionTTL = 30 * time.Minute

func main() {
	// 1. Базовый контекст + менеджер завершения
	baseCtx := context.Background()
	ctx, shutdownManager := utils.NewShutdownManager(baseCtx)
	shutdownManager.StartListening()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	// 2. Инициализация MongoDB
	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Fatal("Failed to connect to MongoDB:", err)
	}
	db := mongoClient.Database(cfg.MongoDB)

	shutdownManager.Register(func(ctx context.Context) error {
		log.Println("[SHUTDOWN] Closing MongoDB connection...")
		return mongoClient.Disconnect(ctx)
	})

	// 3. Инициализация Redis (хранилище сессий звонков)
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		log.Fatal("Invalid Redis URL:", err)
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Fatal("Failed to ping Redis:", err)
	}

	shutdownManager.Register(func(ctx context.Context) error {
		log.Println("[SHUTDOWN] Closing Redis connection...")
		return rdb.Close()
	})

	// 4. Репозитории и индексы
	customerRepo := repository.NewCustomerRepository(db)
	complaintRepo := repository.NewComplaintRepository(db)
	if err := customerRepo.EnsureIndexes(ctx); err != nil {
		log.Fatal("Failed to create customer indexes:", err)
	}
	if err := complaintRepo.EnsureIndexes(ctx); err != nil {
		log.Fatal("Failed to create complaint indexes:", err)
	}

	// 5. Сервисы
	sessionStore := repository.NewRedisSessionStore(rdb, callSessionTTL)
	smsSender := utils.NewTwilioSender(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioPhoneNumber)

	complaintService := services.NewComplaintService(customerRepo, complaintRepo, smsSender)
	ivrService := services.NewIVRService(sessionStore, customerRepo, complaintRepo, smsSender)

	complaintHandler := handler.NewComplaintHandler(complaintService)
	voiceHandler := handler.NewVoiceHandler(ivrService)

	// 6. Настройка роутера
	router := gin.Default()

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/fetch-customer/:beneficiary_no", complaintHandler.FetchCustomer)
	router.POST("/new-complaint", complaintHandler.NewComplaint)
	router.POST("/close-complaint/:complaint_id", complaintHandler.CloseComplaint)
	router.GET("/pending-complaints/:beneficiary_no", complaintHandler.PendingComplaints)

	// Голосовые вебхуки Twilio; /voice доступен и по GET — Twilio может
	// запрашивать точку входа любым методом.
	router.POST("/voice", voiceHandler.Voice)
	router.GET("/voice", voiceHandler.Voice)
	router.POST("/process_beneficiary", voiceHandler.ProcessBeneficiary)
	router.POST("/process_account", voiceHandler.ProcessAccount)
	router.POST("/process_option", voiceHandler.ProcessOption)

	// 7. Запуск сервера
	server := &http.Server{
		Addr:    cfg.ServerPort,
		Handler: router,
	}

	go func() {
		log.Println("Grievance service running on", cfg.ServerPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	shutdownManager.Register(func(ctx context.Context) error {
		log.Println("[SHUTDOWN] Shutting down HTTP server...")
		return server.Shutdown(ctx)
	})

	<-shutdownManager.Done()
}
