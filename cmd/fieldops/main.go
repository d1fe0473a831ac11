package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/mjacobhvac/fieldops/internal/config"
	"github.com/mjacobhvac/fieldops/internal/dispatch/entity"
	"github.com/mjacobhvac/fieldops/internal/dispatch/handler"
	"github.com/mjacobhvac/fieldops/internal/dispatch/repository"
	"github.com/mjacobhvac/fieldops/internal/dispatch/service"
	"github.com/mjacobhvac/fieldops/internal/middleware"
	"github.com/mjacobhvac/fieldops/internal/shared/sms"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zapLogger, err := initLogger(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer zapLogger.Sync()

	zapLogger.Info("Starting fieldops service",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
	)

	db, err := initDatabase(cfg.Database)
	if err != nil {
		zapLogger.Fatal("Failed to connect to database", zap.Error(err))
	}

	if err := db.AutoMigrate(
		&entity.Customer{},
		&entity.Technician{},
		&entity.ServiceType{},
		&entity.ServiceRequest{},
		&entity.ActivityLog{},
		&entity.SMSLog{},
	); err != nil {
		zapLogger.Warn("AutoMigrate warning", zap.Error(err))
	}

	// AutoMigrate skips some alterations on tables with FK constraints, so
	// patch the rest with raw SQL.
	migrationSQL := []string{
		"CREATE INDEX IF NOT EXISTS idx_service_requests_status ON service_requests(status)",
		"CREATE INDEX IF NOT EXISTS idx_service_requests_assigned_tech ON service_requests(assigned_tech_id)",
		"CREATE INDEX IF NOT EXISTS idx_service_requests_scheduled_date ON service_requests(scheduled_date)",
		"CREATE INDEX IF NOT EXISTS idx_customers_phone ON customers(phone)",
		"ALTER TABLE service_requests DROP CONSTRAINT IF EXISTS service_requests_status_check",
		"ALTER TABLE service_requests ADD CONSTRAINT service_requests_status_check CHECK (status IN ('pending', 'scheduled', 'in_progress', 'completed', 'cancelled'))",
	}
	for _, sql := range migrationSQL {
		if err := db.Exec(sql).Error; err != nil {
			zapLogger.Warn("Migration SQL warning (may already exist)", zap.String("sql", sql), zap.Error(err))
		}
	}
	zapLogger.Info("Database migration completed")

	// Seed: service catalog
	serviceTypeSeeds := []struct {
		Name     string
		Price    float64
		Duration int
	}{
		{"AC Repair", 89, 90},
		{"Heating Repair", 89, 90},
		{"HVAC Installation", 0, 480},
		{"Preventive Maintenance", 129, 60},
		{"Duct Cleaning", 299, 180},
		{"Emergency Service", 149, 120},
	}
	for _, st := range serviceTypeSeeds {
		db.Exec(`INSERT INTO service_types (id, service_name, base_price, estimated_duration_minutes, created_at)
			VALUES (replace(gen_random_uuid()::text, '-', ''), ?, ?, ?, NOW())
			ON CONFLICT (service_name) DO NOTHING`, st.Name, st.Price, st.Duration)
	}

	rdb := initRedis(cfg.Redis)

	repos := repository.NewRepositories(db)

	bookingSvc := service.NewBookingService(db, repos, zapLogger)
	dispatchSvc := service.NewDispatchService(repos, zapLogger)
	techSvc := service.NewTechnicianService(repos.Technician)
	serviceTypeSvc := service.NewServiceTypeService(repos.ServiceType, rdb)
	statsSvc := service.NewStatsService(db)

	smsClient := sms.NewClient(cfg.SMS.AccountSID, cfg.SMS.AuthToken, cfg.SMS.FromNumber)
	if smsClient != nil {
		zapLogger.Info("Twilio SMS client initialized", zap.String("from", cfg.SMS.FromNumber))
	} else {
		zapLogger.Warn("Twilio credentials missing, SMS notifications disabled")
	}
	dispatchSvc.SetSMSClient(smsClient, cfg.Business.Name, cfg.Business.Phone)

	handlers := handler.NewHandlers(bookingSvc, dispatchSvc, techSvc, serviceTypeSvc, statsSvc, zapLogger)

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Logger(zapLogger))
	router.Use(middleware.CORS())
	router.Use(middleware.RequestID())
	router.Use(gzip.Gzip(gzip.DefaultCompression))

	registerRoutes(router, handlers, cfg)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: 0, // Disable for SSE long-lived connections
	}

	go func() {
		zapLogger.Info("Server starting", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zapLogger.Error("Server forced to shutdown", zap.Error(err))
	}

	zapLogger.Info("Server exited")
}

func initLogger(cfg config.LogConfig) (*zap.Logger, error) {
	var zapCfg zap.Config

	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}

	switch cfg.Level {
	case "debug":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "info":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	case "warn":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	}

	return zapCfg.Build()
}

func initDatabase(cfg config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode,
	)

	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	}

	db, err := gorm.Open(postgres.Open(dsn), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	return db, nil
}

func initRedis(cfg config.RedisConfig) *redis.Client {
	if cfg.Host == "" {
		return nil
	}
	return redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
}

func registerRoutes(r *gin.Engine, h *handler.Handlers, cfg *config.Config) {
	r.GET("/health/live", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/health/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/version", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"version":    Version,
			"build_time": BuildTime,
		})
	})

	v1 := r.Group("/api/v1")
	{
		// Public booking intake (the customer-facing site posts here).
		v1.POST("/bookings", h.Booking.CreateBooking)
		v1.GET("/service-types", h.ServiceType.ListServiceTypes)

		// Dispatcher board
		dispatch := v1.Group("/dispatch")
		dispatch.Use(middleware.JWTAuth(cfg.JWT.Secret), middleware.RequireRole("dispatcher"))
		{
			dispatch.GET("/bookings", h.Dispatch.ListBookings)
			dispatch.GET("/bookings/export", h.Dispatch.ExportBookings)
			dispatch.GET("/technicians", h.Technician.ListTechnicians)
			dispatch.GET("/stats", h.Dispatch.GetStats)
			dispatch.GET("/events", h.SSE.Stream)
			dispatch.PUT("/bookings/:id/assign", h.Dispatch.AssignTechnician)
			dispatch.PUT("/bookings/:id/status", h.Dispatch.UpdateStatus)
			dispatch.PUT("/bookings/:id", h.Dispatch.UpdateDetails)
		}

		// Technician portal
		tech := v1.Group("/tech")
		tech.Use(middleware.JWTAuth(cfg.JWT.Secret), middleware.RequireRole("technician"))
		{
			tech.GET("/jobs", h.TechPortal.ListJobs)
			tech.PUT("/jobs/:id/status", h.TechPortal.UpdateJobStatus)
		}
	}
}
