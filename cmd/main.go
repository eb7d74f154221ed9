package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	cancelBookingHandler "github.com/quickcaremd/QCMD-BookingEngine/internal/api/handlers/cancel_booking"
	confirmBookingHandler "github.com/quickcaremd/QCMD-BookingEngine/internal/api/handlers/confirm_booking"
	getBookingHandler "github.com/quickcaremd/QCMD-BookingEngine/internal/api/handlers/get_booking"
	getFreeSlotsHandler "github.com/quickcaremd/QCMD-BookingEngine/internal/api/handlers/get_free_slots"
	getPatientUpcomingHandler "github.com/quickcaremd/QCMD-BookingEngine/internal/api/handlers/get_patient_upcoming"
	getProviderScheduleHandler "github.com/quickcaremd/QCMD-BookingEngine/internal/api/handlers/get_provider_schedule"
	healthHandler "github.com/quickcaremd/QCMD-BookingEngine/internal/api/handlers/health"
	requestBookingHandler "github.com/quickcaremd/QCMD-BookingEngine/internal/api/handlers/request_booking"
	resetProviderLocksHandler "github.com/quickcaremd/QCMD-BookingEngine/internal/api/handlers/reset_provider_locks"
	"github.com/quickcaremd/QCMD-BookingEngine/internal/api/middleware"
	"github.com/quickcaremd/QCMD-BookingEngine/internal/config"
	availabilityRepo "github.com/quickcaremd/QCMD-BookingEngine/internal/infra/storage/availability"
	ledgerRepo "github.com/quickcaremd/QCMD-BookingEngine/internal/infra/storage/ledger"
	bookingsService "github.com/quickcaremd/QCMD-BookingEngine/internal/service/bookings"
	reaperService "github.com/quickcaremd/QCMD-BookingEngine/internal/service/reaper"
	scheduleService "github.com/quickcaremd/QCMD-BookingEngine/internal/service/schedule"
	confirmBookingUC "github.com/quickcaremd/QCMD-BookingEngine/internal/usecase/confirm_booking"
	listFreeSlotsUC "github.com/quickcaremd/QCMD-BookingEngine/internal/usecase/list_free_slots"
	requestBookingUC "github.com/quickcaremd/QCMD-BookingEngine/internal/usecase/request_booking"
	"github.com/quickcaremd/QCMD-BookingEngine/pkg/dbmetrics"
	"github.com/quickcaremd/QCMD-BookingEngine/pkg/logger"
	"github.com/quickcaremd/QCMD-BookingEngine/pkg/metrics"
	"github.com/quickcaremd/QCMD-BookingEngine/pkg/simpletxmanager"
	"github.com/quickcaremd/QCMD-BookingEngine/pkg/slotlock"
	"github.com/quickcaremd/QCMD-BookingEngine/pkg/txmanager"
)

func main() {
	// Переменные окружения из .env (если файл есть)
	_ = godotenv.Load()

	// Загружаем конфигурацию
	cfg, err := config.Load("config.toml")
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Инициализируем логгер
	log, err := logger.New(cfg.Logs.File, cfg.Logs.Level)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()

	log.Info("Starting QCMD-BookingEngine...")
	log.Info("Configuration loaded from config.toml")

	// Инициализируем метрики (если включены)
	var metricsCollector *metrics.Metrics
	var wrappedDB *dbmetrics.DB
	stopMetricsCh := make(chan struct{})

	if cfg.Metrics.Enabled {
		metricsCollector = metrics.New(cfg.Metrics.ServiceName)
		log.Info("Metrics enabled at %s", cfg.Metrics.Path)
	}

	// Подключаемся к базе данных
	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatal("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Настраиваем connection pool
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetime) * time.Second)

	// Проверяем соединение
	if err := db.Ping(); err != nil {
		log.Fatal("Failed to ping database: %v", err)
	}
	log.Info("Successfully connected to database (host=%s, port=%d, db=%s)",
		cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)

	// Параметры движка бронирований
	slotDuration := time.Duration(cfg.Booking.SlotDurationMinutes) * time.Minute
	holdTimeout := time.Duration(cfg.Booking.HoldTimeoutSeconds) * time.Second
	lockWait := time.Duration(cfg.Booking.LockWaitMilliseconds) * time.Millisecond
	reaperInterval := time.Duration(cfg.Booking.ReaperIntervalSeconds) * time.Second

	// Единица сериализации бронирований: ограниченная по времени блокировка
	// по ключу (провайдер, часовая корзина слота)
	lockGuard := slotlock.New(lockWait)
	log.Info("Slot lock guard initialized (max wait %s)", lockWait)

	// Инициализируем репозитории и transaction manager (с метриками или без)
	var (
		availabilityRepository *availabilityRepo.Repository
		ledgerRepository       *ledgerRepo.Repository
	)

	type TxManager interface {
		DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
	}
	var txMgr TxManager

	if cfg.Metrics.Enabled {
		wrappedDB = dbmetrics.WrapWithDefault(db, metricsCollector, stopMetricsCh)
		log.Info("Database metrics collection started")

		availabilityRepository = availabilityRepo.NewRepository(wrappedDB, cfg.Booking.DefaultCapacity)
		ledgerRepository = ledgerRepo.NewRepository(wrappedDB)
		txMgr = txmanager.NewTransactionManager(wrappedDB)
	} else {
		availabilityRepository = availabilityRepo.NewRepository(db, cfg.Booking.DefaultCapacity)
		ledgerRepository = ledgerRepo.NewRepository(db)
		txMgr = simpletxmanager.NewTransactionManager(db)
	}

	// Инициализируем сервисы
	bookingSvc := bookingsService.NewService(
		ledgerRepository,
		lockGuard,
		txMgr,
		metricsCollector,
		log,
	)
	scheduleSvc := scheduleService.NewService(
		availabilityRepository,
		ledgerRepository,
		slotDuration,
		log,
	)

	// Инициализируем use cases
	requestBookingUseCase := requestBookingUC.NewUseCase(
		availabilityRepository,
		ledgerRepository,
		lockGuard,
		txMgr,
		requestBookingUC.Settings{
			SlotDuration: slotDuration,
			HoldTimeout:  holdTimeout,
		},
		metricsCollector,
		log,
	)
	confirmBookingUseCase := confirmBookingUC.NewUseCase(
		ledgerRepository,
		lockGuard,
		txMgr,
		metricsCollector,
		log,
	)
	listFreeSlotsUseCase := listFreeSlotsUC.NewUseCase(
		availabilityRepository,
		ledgerRepository,
		slotDuration,
		log,
	)

	// Запускаем reaper просроченных Pending бронирований
	reaper := reaperService.New(
		ledgerRepository,
		lockGuard,
		txMgr,
		metricsCollector,
		log,
	)
	if err := reaper.Start(reaperInterval); err != nil {
		log.Fatal("Failed to start reaper: %v", err)
	}
	log.Info("Expiration reaper started (interval %s)", reaperInterval)

	// Инициализируем handlers
	requestBooking := requestBookingHandler.NewHandler(requestBookingUseCase, log)
	confirmBooking := confirmBookingHandler.NewHandler(confirmBookingUseCase, log)
	cancelBooking := cancelBookingHandler.NewHandler(bookingSvc, log)
	getBooking := getBookingHandler.NewHandler(bookingSvc, log)
	getFreeSlots := getFreeSlotsHandler.NewHandler(listFreeSlotsUseCase, log)
	getProviderSchedule := getProviderScheduleHandler.NewHandler(scheduleSvc, log)
	getPatientUpcoming := getPatientUpcomingHandler.NewHandler(bookingSvc, log)
	resetProviderLocks := resetProviderLocksHandler.NewHandler(bookingSvc, log)
	health := healthHandler.NewHandler(db, log)

	// Настраиваем роутер
	r := mux.NewRouter()

	// Добавляем metrics middleware (если метрики включены)
	if cfg.Metrics.Enabled {
		r.Use(middleware.MetricsMiddleware(metricsCollector))
		log.Info("HTTP metrics middleware enabled")
	}

	// Metrics endpoint (публичный, без аутентификации)
	if cfg.Metrics.Enabled {
		r.Handle(cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	// Healthcheck
	r.HandleFunc("/health", health.Handle).Methods(http.MethodGet)

	// API prefix
	api := r.PathPrefix("/api/v1").Subrouter()

	// ============================================================
	// PUBLIC ROUTES (без аутентификации)
	// ============================================================

	// Свободные слоты провайдера
	api.HandleFunc("/providers/{providerId}/free-slots", getFreeSlots.Handle).Methods(http.MethodGet)

	// Расписание провайдера с занятостью слотов
	api.HandleFunc("/providers/{providerId}/schedule", getProviderSchedule.Handle).Methods(http.MethodGet)

	// ============================================================
	// PROTECTED ROUTES (требуют X-User-ID header)
	// ============================================================

	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.Auth)

	// --- Бронирования ---
	// Запрос бронирования слота (создает Pending с дедлайном подтверждения)
	protected.HandleFunc("/bookings", requestBooking.Handle).Methods(http.MethodPost)

	// Подтверждение бронирования
	protected.HandleFunc("/bookings/{bookingId}/confirm", confirmBooking.Handle).Methods(http.MethodPost)

	// Отмена бронирования
	protected.HandleFunc("/bookings/{bookingId}/cancel", cancelBooking.Handle).Methods(http.MethodPatch)

	// Текущее состояние бронирования
	protected.HandleFunc("/bookings/{bookingId}", getBooking.Handle).Methods(http.MethodGet)

	// История переходов бронирования
	protected.HandleFunc("/bookings/{bookingId}/history", getBooking.HandleHistory).Methods(http.MethodGet)

	// Предстоящие бронирования пациента
	protected.HandleFunc("/patients/{patientId}/bookings/upcoming", getPatientUpcoming.Handle).Methods(http.MethodGet)

	// --- Операторские ---
	// Сброс остановленных ключей провайдера после ручной сверки ledger
	protected.HandleFunc("/providers/{providerId}/locks/reset", resetProviderLocks.Handle).Methods(http.MethodPost)

	// Создаем HTTP сервер
	addr := fmt.Sprintf(":%d", cfg.Server.HTTPPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Info("Starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed to start: %v", err)
		}
	}()

	// Ожидаем сигнал завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	// Останавливаем reaper (дожидается завершения текущего прохода)
	reaper.Stop()
	log.Info("Expiration reaper stopped")

	// Останавливаем сбор метрик connection pool
	if cfg.Metrics.Enabled {
		close(stopMetricsCh)
		log.Info("Metrics collection stopped")
	}

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown: %v", err)
	}

	log.Info("Server stopped gracefully")
}
