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
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	bookingLinksHandler "github.com/m04kA/SMC-SalonBooking/internal/api/handlers/booking_links"
	cancelAppointmentHandler "github.com/m04kA/SMC-SalonBooking/internal/api/handlers/cancel_appointment"
	createBookingHandler "github.com/m04kA/SMC-SalonBooking/internal/api/handlers/create_booking"
	getAppointmentHandler "github.com/m04kA/SMC-SalonBooking/internal/api/handlers/get_appointment"
	getAvailableSlotsHandler "github.com/m04kA/SMC-SalonBooking/internal/api/handlers/get_available_slots"
	getSalonAppointmentsHandler "github.com/m04kA/SMC-SalonBooking/internal/api/handlers/get_salon_appointments"
	payCancellationFeeHandler "github.com/m04kA/SMC-SalonBooking/internal/api/handlers/pay_cancellation_fee"
	rescheduleAppointmentHandler "github.com/m04kA/SMC-SalonBooking/internal/api/handlers/reschedule_appointment"
	salonStatusHandler "github.com/m04kA/SMC-SalonBooking/internal/api/handlers/salon_status"
	updateAppointmentStatusHandler "github.com/m04kA/SMC-SalonBooking/internal/api/handlers/update_appointment_status"
	"github.com/m04kA/SMC-SalonBooking/internal/api/middleware"
	"github.com/m04kA/SMC-SalonBooking/internal/config"
	appointmentRepo "github.com/m04kA/SMC-SalonBooking/internal/infra/storage/appointment"
	linkRepo "github.com/m04kA/SMC-SalonBooking/internal/infra/storage/bookinglink"
	feeRepo "github.com/m04kA/SMC-SalonBooking/internal/infra/storage/cancellationfee"
	salonRepo "github.com/m04kA/SMC-SalonBooking/internal/infra/storage/salon"
	identityClient "github.com/m04kA/SMC-SalonBooking/internal/integrations/identity"
	ledgerClient "github.com/m04kA/SMC-SalonBooking/internal/integrations/ledger"
	appointmentsService "github.com/m04kA/SMC-SalonBooking/internal/service/appointments"
	bookingLinksService "github.com/m04kA/SMC-SalonBooking/internal/service/bookinglinks"
	salonsService "github.com/m04kA/SMC-SalonBooking/internal/service/salons"
	"github.com/m04kA/SMC-SalonBooking/internal/service/validator"
	createBookingUC "github.com/m04kA/SMC-SalonBooking/internal/usecase/create_booking"
	getAvailableSlotsUC "github.com/m04kA/SMC-SalonBooking/internal/usecase/get_available_slots"
	"github.com/m04kA/SMC-SalonBooking/pkg/dbmetrics"
	"github.com/m04kA/SMC-SalonBooking/pkg/logger"
	"github.com/m04kA/SMC-SalonBooking/pkg/metrics"
	"github.com/m04kA/SMC-SalonBooking/pkg/tracing"
	"github.com/m04kA/SMC-SalonBooking/pkg/txmanager"
)

func main() {
	// Загружаем конфигурацию (CONFIG_PATH имеет приоритет)
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

	log.Info("Starting SMC-SalonBooking...")

	defaultLocation, err := cfg.Scheduling.Location()
	if err != nil {
		log.Fatal("Failed to load scheduling timezone: %v", err)
	}
	log.Info("Default salon timezone: %s, slot step: %d min", defaultLocation, cfg.Scheduling.SlotStepMinutes)

	// Трассировка (при выключенной - no-op)
	shutdownTracing := tracing.Setup(context.Background(), cfg.Metrics.ServiceName, tracing.Config{
		Enabled:  cfg.Tracing.Enabled,
		Endpoint: cfg.Tracing.Endpoint,
		Insecure: cfg.Tracing.Insecure,
	}, log)

	// Инициализируем метрики (если включены). nil коллектор безопасен.
	var metricsCollector *metrics.Metrics
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

	// Без метрик обертка работает как прозрачный прокси
	wrappedDB := dbmetrics.WrapWithDefault(db, metricsCollector, cfg.Database.DBName, stopMetricsCh)
	txManager := txmanager.NewTransactionManager(wrappedDB, metricsCollector)

	// Инициализируем интеграционных клиентов
	identity := identityClient.NewClient(
		cfg.IdentityService.URL,
		time.Duration(cfg.IdentityService.Timeout)*time.Second,
		log,
	)
	ledger := ledgerClient.NewClient(
		cfg.LedgerService.URL,
		time.Duration(cfg.LedgerService.Timeout)*time.Second,
		log,
	)
	log.Info("Integration clients initialized (IdentityService=%s, LedgerService=%s)",
		cfg.IdentityService.URL, cfg.LedgerService.URL)

	// Инициализируем репозитории
	salonRepository := salonRepo.NewRepository(wrappedDB)
	appointmentRepository := appointmentRepo.NewRepository(wrappedDB)
	feeRepository := feeRepo.NewRepository(wrappedDB)
	linkRepository := linkRepo.NewRepository(wrappedDB)

	// Инициализируем сервисы
	slotValidator := validator.NewService(
		appointmentRepository,
		salonRepository,
		&appointmentsService.RealTimeProvider{},
		log,
	)
	appointmentSvc := appointmentsService.NewService(
		appointmentRepository,
		salonRepository,
		feeRepository,
		linkRepository,
		slotValidator,
		ledger,
		txManager,
		metricsCollector,
		defaultLocation,
		log,
	)
	linkSvc := bookingLinksService.NewService(linkRepository, salonRepository, log)
	salonSvc := salonsService.NewService(salonRepository, defaultLocation, log)

	// Инициализируем use cases
	createBookingUseCase := createBookingUC.NewUseCase(
		salonRepository,
		appointmentRepository,
		feeRepository,
		linkRepository,
		identity,
		slotValidator,
		txManager,
		metricsCollector,
		defaultLocation,
		log,
	)
	getAvailableSlotsUseCase := getAvailableSlotsUC.NewUseCase(
		salonRepository,
		appointmentRepository,
		getAvailableSlotsUC.Settings{
			DefaultLocation: defaultLocation,
			SlotStepMinutes: cfg.Scheduling.SlotStepMinutes,
		},
		log,
	)

	// Инициализируем handlers
	createBooking := createBookingHandler.NewHandler(createBookingUseCase, log)
	getAvailableSlots := getAvailableSlotsHandler.NewHandler(getAvailableSlotsUseCase, log)
	getAppointment := getAppointmentHandler.NewHandler(appointmentSvc, log)
	getSalonAppointments := getSalonAppointmentsHandler.NewHandler(appointmentSvc, log)
	updateAppointmentStatus := updateAppointmentStatusHandler.NewHandler(appointmentSvc, log)
	rescheduleAppointment := rescheduleAppointmentHandler.NewHandler(appointmentSvc, log)
	cancelAppointment := cancelAppointmentHandler.NewHandler(appointmentSvc, log)
	payCancellationFee := payCancellationFeeHandler.NewHandler(appointmentSvc, log)
	bookingLinks := bookingLinksHandler.NewHandler(linkSvc, log)
	salonStatus := salonStatusHandler.NewHandler(salonSvc, log)

	// Настраиваем роутер
	r := mux.NewRouter()

	if cfg.Metrics.Enabled {
		r.Use(middleware.MetricsMiddleware(metricsCollector))
		r.Handle(cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	// API prefix
	api := r.PathPrefix("/api/v1").Subrouter()

	// ============================================================
	// PUBLIC ROUTES (без аутентификации)
	// ============================================================

	// Доступные слоты и статус салона
	api.HandleFunc("/salons/{salonId}/available-slots", getAvailableSlots.Handle).Methods(http.MethodGet)
	api.HandleFunc("/salons/{salonId}/status", salonStatus.HandleGet).Methods(http.MethodGet)

	// --- Клиент по ссылке: токен сам является доступом ---
	api.HandleFunc("/booking-links/{token}", bookingLinks.HandleResolve).Methods(http.MethodGet)
	api.HandleFunc("/booking-links/{token}/bookings", createBooking.HandleLink).Methods(http.MethodPost)
	api.HandleFunc("/booking-links/{token}/appointments/{appointmentId}",
		getAppointment.HandleLink).Methods(http.MethodGet)
	api.HandleFunc("/booking-links/{token}/appointments/{appointmentId}/cancel",
		cancelAppointment.HandleLink).Methods(http.MethodPost)
	api.HandleFunc("/booking-links/{token}/appointments/{appointmentId}/reschedule/{decision}",
		rescheduleAppointment.HandleLinkDecision).Methods(http.MethodPost)

	// ============================================================
	// PROTECTED ROUTES (требуют X-User-ID header)
	// ============================================================

	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.Auth)

	// --- Записи ---
	protected.HandleFunc("/bookings", createBooking.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/appointments/{appointmentId}", getAppointment.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/appointments/{appointmentId}/status", updateAppointmentStatus.Handle).Methods(http.MethodPatch)
	protected.HandleFunc("/appointments/{appointmentId}/cancel", cancelAppointment.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/appointments/{appointmentId}/reschedule", rescheduleAppointment.HandlePropose).Methods(http.MethodPost)
	protected.HandleFunc("/appointments/{appointmentId}/reschedule/{decision}",
		rescheduleAppointment.HandleDecision).Methods(http.MethodPost)

	// --- Штрафы ---
	protected.HandleFunc("/cancellation-fees/{feeId}/pay", payCancellationFee.Handle).Methods(http.MethodPost)

	// --- Управление салоном (владелец и сотрудники) ---
	protected.HandleFunc("/salons/{salonId}/appointments", getSalonAppointments.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/salons/{salonId}/status", salonStatus.HandleUpdate).Methods(http.MethodPut)
	protected.HandleFunc("/salons/{salonId}/booking-links", bookingLinks.HandleCreate).Methods(http.MethodPost)
	protected.HandleFunc("/salons/{salonId}/booking-links/{linkId}/toggle",
		bookingLinks.HandleToggle).Methods(http.MethodPatch)

	// Создаем HTTP сервер
	addr := fmt.Sprintf(":%d", cfg.Server.HTTPPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      otelhttp.NewHandler(r, cfg.Metrics.ServiceName),
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

	// Останавливаем сбор метрик connection pool
	close(stopMetricsCh)

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown: %v", err)
	}

	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Error("Failed to flush traces: %v", err)
	}

	log.Info("Server stopped gracefully")
}
