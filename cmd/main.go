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
	"github.com/redis/go-redis/v9"

	bookAppointmentHandler "github.com/m04kA/HMS-AppointmentService/internal/api/handlers/book_appointment"
	callNextHandler "github.com/m04kA/HMS-AppointmentService/internal/api/handlers/call_next"
	cancelAppointmentHandler "github.com/m04kA/HMS-AppointmentService/internal/api/handlers/cancel_appointment"
	confirmAppointmentHandler "github.com/m04kA/HMS-AppointmentService/internal/api/handlers/confirm_appointment"
	createScheduleRuleHandler "github.com/m04kA/HMS-AppointmentService/internal/api/handlers/create_schedule_rule"
	deactivateScheduleRuleHandler "github.com/m04kA/HMS-AppointmentService/internal/api/handlers/deactivate_schedule_rule"
	getAppointmentHandler "github.com/m04kA/HMS-AppointmentService/internal/api/handlers/get_appointment"
	getAppointmentCountsHandler "github.com/m04kA/HMS-AppointmentService/internal/api/handlers/get_appointment_counts"
	getAvailableSlotsHandler "github.com/m04kA/HMS-AppointmentService/internal/api/handlers/get_available_slots"
	getDoctorAppointmentsHandler "github.com/m04kA/HMS-AppointmentService/internal/api/handlers/get_doctor_appointments"
	getPatientAppointmentsHandler "github.com/m04kA/HMS-AppointmentService/internal/api/handlers/get_patient_appointments"
	getQueueBoardHandler "github.com/m04kA/HMS-AppointmentService/internal/api/handlers/get_queue_board"
	guestLookupHandler "github.com/m04kA/HMS-AppointmentService/internal/api/handlers/guest_lookup"
	guestViewHandler "github.com/m04kA/HMS-AppointmentService/internal/api/handlers/guest_view"
	listScheduleRulesHandler "github.com/m04kA/HMS-AppointmentService/internal/api/handlers/list_schedule_rules"
	queueCheckInHandler "github.com/m04kA/HMS-AppointmentService/internal/api/handlers/queue_check_in"
	rescheduleAppointmentHandler "github.com/m04kA/HMS-AppointmentService/internal/api/handlers/reschedule_appointment"
	sendOtpHandler "github.com/m04kA/HMS-AppointmentService/internal/api/handlers/send_otp"
	updateQueueEntryHandler "github.com/m04kA/HMS-AppointmentService/internal/api/handlers/update_queue_entry"
	verifyOtpHandler "github.com/m04kA/HMS-AppointmentService/internal/api/handlers/verify_otp"
	"github.com/m04kA/HMS-AppointmentService/internal/api/middleware"
	"github.com/m04kA/HMS-AppointmentService/internal/config"
	"github.com/m04kA/HMS-AppointmentService/internal/infra/sessionstore"
	appointmentRepo "github.com/m04kA/HMS-AppointmentService/internal/infra/storage/appointment"
	auditlogRepo "github.com/m04kA/HMS-AppointmentService/internal/infra/storage/auditlog"
	doctorstatsRepo "github.com/m04kA/HMS-AppointmentService/internal/infra/storage/doctorstats"
	queueentryRepo "github.com/m04kA/HMS-AppointmentService/internal/infra/storage/queueentry"
	scheduleruleRepo "github.com/m04kA/HMS-AppointmentService/internal/infra/storage/schedulerule"
	billingServiceClient "github.com/m04kA/HMS-AppointmentService/internal/integrations/billingservice"
	doctorServiceClient "github.com/m04kA/HMS-AppointmentService/internal/integrations/doctorservice"
	smsGatewayClient "github.com/m04kA/HMS-AppointmentService/internal/integrations/smsgateway"
	appointmentsService "github.com/m04kA/HMS-AppointmentService/internal/service/appointments"
	queueService "github.com/m04kA/HMS-AppointmentService/internal/service/queue"
	scheduleService "github.com/m04kA/HMS-AppointmentService/internal/service/schedule"
	bookAppointmentUC "github.com/m04kA/HMS-AppointmentService/internal/usecase/book_appointment"
	callNextUC "github.com/m04kA/HMS-AppointmentService/internal/usecase/call_next"
	checkInUC "github.com/m04kA/HMS-AppointmentService/internal/usecase/check_in"
	getAvailableSlotsUC "github.com/m04kA/HMS-AppointmentService/internal/usecase/get_available_slots"
	rescheduleAppointmentUC "github.com/m04kA/HMS-AppointmentService/internal/usecase/reschedule_appointment"
	sendOtpUC "github.com/m04kA/HMS-AppointmentService/internal/usecase/send_otp"
	updateQueueEntryUC "github.com/m04kA/HMS-AppointmentService/internal/usecase/update_queue_entry"
	verifyOtpUC "github.com/m04kA/HMS-AppointmentService/internal/usecase/verify_otp"
	"github.com/m04kA/HMS-AppointmentService/pkg/dbmetrics"
	"github.com/m04kA/HMS-AppointmentService/pkg/logger"
	"github.com/m04kA/HMS-AppointmentService/pkg/metrics"
	"github.com/m04kA/HMS-AppointmentService/pkg/simpletxmanager"
	"github.com/m04kA/HMS-AppointmentService/pkg/txmanager"
)

func main() {
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

	log.Info("Starting HMS-AppointmentService...")
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

	// Хранилище OTP сессий и гостевых токенов: Redis либо in-memory
	var sessions sessionstore.Store
	if cfg.Redis.Enabled {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			log.Fatal("Failed to ping redis: %v", err)
		}
		defer redisClient.Close()
		sessions = sessionstore.NewRedisStore(redisClient)
		log.Info("Session store: redis (addr=%s, db=%d)", cfg.Redis.Addr, cfg.Redis.DB)
	} else {
		memStore := sessionstore.NewMemoryStore()
		defer memStore.Close()
		sessions = memStore
		log.Info("Session store: in-memory")
	}

	// Инициализируем интеграционных клиентов
	doctorClient := doctorServiceClient.NewClient(
		cfg.DoctorService.URL,
		time.Duration(cfg.DoctorService.Timeout)*time.Second,
		log,
	)
	billingClient := billingServiceClient.NewClient(
		cfg.BillingService.URL,
		time.Duration(cfg.BillingService.Timeout)*time.Second,
		log,
	)
	smsClient := smsGatewayClient.NewClient(
		cfg.SmsGateway.URL,
		time.Duration(cfg.SmsGateway.Timeout)*time.Second,
		log,
	)
	log.Info("Integration clients initialized (DoctorService=%s, BillingService=%s, SmsGateway=%s)",
		cfg.DoctorService.URL, cfg.BillingService.URL, cfg.SmsGateway.URL)

	// Инициализируем репозитории (с метриками или без)
	var (
		appointmentRepository  *appointmentRepo.Repository
		scheduleRuleRepository *scheduleruleRepo.Repository
		queueEntryRepository   *queueentryRepo.Repository
		doctorStatsRepository  *doctorstatsRepo.Repository
		auditLogRepository     *auditlogRepo.Repository
	)

	// Интерфейс для transaction manager (используется в usecases)
	type TxManager interface {
		DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
	}
	var txMgr TxManager

	if cfg.Metrics.Enabled {
		wrappedDB = dbmetrics.WrapWithDefault(db, metricsCollector, cfg.Metrics.ServiceName, stopMetricsCh)
		log.Info("Database metrics collection started")

		appointmentRepository = appointmentRepo.NewRepository(wrappedDB)
		scheduleRuleRepository = scheduleruleRepo.NewRepository(wrappedDB)
		queueEntryRepository = queueentryRepo.NewRepository(wrappedDB)
		doctorStatsRepository = doctorstatsRepo.NewRepository(wrappedDB)
		auditLogRepository = auditlogRepo.NewRepository(wrappedDB)
		txMgr = txmanager.NewTransactionManager(wrappedDB)
	} else {
		appointmentRepository = appointmentRepo.NewRepository(db)
		scheduleRuleRepository = scheduleruleRepo.NewRepository(db)
		queueEntryRepository = queueentryRepo.NewRepository(db)
		doctorStatsRepository = doctorstatsRepo.NewRepository(db)
		auditLogRepository = auditlogRepo.NewRepository(db)
		txMgr = simpletxmanager.NewTransactionManager(db)
	}

	// Инициализируем сервисы
	appointmentsSvc := appointmentsService.NewService(
		appointmentRepository,
		sessions,
		auditLogRepository,
		log,
	)
	scheduleSvc := scheduleService.NewService(
		scheduleRuleRepository,
		doctorClient,
		auditLogRepository,
		int64(cfg.Booking.HospitalID),
		log,
	)
	queueSvc := queueService.NewService(
		queueEntryRepository,
		doctorStatsRepository,
		log,
	)

	// Инициализируем use cases
	getAvailableSlotsUseCase := getAvailableSlotsUC.NewUseCase(
		scheduleRuleRepository,
		appointmentRepository,
		doctorClient,
		log,
	)

	sendOtpUseCase := sendOtpUC.NewUseCase(
		sessions,
		smsClient,
		sendOtpUC.Policy{
			TTL:     time.Duration(cfg.Otp.TTLSeconds) * time.Second,
			Region:  cfg.Otp.Region,
			DevMode: cfg.Otp.DevMode,
		},
		log,
	)

	verifyOtpUseCase := verifyOtpUC.NewUseCase(sessions, log)

	bookAppointmentUseCase := bookAppointmentUC.NewUseCase(
		appointmentRepository,
		scheduleRuleRepository,
		auditLogRepository,
		doctorClient,
		billingClient,
		smsClient,
		sessions,
		txMgr,
		bookAppointmentUC.Policy{
			HospitalID:         int64(cfg.Booking.HospitalID),
			TokenDisplayPrefix: cfg.Booking.TokenDisplayPrefix,
			GuestTokenTTL:      time.Duration(cfg.Booking.GuestTokenTTLHours) * time.Hour,
		},
		log,
	)

	rescheduleAppointmentUseCase := rescheduleAppointmentUC.NewUseCase(
		appointmentRepository,
		scheduleRuleRepository,
		auditLogRepository,
		doctorClient,
		txMgr,
		rescheduleAppointmentUC.Policy{
			HospitalID:         int64(cfg.Booking.HospitalID),
			MaxReschedules:     cfg.Booking.MaxReschedules,
			TokenDisplayPrefix: cfg.Booking.TokenDisplayPrefix,
		},
		log,
	)

	checkInUseCase := checkInUC.NewUseCase(
		appointmentRepository,
		queueEntryRepository,
		doctorStatsRepository,
		auditLogRepository,
		txMgr,
		checkInUC.Policy{
			HospitalID:         int64(cfg.Booking.HospitalID),
			TokenDisplayPrefix: cfg.Booking.TokenDisplayPrefix,
		},
		log,
	)

	callNextUseCase := callNextUC.NewUseCase(
		queueEntryRepository,
		auditLogRepository,
		txMgr,
		log,
	)

	updateQueueEntryUseCase := updateQueueEntryUC.NewUseCase(
		queueEntryRepository,
		appointmentRepository,
		doctorStatsRepository,
		auditLogRepository,
		txMgr,
		log,
	)

	// Инициализируем handlers
	getAvailableSlots := getAvailableSlotsHandler.NewHandler(getAvailableSlotsUseCase, log)
	sendOtp := sendOtpHandler.NewHandler(sendOtpUseCase, log)
	verifyOtp := verifyOtpHandler.NewHandler(verifyOtpUseCase, log)
	bookAppointment := bookAppointmentHandler.NewHandler(bookAppointmentUseCase, log)
	guestLookup := guestLookupHandler.NewHandler(appointmentsSvc, log)
	guestView := guestViewHandler.NewHandler(appointmentsSvc, log)
	getAppointment := getAppointmentHandler.NewHandler(appointmentsSvc, log)
	getPatientAppointments := getPatientAppointmentsHandler.NewHandler(appointmentsSvc, log)
	getDoctorAppointments := getDoctorAppointmentsHandler.NewHandler(appointmentsSvc, log)
	getAppointmentCounts := getAppointmentCountsHandler.NewHandler(appointmentsSvc, log)
	cancelAppointment := cancelAppointmentHandler.NewHandler(appointmentsSvc, log)
	confirmAppointment := confirmAppointmentHandler.NewHandler(appointmentsSvc, log)
	rescheduleAppointment := rescheduleAppointmentHandler.NewHandler(rescheduleAppointmentUseCase, log)
	createScheduleRule := createScheduleRuleHandler.NewHandler(scheduleSvc, log)
	listScheduleRules := listScheduleRulesHandler.NewHandler(scheduleSvc, log)
	deactivateScheduleRule := deactivateScheduleRuleHandler.NewHandler(scheduleSvc, log)
	queueCheckIn := queueCheckInHandler.NewHandler(checkInUseCase, log)
	getQueueBoard := getQueueBoardHandler.NewHandler(queueSvc, log)
	callNext := callNextHandler.NewHandler(callNextUseCase, log)
	updateQueueEntry := updateQueueEntryHandler.NewHandler(updateQueueEntryUseCase, log)

	// Настраиваем роутер
	r := mux.NewRouter()

	// Добавляем metrics middleware (если метрики включены)
	if cfg.Metrics.Enabled {
		r.Use(middleware.MetricsMiddleware(metricsCollector, cfg.Metrics.ServiceName))
		log.Info("HTTP metrics middleware enabled")
	}

	// Metrics endpoint (публичный, без аутентификации)
	if cfg.Metrics.Enabled {
		r.Handle(cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	// API prefix
	api := r.PathPrefix("/api/v1").Subrouter()

	// ============================================================
	// PUBLIC ROUTES (без аутентификации)
	// ============================================================

	// Доступные слоты врача на дату
	api.HandleFunc("/doctors/{doctorId}/slots", getAvailableSlots.Handle).Methods(http.MethodGet)

	// OTP верификация для гостевых бронирований
	api.HandleFunc("/otp/send", sendOtp.Handle).Methods(http.MethodPost)
	api.HandleFunc("/otp/verify", verifyOtp.Handle).Methods(http.MethodPost)

	// Гостевое бронирование и доступ к записи без аккаунта
	api.HandleFunc("/guest/appointments", bookAppointment.Handle).Methods(http.MethodPost)
	api.HandleFunc("/guest/appointments/lookup", guestLookup.Handle).Methods(http.MethodGet)
	api.HandleFunc("/guest/appointments/view", guestView.Handle).Methods(http.MethodGet)

	// Табло живой очереди (выводится на экраны в зале ожидания)
	api.HandleFunc("/doctors/{doctorId}/queue", getQueueBoard.Handle).Methods(http.MethodGet)

	// ============================================================
	// PROTECTED ROUTES (требуют X-User-ID header)
	// ============================================================

	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.Auth)

	// --- Записи на приём ---
	protected.HandleFunc("/appointments", bookAppointment.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/appointments/{appointmentId}", getAppointment.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/appointments/{appointmentId}/cancel", cancelAppointment.Handle).Methods(http.MethodPatch)
	protected.HandleFunc("/appointments/{appointmentId}/confirm", confirmAppointment.Handle).Methods(http.MethodPatch)
	protected.HandleFunc("/appointments/{appointmentId}/reschedule", rescheduleAppointment.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/appointments/{appointmentId}/check-in", queueCheckIn.Handle).Methods(http.MethodPost)

	// История записей пациента
	protected.HandleFunc("/patients/me/appointments", getPatientAppointments.Handle).Methods(http.MethodGet)

	// --- Рабочее место врача и регистратуры ---
	protected.HandleFunc("/doctors/{doctorId}/appointments", getDoctorAppointments.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/doctors/{doctorId}/appointments/counts", getAppointmentCounts.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/doctors/{doctorId}/queue/call-next", callNext.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/queue/{entryId}", updateQueueEntry.Handle).Methods(http.MethodPatch)

	// --- Управление расписанием (для администраторов) ---
	protected.HandleFunc("/schedules", createScheduleRule.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/doctors/{doctorId}/schedules", listScheduleRules.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/schedules/{ruleId}", deactivateScheduleRule.Handle).Methods(http.MethodDelete)

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
