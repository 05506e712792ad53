package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/google/uuid"

	"staynest/internal/app/commands"
	availabilityapp "staynest/internal/app/handlers/availability"
	bookingapp "staynest/internal/app/handlers/booking"
	meapp "staynest/internal/app/handlers/me"
	propertiesapp "staynest/internal/app/handlers/properties"
	reviewsapp "staynest/internal/app/handlers/reviews"
	"staynest/internal/app/middleware"
	appoutbox "staynest/internal/app/outbox"
	"staynest/internal/app/policies"
	"staynest/internal/app/queries"
	authsvc "staynest/internal/app/services/auth"
	"staynest/internal/app/uow"
	domainauth "staynest/internal/domain/auth"
	domainbooking "staynest/internal/domain/booking"
	domainproperty "staynest/internal/domain/property"
	domainreviews "staynest/internal/domain/reviews"
	"staynest/internal/domain/shared/money"
	domainuser "staynest/internal/domain/user"
	"staynest/internal/infra/broker/kafka"
	"staynest/internal/infra/config"
	mongodb "staynest/internal/infra/db/mongo"
	ginserver "staynest/internal/infra/http/gin"
	"staynest/internal/infra/inbox"
	"staynest/internal/infra/notify"
	"staynest/internal/infra/obs"
	infraoutbox "staynest/internal/infra/outbox"
	"staynest/internal/infra/security"
	"staynest/internal/infra/storage/memory"
	"staynest/internal/infra/storage/s3"
	"staynest/internal/infra/validation"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	env := getenv("APP_ENV", "dev")
	logger := obs.NewLogger(env)

	cfg, err := config.Load()
	if err != nil {
		logger.Warn("using fallback configuration", "error", err)
		cfg.Env = env
		cfg.HTTPAddr = getenv("HTTP_ADDR", ":8080")
	}
	if cfg.HTTPAddr == "" {
		cfg.HTTPAddr = ":8080"
	}

	app, err := buildApplication(ctx, cfg, logger)
	if err != nil {
		logger.Error("bootstrap failed", "error", err)
		os.Exit(1)
	}

	server := ginserver.NewServer(cfg, obs.Middleware{Logger: logger}, obs.HealthHandlers{
		Ready: app.ready,
	}, app.handlers)

	if app.properties != nil {
		fixturesPath := getenv("PROPERTY_FIXTURES", "")
		if fixturesPath == "" {
			fixturesPath = defaultPropertyFixturesPath()
		}
		if err := app.loadPropertyFixtures(ctx, fixturesPath, logger); err != nil {
			logger.Warn("property fixtures load failed", "error", err, "path", fixturesPath)
		}
	}

	for _, worker := range app.workers {
		go worker(ctx)
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("http shutdown failed", "error", err)
		}
	}()

	logger.Info("HTTP server starting", "addr", cfg.HTTPAddr, "env", cfg.Env)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("http server failed", "error", err)
		os.Exit(1)
	}
	app.close(logger)
	logger.Info("HTTP server stopped")
}

type application struct {
	handlers ginserver.Handlers
	ready    func() error
	workers  []func(context.Context)
	closers  []func() error

	// properties is set only in memory mode so fixtures can be seeded.
	properties domainproperty.Repository
}

func (a *application) close(logger *slog.Logger) {
	for _, c := range a.closers {
		if err := c(); err != nil {
			logger.Warn("shutdown cleanup failed", "error", err)
		}
	}
}

func buildApplication(ctx context.Context, cfg config.Config, logger *slog.Logger) (*application, error) {
	app := &application{ready: func() error { return nil }}

	var (
		factory        uow.UoWFactory
		propertiesRepo domainproperty.Repository
		bookingsRepo   domainbooking.Repository
		usersRepo      domainuser.Repository
		reviewsRepo    domainreviews.Repository
		sessions       domainauth.SessionStore
		otps           domainuser.OTPStore
		box            appoutbox.Outbox
		idemStore      middleware.IdempotencyStore
	)

	if cfg.MongoURI != "" {
		client, err := mongodb.New(cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			return nil, fmt.Errorf("mongo connect: %w", err)
		}
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err = client.Ping(pingCtx)
		cancel()
		if err != nil {
			return nil, fmt.Errorf("mongo ping: %w", err)
		}
		logger.Info("storage mode: mongodb", "database", cfg.MongoDB)

		propertiesRepo = mongodb.NewPropertyRepository(client.DB)
		bookingsRepo = mongodb.NewBookingRepository(client.DB)
		usersRepo = mongodb.NewUserRepository(client.DB)
		reviewsRepo = mongodb.NewReviewRepository(client.DB)
		sessions = mongodb.NewSessionStore(client.DB)
		otps = mongodb.NewOTPStore(client.DB)
		idemStore = mongodb.NewIdempotencyStore(client.DB)
		factory = mongodb.Factory{
			DB:             client.DB,
			PropertiesRepo: propertiesRepo,
			BookingsRepo:   bookingsRepo,
			UsersRepo:      usersRepo,
			ReviewsRepo:    reviewsRepo,
		}

		outboxStore := infraoutbox.NewStore(client.DB)
		box = outboxStore

		if len(cfg.KafkaBrokers) > 0 {
			if err := wireEventPipeline(cfg, logger, app, outboxStore, client, bookingsRepo, usersRepo); err != nil {
				return nil, err
			}
		} else {
			logger.Warn("kafka brokers not configured, outbox events will accumulate unpublished")
		}

		app.ready = func() error {
			readyCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return client.Ping(readyCtx)
		}
	} else {
		logger.Info("storage mode: in-memory")
		propertiesRepo = memory.NewPropertyRepository()
		bookingsRepo = memory.NewBookingRepository()
		usersRepo = memory.NewUserRepository()
		reviewsRepo = memory.NewReviewsRepository()
		sessions = memory.NewSessionStore()
		otps = memory.NewOTPStore()
		idemStore = memory.NewIdempotencyStore()
		box = memory.NewOutbox()
		factory = memory.Factory{
			PropertiesRepo: propertiesRepo,
			BookingsRepo:   bookingsRepo,
			UsersRepo:      usersRepo,
			ReviewsRepo:    reviewsRepo,
		}
		app.properties = propertiesRepo
	}

	notifier := buildNotifier(cfg, logger)

	authService := &authsvc.Service{
		Users:      usersRepo,
		Sessions:   sessions,
		Passwords:  security.BcryptHasher{},
		Tokens:     security.RandomTokenGenerator{},
		OTPs:       otps,
		OTPCodes:   security.DigitCodeGenerator{},
		Notifier:   notifier,
		SessionTTL: cfg.SessionTTL,
		OTPTTL:     cfg.OTPTTL,
		Logger:     logger,
	}

	uploader := buildUploader(cfg, logger)
	encoder := appoutbox.JSONEventEncoder{}

	commandBus := commands.NewInMemoryBus()
	commands.RegisterHandler(commandBus, bookingapp.RequestBookingCommand{}.Key(), &bookingapp.RequestBookingHandler{
		UoWFactory: factory,
		Outbox:     box,
		Encoder:    encoder,
	})
	commands.RegisterHandler(commandBus, bookingapp.TransitionBookingCommand{}.Key(), &bookingapp.TransitionBookingHandler{
		Outbox:  box,
		Encoder: encoder,
		Logger:  logger,
	})
	commands.RegisterHandler(commandBus, propertiesapp.CreateHostPropertyCommand{}.Key(), &propertiesapp.CreateHostPropertyHandler{Logger: logger})
	commands.RegisterHandler(commandBus, propertiesapp.UpdateHostPropertyCommand{}.Key(), &propertiesapp.UpdateHostPropertyHandler{Logger: logger})
	commands.RegisterHandler(commandBus, propertiesapp.SetPricingCommand{}.Key(), &propertiesapp.SetPricingHandler{Logger: logger})
	commands.RegisterHandler(commandBus, propertiesapp.PublishHostPropertyCommand{}.Key(), &propertiesapp.PublishHostPropertyHandler{Logger: logger})
	commands.RegisterHandler(commandBus, propertiesapp.UnpublishHostPropertyCommand{}.Key(), &propertiesapp.UnpublishHostPropertyHandler{Logger: logger})
	commands.RegisterHandler(commandBus, propertiesapp.UploadPropertyPhotoCommand{}.Key(), &propertiesapp.UploadPropertyPhotoHandler{
		Logger:   logger,
		Uploader: uploader,
	})
	commands.RegisterHandler(commandBus, propertiesapp.AddAvailabilityCommand{}.Key(), &propertiesapp.AddAvailabilityHandler{Logger: logger})
	commands.RegisterHandler(commandBus, propertiesapp.RemoveAvailabilityCommand{}.Key(), &propertiesapp.RemoveAvailabilityHandler{Logger: logger})
	commands.RegisterHandler(commandBus, propertiesapp.BlockDatesCommand{}.Key(), &propertiesapp.BlockDatesHandler{Logger: logger})
	commands.RegisterHandler(commandBus, propertiesapp.UnblockDatesCommand{}.Key(), &propertiesapp.UnblockDatesHandler{Logger: logger})
	commands.RegisterHandler(commandBus, reviewsapp.SubmitReviewCommand{}.Key(), &reviewsapp.SubmitReviewHandler{
		UoWFactory: factory,
		Logger:     logger,
	})

	queryBus := queries.NewInMemoryBus()
	queries.RegisterHandler(queryBus, availabilityapp.CheckQuery{}.Key(), &availabilityapp.CheckHandler{UoWFactory: factory})
	queries.RegisterHandler(queryBus, availabilityapp.GetCalendarQuery{}.Key(), &availabilityapp.GetCalendarHandler{UoWFactory: factory})
	queries.RegisterHandler(queryBus, propertiesapp.SearchCatalogQuery{}.Key(), &propertiesapp.SearchCatalogHandler{UoWFactory: factory})
	queries.RegisterHandler(queryBus, propertiesapp.GetOverviewQuery{}.Key(), &propertiesapp.GetOverviewHandler{UoWFactory: factory})
	queries.RegisterHandler(queryBus, propertiesapp.ListHostPropertiesQuery{}.Key(), &propertiesapp.ListHostPropertiesHandler{UoWFactory: factory})
	queries.RegisterHandler(queryBus, propertiesapp.GetHostPropertyQuery{}.Key(), &propertiesapp.GetHostPropertyHandler{UoWFactory: factory})
	queries.RegisterHandler(queryBus, bookingapp.ListHostBookingsQuery{}.Key(), &bookingapp.ListHostBookingsHandler{
		UoWFactory: factory,
		Logger:     logger,
	})
	queries.RegisterHandler(queryBus, meapp.ListGuestBookingsQuery{}.Key(), &meapp.ListGuestBookingsHandler{
		UoWFactory: factory,
		Logger:     logger,
	})
	queries.RegisterHandler(queryBus, reviewsapp.ListPropertyReviewsQuery{}.Key(), &reviewsapp.ListPropertyReviewsHandler{
		UoWFactory: factory,
		Logger:     logger,
	})

	validator := validation.NewStructValidator()

	commandPipeline := middleware.ChainCommands(
		commandBus,
		middleware.Validation(validator),
		middleware.Idempotency(idemStore, nil),
		middleware.Transaction(factory, nil),
		middleware.OutboxFlush(box),
	)
	queryPipeline := middleware.ChainQueries(
		queryBus,
		middleware.QueryValidation(validator),
	)

	app.handlers = ginserver.Handlers{
		Auth:         ginserver.AuthHandler{Service: authService, Logger: logger},
		Property:     ginserver.PropertyHandler{Queries: queryPipeline},
		Booking:      ginserver.BookingHandler{Commands: commandPipeline, Logger: logger},
		HostProperty: ginserver.HostPropertyHandler{Commands: commandPipeline, Queries: queryPipeline, Logger: logger},
		HostBooking:  ginserver.HostBookingHandler{Commands: commandPipeline, Queries: queryPipeline, Logger: logger},
		Me:           ginserver.MeHandler{Queries: queryPipeline, Logger: logger},
		Reviews:      ginserver.ReviewsHandler{Commands: commandPipeline, Logger: logger},
		Admin:        ginserver.AdminHandler{Commands: commandPipeline, Logger: logger},
		AuthMiddleware: ginserver.AuthMiddleware{
			Service: authService,
			Logger:  logger,
		}.Handle,
	}
	return app, nil
}

// wireEventPipeline starts the outbox relay and the booking notification
// consumer. Both run until the root context is cancelled.
func wireEventPipeline(cfg config.Config, logger *slog.Logger, app *application, store *infraoutbox.Store, client *mongodb.Client, bookings domainbooking.Repository, users domainuser.Repository) error {
	producer, err := kafka.NewProducer(cfg.KafkaBrokers, nil)
	if err != nil {
		return fmt.Errorf("kafka producer: %w", err)
	}
	app.closers = append(app.closers, producer.Close)

	worker := &infraoutbox.Worker{
		Store:       store,
		Producer:    producer,
		Interval:    cfg.OutboxPollInterval,
		TopicPrefix: cfg.KafkaTopicPrefix,
		ID:          "staynest-" + uuid.NewString(),
		Backoff:     cfg.RetryBackoff,
	}
	app.workers = append(app.workers, func(ctx context.Context) {
		if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("outbox worker stopped", "error", err)
		}
	})

	consumerHandler := &notify.BookingEventsConsumer{
		Dedupe:   inbox.NewStore(client.DB, "notifications"),
		Bookings: bookings,
		Users:    users,
		Notifier: buildNotifier(cfg, logger),
		Logger:   logger,
	}
	consumer, err := kafka.NewConsumer(cfg.KafkaBrokers, "staynest-notifications", nil, consumerHandler)
	if err != nil {
		return fmt.Errorf("kafka consumer: %w", err)
	}
	app.closers = append(app.closers, consumer.Close)

	topics := []string{cfg.KafkaTopicPrefix + "booking.events.v1"}
	app.workers = append(app.workers, func(ctx context.Context) {
		if err := consumer.Run(ctx, topics); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("notification consumer stopped", "error", err)
		}
	})
	return nil
}

func buildNotifier(cfg config.Config, logger *slog.Logger) policies.Notifier {
	if cfg.SMTPHost == "" {
		return notify.LogNotifier{Logger: logger}
	}
	return notify.NewSMTPNotifier(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.SMTPFrom)
}

func buildUploader(cfg config.Config, logger *slog.Logger) s3.Uploader {
	if cfg.S3Endpoint == "" {
		logger.Warn("object storage not configured, photo uploads disabled")
		return s3.NoopUploader{}
	}
	client, err := s3.NewClient(cfg.S3Endpoint, cfg.S3UseSSL, cfg.S3AccessKey, cfg.S3SecretKey, cfg.S3Bucket, cfg.S3PublicEndpoint, logger)
	if err != nil {
		logger.Error("object storage unavailable, photo uploads disabled", "error", err)
		return s3.NoopUploader{}
	}
	return client
}

func (a *application) loadPropertyFixtures(ctx context.Context, path string, logger *slog.Logger) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logger.Info("property fixtures file not found, skipping", "path", path)
			return nil
		}
		return fmt.Errorf("read fixtures: %w", err)
	}
	if len(data) == 0 {
		logger.Warn("property fixtures file empty", "path", path)
		return nil
	}

	var fixtures []propertyFixture
	if err := json.Unmarshal(data, &fixtures); err != nil {
		return fmt.Errorf("decode fixtures: %w", err)
	}

	now := time.Now().UTC()
	for _, fx := range fixtures {
		prop, err := buildFixtureProperty(fx, now)
		if err != nil {
			logger.Error("fixture invalid", "property_id", fx.ID, "error", err)
			continue
		}
		if err := a.properties.Save(ctx, prop); err != nil {
			logger.Error("cannot store fixture property", "property_id", fx.ID, "error", err)
			continue
		}
		logger.Info("property fixture imported", "property_id", prop.ID)
	}
	return nil
}

func buildFixtureProperty(fx propertyFixture, now time.Time) (*domainproperty.Property, error) {
	prop, err := domainproperty.New(domainproperty.CreateParams{
		ID:           domainproperty.ID(fx.ID),
		Host:         domainproperty.HostID(fx.Host),
		Title:        fx.Title,
		Description:  fx.Description,
		PropertyType: fx.PropertyType,
		Address: domainproperty.Address{
			Line1:   fx.Address.Line1,
			Line2:   fx.Address.Line2,
			City:    fx.Address.City,
			Region:  fx.Address.Region,
			Country: fx.Address.Country,
			Lat:     fx.Address.Lat,
			Lon:     fx.Address.Lon,
		},
		Amenities: append([]string(nil), fx.Amenities...),
		MaxGuests: fx.MaxGuests,
		Pricing: domainproperty.PricingSchedule{
			BasePrice:              money.Rupees(fx.BasePrice),
			CleaningFee:            money.Rupees(fx.CleaningFee),
			ServiceFee:             money.Rupees(fx.ServiceFee),
			TaxRatePercent:         fx.TaxRatePercent,
			MinimumStayNights:      fx.MinimumStayNights,
			MaximumStayNights:      fx.MaximumStayNights,
			WeeklyDiscountPercent:  fx.WeeklyDiscountPercent,
			MonthlyDiscountPercent: fx.MonthlyDiscountPercent,
		},
		Now: now,
	})
	if err != nil {
		return nil, err
	}

	for _, window := range fx.Availability {
		start, err := time.Parse("2006-01-02", window.StartDate)
		if err != nil {
			return nil, fmt.Errorf("availability start %q: %w", window.StartDate, err)
		}
		end, err := time.Parse("2006-01-02", window.EndDate)
		if err != nil {
			return nil, fmt.Errorf("availability end %q: %w", window.EndDate, err)
		}
		if err := prop.AddAvailability(start, end, now); err != nil {
			return nil, err
		}
	}

	if fx.Published {
		if err := prop.Publish(now); err != nil {
			return nil, err
		}
	}
	return prop, nil
}

type propertyFixture struct {
	ID                     string          `json:"id"`
	Host                   string          `json:"host"`
	Title                  string          `json:"title"`
	Description            string          `json:"description"`
	PropertyType           string          `json:"property_type"`
	Address                fixtureAddress  `json:"address"`
	Amenities              []string        `json:"amenities"`
	MaxGuests              int             `json:"max_guests"`
	BasePrice              int64           `json:"base_price"`
	CleaningFee            int64           `json:"cleaning_fee"`
	ServiceFee             int64           `json:"service_fee"`
	TaxRatePercent         int             `json:"tax_rate_percent"`
	MinimumStayNights      int             `json:"minimum_stay_nights"`
	MaximumStayNights      int             `json:"maximum_stay_nights"`
	WeeklyDiscountPercent  int             `json:"weekly_discount_percent"`
	MonthlyDiscountPercent int             `json:"monthly_discount_percent"`
	Availability           []fixtureWindow `json:"availability"`
	Published              bool            `json:"published"`
}

type fixtureAddress struct {
	Line1   string  `json:"line1"`
	Line2   string  `json:"line2"`
	City    string  `json:"city"`
	Region  string  `json:"region"`
	Country string  `json:"country"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
}

type fixtureWindow struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

func defaultPropertyFixturesPath() string {
	candidates := []string{
		filepath.Join("data", "properties.json"),
		filepath.Join("backend", "data", "properties.json"),
	}
	for _, candidate := range candidates {
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return candidates[0]
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
