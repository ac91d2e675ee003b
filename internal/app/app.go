// Package app assembles the services from configuration.
package app

import (
	"context"
	"errors"
	"fmt"

	goredis "github.com/go-redis/redis/v8"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/Thanujadevi/EMPOWERHER/internal/config"
	"github.com/Thanujadevi/EMPOWERHER/internal/dispatch/mqtt"
	"github.com/Thanujadevi/EMPOWERHER/internal/logger"
	"github.com/Thanujadevi/EMPOWERHER/internal/model"
	"github.com/Thanujadevi/EMPOWERHER/internal/repository/memory"
	"github.com/Thanujadevi/EMPOWERHER/internal/repository/postgres"
	redisrepo "github.com/Thanujadevi/EMPOWERHER/internal/repository/redis"
	"github.com/Thanujadevi/EMPOWERHER/internal/repository/sqlite"
	"github.com/Thanujadevi/EMPOWERHER/internal/service"
	"github.com/Thanujadevi/EMPOWERHER/internal/sms"
	storage "github.com/Thanujadevi/EMPOWERHER/internal/storage/minio"
	"github.com/Thanujadevi/EMPOWERHER/internal/token"
)

// Platform holds the device services supplied by the host application.
// Any of them may be nil.
type Platform struct {
	Devices     model.Devices
	Contacts    model.ContactsProvider
	Permissions model.PermissionProvider
}

// App owns the long-lived services and the backends behind them.
type App struct {
	cfg      *config.Config
	logger   *logger.Logger
	platform Platform

	Session     *service.SessionStore
	Settings    *service.Settings
	Reports     *service.Reports
	Permissions *service.Permissions

	storage    model.Storage
	dispatcher model.Dispatcher
	closers    []func() error
}

// New connects the configured backends. Unset backends fall back to local
// implementations.
func New(ctx context.Context, cfg *config.Config, logger *logger.Logger, platform Platform) (*App, error) {
	a := &App{cfg: cfg, logger: logger, platform: platform}

	kv, err := sqlite.Open(cfg.StorePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open local store: %w", err)
	}
	a.closers = append(a.closers, kv.Close)

	otpStore, err := a.otpStore(ctx)
	if err != nil {
		return nil, a.fail(err)
	}

	var sender model.SMSSender
	if cfg.SMS.GatewayURL != "" {
		sender = sms.NewGateway(sms.Options{
			BaseURL: cfg.SMS.GatewayURL,
			APIKey:  cfg.SMS.APIKey,
			Sender:  cfg.SMS.Sender,
			Timeout: cfg.SMS.Timeout,
		})
	} else {
		logger.Warn("App: SMS gateway not configured, codes are logged")
		sender = sms.NewLogSender(logger)
	}

	tokens := token.NewJWT(cfg.JWT.Secret)
	otp := service.NewOTP(otpStore, sender, tokens, service.OTPPolicy{
		TTL:         cfg.OTP.TTL,
		MaxAttempts: cfg.OTP.MaxAttempts,
		Length:      cfg.OTP.Length,
	}, logger)

	a.Session = service.NewSessionStore(kv, service.NewLocalAuthenticator(), otp, tokens, logger)
	a.Settings = service.NewSettings(kv, a.Session, platform.Devices.Confirmer, logger)
	if platform.Permissions != nil {
		a.Permissions = service.NewPermissions(platform.Permissions, platform.Devices.Notifier, logger)
	}

	if err := a.connectStorage(ctx); err != nil {
		return nil, a.fail(err)
	}
	if err := a.connectDispatcher(); err != nil {
		return nil, a.fail(err)
	}

	reports, err := a.reportStore(ctx)
	if err != nil {
		return nil, a.fail(err)
	}
	a.Reports = service.NewReports(reports, a.Session, logger)

	return a, nil
}

func (a *App) otpStore(ctx context.Context) (model.OTPStore, error) {
	if a.cfg.Redis.Addr == "" {
		return memory.NewOTPStore(), nil
	}

	client := goredis.NewClient(&goredis.Options{
		Addr:     a.cfg.Redis.Addr,
		Password: a.cfg.Redis.Password,
		DB:       a.cfg.Redis.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	a.closers = append(a.closers, client.Close)
	a.logger.Info("App: OTP store connected", "addr", a.cfg.Redis.Addr)

	return redisrepo.NewOTPStore(client), nil
}

func (a *App) connectStorage(ctx context.Context) error {
	if a.cfg.Storage.Endpoint == "" {
		a.logger.Warn("App: object storage not configured, evidence stays on device")
		return nil
	}

	minioClient, err := minio.New(a.cfg.Storage.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(a.cfg.Storage.AccessKey, a.cfg.Storage.SecretKey, ""),
		Secure: a.cfg.Storage.UseSSL,
	})
	if err != nil {
		return fmt.Errorf("failed to create minio client: %w", err)
	}
	client, err := storage.NewClient(ctx, minioClient, a.cfg.Storage.Bucket)
	if err != nil {
		return fmt.Errorf("failed to initialize storage client: %w", err)
	}
	a.storage = client
	return nil
}

func (a *App) connectDispatcher() error {
	if a.cfg.MQTT.Broker == "" {
		a.logger.Warn("App: MQTT broker not configured, emergencies are not dispatched")
		return nil
	}

	publisher, err := mqtt.Connect(mqtt.Options{
		Broker:      a.cfg.MQTT.Broker,
		ClientID:    a.cfg.MQTT.ClientID,
		Username:    a.cfg.MQTT.Username,
		Password:    a.cfg.MQTT.Password,
		TopicPrefix: a.cfg.MQTT.TopicPrefix,
	})
	if err != nil {
		return err
	}
	a.closers = append(a.closers, func() error {
		publisher.Close()
		return nil
	})
	a.dispatcher = publisher
	return nil
}

func (a *App) reportStore(ctx context.Context) (model.ReportStore, error) {
	if a.cfg.Database.DSN == "" {
		return memory.NewReportStore(), nil
	}

	db, err := postgres.NewConnection(ctx, a.cfg.Database.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize report storage: %w", err)
	}
	a.closers = append(a.closers, db.Close)
	return postgres.NewReportRepository(db), nil
}

// NewEmergency creates an emergency session for the signed-in user. The
// caller must Close it when the emergency screen goes away.
func (a *App) NewEmergency() (*service.EmergencySession, error) {
	user, ok := a.Session.CurrentUser()
	if !ok {
		return nil, model.NewUserError(model.ErrOperationFailed, "Please log in to raise an emergency.", model.ErrNoActiveSession)
	}

	return service.NewEmergencySession(user.ID, a.platform.Devices, a.dispatcher, a.storage, service.EmergencyOptions{
		LocationInterval: a.cfg.Emergency.LocationInterval,
		LocationDistance: a.cfg.Emergency.LocationDistance,
	}, a.logger), nil
}

func (a *App) NewContactSetup() *service.ContactSetup {
	return service.NewContactSetup(a.Session, a.platform.Contacts, a.platform.Devices.Notifier, a.logger)
}

func (a *App) NewVoiceEnrollment() *service.VoiceEnrollment {
	return service.NewVoiceEnrollment(a.Session, a.platform.Devices.Audio, a.platform.Devices.Notifier, a.storage, a.logger)
}

// Close releases backends in reverse order of creation.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

func (a *App) fail(err error) error {
	if closeErr := a.Close(); closeErr != nil {
		a.logger.Error("App: failed to release backends", "error", closeErr.Error())
	}
	return err
}
