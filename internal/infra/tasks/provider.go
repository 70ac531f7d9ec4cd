package tasks

import (
	"context"
	"log/slog"

	"projectbasis/config"
	"projectbasis/internal/domain/lifecycle"
	"projectbasis/internal/domain/service"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
)

const defaultAppName = "celery"

// Params holds dependencies for the TaskQueue, injected by Fx
type Params struct {
	fx.In
	fx.Lifecycle

	Config *config.Config
	Logger *slog.Logger
}

// NewTaskQueue creates a TaskQueue from the celery settings. Without a broker
// URL a no-op queue is returned.
func NewTaskQueue(params Params) (service.TaskQueue, error) {
	cfg := params.Config.Celery
	logger := params.Logger

	if cfg == nil || cfg.BrokerURL == "" {
		logger.Info("Task broker not configured, using no-op queue")

		return &noopQueue{logger: logger}, nil
	}

	appName := cfg.AppName
	if appName == "" {
		appName = defaultAppName
	}

	broker, err := newClient(cfg.BrokerURL)
	if err != nil {
		return nil, errors.Wrap(err, "broker url")
	}

	backend := broker
	if cfg.BackendURL != "" && cfg.BackendURL != cfg.BrokerURL {
		backend, err = newClient(cfg.BackendURL)
		if err != nil {
			return nil, errors.Wrap(err, "backend url")
		}
	}

	clients := []*redis.Client{broker}
	if backend != broker {
		clients = append(clients, backend)
	}

	params.Append(fx.Hook{
		OnStart: func(startCtx context.Context) error {
			ctx, cancel := context.WithTimeout(startCtx, lifecycle.DefaultTimeout)
			defer cancel()

			for _, client := range clients {
				if err := client.Ping(ctx).Err(); err != nil {
					return errors.Wrapf(err, "failed to ping redis at %s", client.Options().Addr)
				}
			}

			logger.Info("Task broker connected", slog.String("queue", appName))

			return nil
		},
		OnStop: func(_ context.Context) error {
			var closeErr error
			for _, client := range clients {
				if err := client.Close(); err != nil && closeErr == nil {
					closeErr = errors.WithStack(err)
				}
			}

			return closeErr
		},
	})

	return NewRedisQueue(broker, backend, appName, logger), nil
}

func newClient(url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return redis.NewClient(opts), nil
}

// Module provides the task queue FX module
//
//nolint:gochecknoglobals
var Module = fx.Options(
	fx.Provide(NewTaskQueue),
)
