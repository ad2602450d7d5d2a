package main

import (
	"net/http"
	"os"
	"time"

	"github.com/fiffu/matchwatch/app"
	"github.com/fiffu/matchwatch/config"
	"github.com/fiffu/matchwatch/footballdata"
	"github.com/fiffu/matchwatch/lib"
	"github.com/fiffu/matchwatch/lib/feed"
	"github.com/fiffu/matchwatch/lib/registry"
	"github.com/fiffu/matchwatch/lib/watcher"
	"github.com/fiffu/matchwatch/senders"
	"github.com/joho/godotenv"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func NewLogger() (*zap.Logger, error) {
	switch os.Getenv("ENVIRONMENT") {
	default:
		return zap.NewDevelopment()

	case "production":
		logCfg := zap.NewProductionConfig()
		logCfg.EncoderConfig.EncodeTime = func(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
			t = t.UTC()
			zapcore.ISO8601TimeEncoder(t, enc)
		}
		return logCfg.Build()
	}
}

func main() {
	godotenv.Load()

	fx.New(
		fx.Provide(NewLogger),
		fx.Provide(config.NewConfig),

		fx.Provide(app.NewDatabase),
		fx.Provide(app.NewTransport),
		fx.Provide(senders.NewSenderRegistry),

		fx.Provide(registry.NewGormRegistry),
		fx.Provide(feed.NewGormStore),

		fx.Provide(footballdata.NewClient),
		fx.Provide(func(c *footballdata.Client) watcher.Source { return c }),

		fx.Provide(watcher.NewDispatcher),
		fx.Provide(watcher.NewWatcher),
		fx.Provide(func(w *watcher.Watcher) lib.Pipeline { return w }),

		fx.Provide(lib.NewService),
		fx.Provide(app.NewAPI),

		fx.Invoke(func(*watcher.Watcher) {}),
		fx.Invoke(func(*http.Server) {}),
	).Run()
}
