package main

import (
	"fmt"
	"os"
	"time"

	"github.com/liangdas/mqant"
	"github.com/liangdas/mqant/module"
	"github.com/liangdas/mqant/registry"
	"github.com/liangdas/mqant/registry/consul"
	"github.com/nats-io/nats.go"

	docs "rpg-backend/docs/game"
	"rpg-backend/internal/modules/game"
	"rpg-backend/internal/pkg/config"
	"rpg-backend/internal/pkg/log"
	"rpg-backend/internal/pkg/notify"
)

// @title           RPG Progression API
// @version         1.0
// @description     章节关卡进度、战斗会话签发与结算校验

// @host      localhost
// @BasePath  /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description 输入格式: Bearer {token}

func main() {
	log.Init(log.ParseLevel(config.GetEnvOrDefault("LOG_LEVEL", "info")), config.GetEnvOrDefault("APP_ENV", "development"))
	logger := log.GetLogger()
	logger.Info("[Main] RPG game server starting", "version", "1.0.0")

	consulAddr := config.GetEnvOrDefault("CONSUL_ADDRESS", "localhost:8500")
	natsAddr := config.GetEnvOrDefault("NATS_ADDRESS", "localhost:4222")
	configPath := config.GetEnvOrDefault("GAME_CONFIG_PATH", "./configs/server/game-server.json")

	nc, err := nats.Connect("nats://"+natsAddr,
		nats.MaxReconnects(10),
		nats.ReconnectWait(1*time.Second),
	)
	if err != nil {
		logger.Error("[Main] Failed to connect to NATS", err, "address", natsAddr)
		os.Exit(1)
	}
	notify.SetNatsConn(nc)
	logger.Info("[Main] Connected to NATS", "address", natsAddr)

	docs.SwaggerInfo.Host = ""
	docs.SwaggerInfo.BasePath = "/api/v1"
	docs.SwaggerInfo.Schemes = []string{"http"}

	rs := consul.NewRegistry(func(options *registry.Options) {
		options.Addrs = []string{consulAddr}
	})

	app := mqant.CreateApp(
		module.Configure(configPath),
		module.Debug(false),
		module.Nats(nc),
		module.Registry(rs),
	)

	if err := app.Run(game.Module()); err != nil {
		fmt.Fprintf(os.Stderr, "game server stopped: %v\n", err)
		os.Exit(1)
	}
}
