package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/GarageLink/GarageLink/internal/api"
	"github.com/GarageLink/GarageLink/internal/common/config"
	"github.com/GarageLink/GarageLink/internal/common/httpx"
	"github.com/GarageLink/GarageLink/internal/common/logger"
	"github.com/GarageLink/GarageLink/internal/common/middleware"
	"github.com/GarageLink/GarageLink/internal/common/tracing"
	"github.com/GarageLink/GarageLink/internal/home"
	"github.com/GarageLink/GarageLink/internal/payment"
	"github.com/GarageLink/GarageLink/internal/prefs"
)

var (
	configPath = flag.String("config", "configs/garage-app.json", "配置文件路径")
	consulKey  = flag.String("consul-key", "", "从 Consul KV 加载配置的键（优先于本地文件）")
	buyPlan    = flag.String("buy-plan", "", "购买指定订阅方案后退出")
)

func main() {
	flag.Parse()

	// 加载配置：优先 Consul KV，其次本地 JSON 文件
	var cfg *config.Config
	var err error
	if *consulKey != "" {
		base := config.GetConfig()
		cfg, err = config.LoadConfigFromConsulKV(base.Consul.Host, base.Consul.Port, *consulKey)
	} else {
		cfg, err = config.LoadConfig(*configPath)
	}
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}

	// 初始化日志
	log, err := logger.NewLogger(logger.Options{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
		Path:   cfg.Log.Path,
	})
	if err != nil {
		panic(fmt.Sprintf("failed to init logger: %v", err))
	}

	// 初始化链路追踪
	tracer, closer, err := tracing.InitTracer(
		cfg.App.Name,
		cfg.Jaeger.Endpoint,
		cfg.Jaeger.Sampler,
	)
	if err != nil {
		log.Warnf("failed to init tracer: %v", err)
	} else {
		defer closer.Close()
	}
	_ = tracer

	// 本地偏好（语言、保养间隔、会话 token）
	store, err := prefs.Open(cfg.Prefs.Path)
	if err != nil {
		log.Fatalf("failed to open prefs store: %v", err)
	}
	if store.Get(prefs.KeyLanguage) == "" && cfg.App.DefaultLanguage != "" {
		if err := store.SetLanguage(cfg.App.DefaultLanguage); err != nil {
			log.Warnf("failed to persist default language: %v", err)
		}
	}

	// REST 客户端
	httpClient := httpx.New(httpx.Options{
		BaseURL:      cfg.API.BaseURL,
		Timeout:      time.Duration(cfg.API.TimeoutSeconds) * time.Second,
		MaxFailures:  cfg.API.MaxFailures,
		ResetTimeout: time.Duration(cfg.API.ResetSeconds) * time.Second,
		Tokens:       store,
		Logger:       log,
	})
	apiClient := api.New(httpClient)

	// 主屏控制器
	ctrl := home.NewController(apiClient, log, home.Options{
		SearchLimiter: middleware.NewSlidingWindow(
			time.Duration(cfg.API.SearchWindow)*time.Second,
			cfg.API.SearchMax,
		),
		OnUnauthorized: func() {
			log.Warn("no active trial or subscription, redirecting to subscription screen")
		},
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Duration(cfg.API.TimeoutSeconds)*time.Second)
	defer cancel()

	// 订阅购买模式：走 下单 → 网关确认 → 回验 后退出
	if *buyPlan != "" {
		flow := payment.NewFlow(apiClient, payment.NewStripeGateway(cfg.Payment.GatewayKey), log)
		if err := flow.Purchase(ctx, *buyPlan); err != nil {
			log.Fatalf("subscription purchase failed: %v", err)
		}
		log.Infof("subscription %s is now active", *buyPlan)
		return
	}

	// 启动刷新一轮看板
	ctrl.Refresh(ctx)

	if ctrl.Unauthorized() {
		log.Warn("account is not authorized, nothing to show")
		return
	}

	if d := ctrl.Dashboard(); d != nil {
		log.Infof("dashboard: %d customers, %d vehicles, %d services",
			d.TotalCustomers, d.TotalVehicles, d.TotalServices)
	}
	log.Infof("loaded %d customers, language=%s, service interval=%dkm",
		len(ctrl.Customers()), store.Language(), store.ServiceInterval())
}
