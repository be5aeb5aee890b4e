package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/sanosuguru/go-festival-cashless/internal/api"
	"github.com/sanosuguru/go-festival-cashless/internal/api/handler"
	custommw "github.com/sanosuguru/go-festival-cashless/internal/api/middleware"
	"github.com/sanosuguru/go-festival-cashless/internal/application"
	"github.com/sanosuguru/go-festival-cashless/internal/config"
	"github.com/sanosuguru/go-festival-cashless/internal/infrastructure/mail"
	"github.com/sanosuguru/go-festival-cashless/internal/infrastructure/payment"
	"github.com/sanosuguru/go-festival-cashless/internal/infrastructure/postgres"
	redisinfra "github.com/sanosuguru/go-festival-cashless/internal/infrastructure/redis"
	"github.com/sanosuguru/go-festival-cashless/internal/pkg/logger"
	"github.com/sanosuguru/go-festival-cashless/internal/pkg/metrics"
	"github.com/sanosuguru/go-festival-cashless/internal/pkg/pii"
	"github.com/sanosuguru/go-festival-cashless/internal/worker"
)

func main() {
	cfg := config.Load()

	// ロガー
	env := os.Getenv("APP_ENV")
	log := logger.NewLogger(env)
	logger.Set(log)
	defer logger.Sync()

	// メトリクス
	m := metrics.Init()

	// データベース
	db, err := postgres.NewConnection(&cfg.Database)
	if err != nil {
		logger.Fatal("データベース接続に失敗しました", zap.Error(err))
	}
	defer db.Close()

	migrationsPath := os.Getenv("MIGRATIONS_PATH")
	if migrationsPath == "" {
		migrationsPath = "migrations"
	}
	if err := postgres.RunMigrations(db.DB, migrationsPath); err != nil {
		logger.Fatal("マイグレーションに失敗しました", zap.Error(err))
	}

	// Redis
	redisClient := redisinfra.NewClient(&cfg.Redis)
	defer redisClient.Close()
	{
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := redisinfra.Ping(ctx, redisClient); err != nil {
			logger.Fatal("Redis接続に失敗しました", zap.Error(err))
		}
		cancel()
	}
	lockManager := redisinfra.NewLockManager(redisClient)
	statsCache := redisinfra.NewStatsCache(redisClient)

	// 個人情報の暗号化
	codec, err := pii.NewAESCodecFromHex(cfg.PII.Key)
	if err != nil {
		logger.Fatal("暗号化キーの読み込みに失敗しました", zap.Error(err))
	}

	// リポジトリ
	txManager := postgres.NewTxManager(db)
	festivalRepo := postgres.NewFestivalRepository(db)
	typeRepo := postgres.NewTicketTypeRepository(db)
	purchaseRepo := postgres.NewPurchaseRepository(db)
	assignedRepo := postgres.NewAssignedTicketRepository(db)
	attendeeRepo := postgres.NewAttendeeRepository(db, codec)
	wristbandRepo := postgres.NewWristbandRepository(db)
	ledgerRepo := postgres.NewLedgerRepository(db)
	statsRepo := postgres.NewStatsRepository(db)

	// 外部サービス
	confirmer := payment.NewStripeConfirmer(cfg.Stripe.APIKey, cfg.Stripe.Currency)
	mailer := mail.NewMailer(&cfg.SMTP)

	// アプリケーションサービス
	lockPolicy := application.LockPolicy{
		TTL:        cfg.Lock.TTL,
		MaxRetries: cfg.Lock.MaxRetries,
		RetryDelay: cfg.Lock.RetryDelay,
	}
	festivalService := application.NewFestivalService(festivalRepo)
	ticketTypeService := application.NewTicketTypeService(typeRepo, festivalRepo)
	purchaseService := application.NewPurchaseService(
		txManager, typeRepo, purchaseRepo, assignedRepo, festivalRepo,
		confirmer, lockManager, lockPolicy, mailer)
	ticketService := application.NewTicketService(txManager, assignedRepo, attendeeRepo, typeRepo)
	wristbandService := application.NewWristbandService(
		txManager, wristbandRepo, ledgerRepo, assignedRepo, lockManager, lockPolicy)
	statsService := application.NewStatsService(statsRepo, festivalRepo, statsCache, cfg.Stats.CacheTTL)

	// Echo
	e := echo.New()
	e.HideBanner = true
	e.Validator = api.NewValidator()
	e.HTTPErrorHandler = api.CustomHTTPErrorHandler
	custommw.SetupMiddleware(e)
	e.Use(custommw.PrometheusMiddleware(m))

	// ハンドラー
	healthHandler := handler.NewHealthHandler()
	festivalHandler := handler.NewFestivalHandler(festivalService)
	ticketTypeHandler := handler.NewTicketTypeHandler(ticketTypeService)
	purchaseHandler := handler.NewPurchaseHandler(purchaseService)
	ticketHandler := handler.NewTicketHandler(ticketService)
	wristbandHandler := handler.NewWristbandHandler(wristbandService)
	statsHandler := handler.NewStatsHandler(statsService)

	// ルーティング
	v1 := e.Group("/api/v1")
	v1.GET("/health", healthHandler.Check)

	v1.POST("/festivals", festivalHandler.Create)
	v1.GET("/festivals", festivalHandler.List)
	v1.GET("/festivals/:id", festivalHandler.GetByID)
	v1.PUT("/festivals/:id/status", festivalHandler.ChangeStatus)
	v1.GET("/festivals/:festival_id/stats", statsHandler.Get)
	v1.POST("/festivals/:festival_id/stats/recompute", statsHandler.Recompute)
	v1.POST("/festivals/:festival_id/ticket-types", ticketTypeHandler.Create)
	v1.GET("/festivals/:festival_id/ticket-types", ticketTypeHandler.ListByFestival)
	v1.GET("/ticket-types/:id", ticketTypeHandler.GetByID)

	v1.POST("/purchases", purchaseHandler.Create)
	v1.GET("/purchases/:id", purchaseHandler.GetByID)
	v1.GET("/purchases/:id/tickets", purchaseHandler.ListTickets)

	v1.POST("/tickets/check-in", ticketHandler.CheckIn)
	v1.GET("/tickets/:id", ticketHandler.GetByID)
	v1.POST("/tickets/:id/nominate", ticketHandler.Nominate)
	v1.POST("/tickets/:id/cancel", ticketHandler.Cancel)
	v1.GET("/tickets/:id/qr", ticketHandler.RenderQR)

	v1.GET("/wristbands/:uid", wristbandHandler.GetByUID)
	v1.POST("/wristbands/:uid/bind", wristbandHandler.Bind)
	v1.POST("/wristbands/:uid/topup", wristbandHandler.TopUp)
	v1.POST("/wristbands/:uid/spend", wristbandHandler.Spend)
	v1.GET("/wristbands/:uid/transactions", wristbandHandler.GetLedger)

	// Prometheusメトリクス（Basic認証付き）
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()), custommw.MetricsBasicAuth())

	// 集計リフレッシャー
	refresher := worker.NewStatsRefresher(statsService, festivalRepo, cfg.Stats.RefreshInterval)
	workerCtx, workerCancel := context.WithCancel(context.Background())
	go refresher.Start(workerCtx)

	// サーバー起動
	go func() {
		if err := e.Start(":" + cfg.Server.Port); err != nil && err != http.ErrServerClosed {
			logger.Fatal("サーバー起動エラー", zap.Error(err))
		}
	}()

	// シグナル待機
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("サーバーをシャットダウンしています...")

	workerCancel()
	refresher.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		logger.Fatal("サーバーシャットダウンエラー", zap.Error(err))
	}

	logger.Info("サーバーが正常にシャットダウンしました")
}
