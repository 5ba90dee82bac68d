package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/wyfcoding/pkg/cache"
	"github.com/wyfcoding/pkg/config"
	"github.com/wyfcoding/pkg/database"
	"github.com/wyfcoding/pkg/logging"
	"github.com/wyfcoding/pkg/messagequeue/kafka"
	"github.com/wyfcoding/pkg/messagequeue/outbox"
	"github.com/wyfcoding/pkg/metrics"
	"golang.org/x/sync/errgroup"

	accountapp "github.com/wyfcoding/stocktrader/internal/account/application"
	accountdomain "github.com/wyfcoding/stocktrader/internal/account/domain"
	accountmysql "github.com/wyfcoding/stocktrader/internal/account/infrastructure/persistence/mysql"
	accounthttp "github.com/wyfcoding/stocktrader/internal/account/interfaces/http"
	marketdataapp "github.com/wyfcoding/stocktrader/internal/marketdata/application"
	marketdatadomain "github.com/wyfcoding/stocktrader/internal/marketdata/domain"
	marketdatamysql "github.com/wyfcoding/stocktrader/internal/marketdata/infrastructure/persistence/mysql"
	marketdataredis "github.com/wyfcoding/stocktrader/internal/marketdata/infrastructure/persistence/redis"
	marketdatahttp "github.com/wyfcoding/stocktrader/internal/marketdata/interfaces/http"
	orderapp "github.com/wyfcoding/stocktrader/internal/order/application"
	orderdomain "github.com/wyfcoding/stocktrader/internal/order/domain"
	orderclient "github.com/wyfcoding/stocktrader/internal/order/infrastructure/client"
	ordermessaging "github.com/wyfcoding/stocktrader/internal/order/infrastructure/messaging"
	ordermysql "github.com/wyfcoding/stocktrader/internal/order/infrastructure/persistence/mysql"
	orderconsumer "github.com/wyfcoding/stocktrader/internal/order/interfaces/consumer"
	orderhttp "github.com/wyfcoding/stocktrader/internal/order/interfaces/http"
	portfolioapp "github.com/wyfcoding/stocktrader/internal/portfolio/application"
	portfoliodomain "github.com/wyfcoding/stocktrader/internal/portfolio/domain"
	portfoliomysql "github.com/wyfcoding/stocktrader/internal/portfolio/infrastructure/persistence/mysql"
	portfoliohttp "github.com/wyfcoding/stocktrader/internal/portfolio/interfaces/http"
)

var configPath = flag.String("config", "configs/trader/config.toml", "config file path")

func main() {
	flag.Parse()

	// 1. Config
	var cfg config.Config
	if err := config.Load(*configPath, &cfg); err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}

	// 2. Logger
	logCfg := &logging.Config{
		Service:    cfg.Server.Name,
		Module:     "trader",
		Level:      cfg.Log.Level,
		File:       cfg.Log.File,
		MaxSize:    cfg.Log.MaxSize,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAge:     cfg.Log.MaxAge,
		Compress:   cfg.Log.Compress,
	}
	logger := logging.NewFromConfig(logCfg)
	slog.SetDefault(logger.Logger)

	// 3. Metrics
	metricsImpl := metrics.NewMetrics(cfg.Server.Name)
	if cfg.Metrics.Enabled {
		go metricsImpl.ExposeHTTP(cfg.Metrics.Port)
	}

	// 4. Infrastructure
	db, err := database.NewDB(cfg.Data.Database, cfg.CircuitBreaker, logger, metricsImpl)
	if err != nil {
		slog.Error("failed to connect database", "error", err)
		os.Exit(1)
	}

	if cfg.Server.Environment == "dev" {
		if err := db.RawDB().AutoMigrate(
			&orderdomain.Order{}, &orderdomain.OrderHistory{}, &orderdomain.Trade{},
			&accountdomain.Account{}, &accountdomain.AccountTransaction{},
			&portfoliodomain.Position{},
			&marketdatadomain.Security{}, &marketdatadomain.SecurityPrice{},
			&outbox.Message{},
		); err != nil {
			slog.Error("failed to migrate database", "error", err)
		}
	}

	// 5. Kafka & Outbox
	kafkaProducer := kafka.NewProducer(&cfg.MessageQueue.Kafka, logger, metricsImpl)
	outboxMgr := outbox.NewManager(db.RawDB(), logger.Logger)
	pusher := func(ctx context.Context, topic, key string, payload []byte) error {
		return kafkaProducer.PublishToTopic(ctx, topic, []byte(key), payload)
	}
	outboxProcessor := outbox.NewProcessor(outboxMgr, pusher, 100, 2*time.Second)

	redisCache, err := cache.NewRedisCache(&cfg.Data.Redis, cfg.CircuitBreaker, logger, metricsImpl)
	if err != nil {
		slog.Error("failed to init redis", "error", err)
	}
	var quoteCache marketdatadomain.QuoteCache
	if redisCache != nil {
		quoteCache = marketdataredis.NewQuoteRedisCache(redisCache.GetClient())
	}

	// 6. Repositories
	orderRepo := ordermysql.NewOrderRepository(db.RawDB())
	accountRepo := accountmysql.NewAccountRepository(db.RawDB())
	positionRepo := portfoliomysql.NewPositionRepository(db.RawDB())
	securityRepo := marketdatamysql.NewSecurityRepository(db.RawDB())

	// 7. Application
	ledgerSvc := accountapp.NewLedgerService(accountRepo)
	portfolioSvc := portfolioapp.NewPortfolioService(positionRepo)
	marketdataSvc := marketdataapp.NewMarketDataService(securityRepo, quoteCache, logger.Logger)

	mdProvider := orderclient.NewMarketDataProvider(marketdataSvc)
	orderSvc := orderapp.NewOrderService(
		orderRepo,
		orderclient.NewAccountLedgerAdapter(ledgerSvc),
		orderclient.NewHoldingsLedgerAdapter(portfolioSvc),
		mdProvider,
		mdProvider,
		ordermessaging.NewOutboxPublisher(outboxMgr),
		logger.Logger,
	)

	// 8. Consumers
	processingHandler := orderconsumer.NewProcessingHandler(orderSvc.Manager, logger.Logger)
	lifecycleHandler := orderconsumer.NewLifecycleHandler(orderSvc.Manager, logger.Logger)

	processingCfg := cfg.MessageQueue.Kafka
	processingCfg.Topic = orderdomain.TopicProcessingRequests
	processingCfg.GroupID = "trader-order-processing"
	processingConsumer := kafka.NewConsumer(&processingCfg, logger, metricsImpl)
	processingConsumer.Start(context.Background(), 3, processingHandler.Handle)

	lifecycleCfg := cfg.MessageQueue.Kafka
	lifecycleCfg.Topic = orderdomain.TopicOrderEvents
	lifecycleCfg.GroupID = "trader-order-lifecycle"
	lifecycleConsumer := kafka.NewConsumer(&lifecycleCfg, logger, metricsImpl)
	lifecycleConsumer.Start(context.Background(), 3, lifecycleHandler.Handle)

	// 9. Interfaces
	gin.SetMode(gin.ReleaseMode)
	if cfg.Server.Environment == "dev" {
		gin.SetMode(gin.DebugMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())

	api := r.Group("/api")
	orderhttp.NewOrderHandler(orderSvc).RegisterRoutes(api)
	accounthttp.NewAccountHandler(ledgerSvc).RegisterRoutes(api)
	portfoliohttp.NewPortfolioHandler(portfolioSvc).RegisterRoutes(api)
	marketdatahttp.NewMarketDataHandler(marketdataSvc).RegisterRoutes(api)

	// 10. Start
	g, ctx := errgroup.WithContext(context.Background())

	g.Go(func() error {
		outboxProcessor.Start()
		<-ctx.Done()
		outboxProcessor.Stop()
		return nil
	})

	g.Go(func() error {
		addr := fmt.Sprintf(":%d", cfg.Server.HTTP.Port)
		server := &http.Server{Addr: addr, Handler: r}
		slog.Info("HTTP server starting", "addr", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		select {
		case <-quit:
			slog.Info("shutting down servers...")
		case <-ctx.Done():
			slog.Info("context cancelled, shutting down...")
		}
		_ = processingConsumer.Close()
		_ = lifecycleConsumer.Close()
		return nil
	})

	if err := g.Wait(); err != nil {
		slog.Error("server exited with error", "error", err)
	}
}
