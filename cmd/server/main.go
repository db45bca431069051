package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.uber.org/zap"

	_ "github.com/lib/pq"

	"github.com/rifapix/settlement/config"
	"github.com/rifapix/settlement/model"
	"github.com/rifapix/settlement/pkg/cacheclient"
	"github.com/rifapix/settlement/pkg/orgcache"
	"github.com/rifapix/settlement/pkg/otellib"
	"github.com/rifapix/settlement/repository"
	"github.com/rifapix/settlement/service/cleanup"
	"github.com/rifapix/settlement/service/settlement"
	"github.com/rifapix/settlement/webhook"
)

func main() {
	rootCmd := cobra.Command{
		Use: "server",
	}
	rootCmd.AddCommand(
		startServerCommand(),
	)

	err := rootCmd.Execute()
	if err != nil {
		fmt.Println(err)
	}
}

func startServerCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "start the webhook server",
		Run: func(cmd *cobra.Command, args []string) {
			startServer()
		},
	}
}

func startServer() {
	conf := config.Load()
	logger := config.NewLogger(conf.Log)

	tracerProvider, shutdown := otellib.InitOtel("settlement-api", "local", conf.Jaeger)
	defer shutdown()

	otel.SetTracerProvider(tracerProvider)
	otel.SetTextMapPropagator(propagation.TraceContext{})

	db := conf.Postgres.MustConnect()
	repoProvider := repository.NewProvider(db)

	campaignRepo := repository.NewCampaign()
	ticketRepo := repository.NewTicket()
	paymentRepo := repository.NewPayment()
	organizerRepo := repository.NewOrganizer()
	logRepo := repository.NewCleanupLog()

	var shared orgcache.SharedCache
	if conf.Memcache.Enabled {
		client := cacheclient.New(conf.Memcache.Addr(), conf.Memcache.NumConns)
		defer func() { _ = client.Close() }()
		shared = client
	}

	ttl := conf.Providers.OrgConfigTTLSeconds
	if ttl == 0 {
		ttl = 300
	}
	configCache := orgcache.New(
		func(ctx context.Context, organizerID string, providerName string) (model.OrganizerIntegration, error) {
			return organizerRepo.GetIntegration(repoProvider.Readonly(ctx), organizerID, providerName)
		},
		shared, ttl,
	)

	campaignSource := func(ctx context.Context, id string) (model.Campaign, error) {
		return campaignRepo.Get(repoProvider.Readonly(ctx), id)
	}

	engine := settlement.NewEngine(repoProvider, ticketRepo, paymentRepo, logRepo)

	server := webhook.NewServer(logger, engine,
		webhook.NewSuitPayAdapter(campaignSource, configCache.Get),
		webhook.NewStripeAdapter(),
		webhook.NewPixAdapter(),
		webhook.NewPay2mAdapter(),
		webhook.NewFluxsisAdapter(),
	)

	runnerCtx, cancelRunner := context.WithCancel(context.Background())
	defer cancelRunner()
	go startCleanupRunner(runnerCtx, conf, logger, repoProvider, campaignRepo, logRepo)

	httpMux := http.NewServeMux()
	httpMux.Handle("/metrics", promhttp.Handler())
	httpMux.Handle("/", server.Handler())

	startHTTPServer(conf, httpMux)
}

func startCleanupRunner(
	ctx context.Context, conf config.Config, logger *zap.Logger,
	repoProvider repository.Provider,
	campaignRepo repository.Campaign, logRepo repository.CleanupLog,
) {
	interval := time.Duration(conf.Cleanup.IntervalMinutes) * time.Minute
	if interval <= 0 {
		interval = time.Hour
	}
	retention := time.Duration(conf.Cleanup.LogRetentionDays) * 24 * time.Hour
	if retention <= 0 {
		retention = 90 * 24 * time.Hour
	}

	engine := cleanup.NewEngine(repoProvider, campaignRepo, logRepo)
	runner := cleanup.NewRunner(engine, logger, interval, retention)
	runner.Run(otellib.ToContext(ctx, logger))
}

func startHTTPServer(conf config.Config, handler http.Handler) {
	fmt.Println("HTTP:", conf.Server.ListenString())

	httpServer := &http.Server{
		Addr:    conf.Server.ListenString(),
		Handler: handler,
	}

	var wg sync.WaitGroup
	wg.Add(1)

	go func() {
		defer wg.Done()

		err := httpServer.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			panic(err)
		}
		fmt.Println("Shutdown HTTP server successfully")
	}()

	//--------------------------------
	// Graceful Shutdown
	//--------------------------------
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	err := httpServer.Shutdown(ctx)
	if err != nil {
		panic(err)
	}

	wg.Wait()
}
