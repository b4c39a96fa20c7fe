package bootstrap

import (
	"context"
	"fmt"
	"net/http"

	"github.com/krobus00/dex-offer-service/internal/config"
	httpHandler "github.com/krobus00/dex-offer-service/internal/handler/offer/http"
	"github.com/krobus00/dex-offer-service/internal/infrastructure"
	"github.com/krobus00/dex-offer-service/internal/repository"
	"github.com/krobus00/dex-offer-service/internal/service/offergateway"
	"github.com/krobus00/dex-offer-service/internal/util"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func StartOfferGateway(cmd *cobra.Command, args []string) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	offerDB, err := infrastructure.NewPostgresConnection(ctx, config.Env.Database["offer"])
	util.ContinueOrFatal(err)
	infrastructure.StartPostgresHealthCheck(ctx, offerDB, config.Env.Database["offer"].PingInterval)

	nc, js, err := infrastructure.NewJetstream()
	util.ContinueOrFatal(err)

	var locks offergateway.RequestLockStore
	var lockStore *offergateway.RedisRequestLockStore
	if cacheDSN := config.Env.Redis["lock"].CacheDSN; cacheDSN != "" {
		lockStore, err = offergateway.NewRedisRequestLockStore(cacheDSN)
		util.ContinueOrFatal(err)
		locks = lockStore
	}

	intentRepo := repository.NewOfferIntentRepository(offerDB)
	offerGatewayService := offergateway.NewOfferGatewayService(intentRepo, js, locks)

	err = offerGatewayService.JetstreamEventInit(ctx)
	util.ContinueOrFatal(err)

	offerHTTPHandler := httpHandler.NewOfferHTTPHandler(offerGatewayService)
	httpMux := http.NewServeMux()
	offerHTTPHandler.Register(httpMux)

	httpPort := fmt.Sprintf(":%s", config.Env.Port["offer_gateway_http"])
	httpServer := infrastructure.NewHTTPServerWithConfig(infrastructure.HTTPServerConfig{
		Addr:            httpPort,
		ShutdownTimeout: config.Env.GracefulShutdownTimeout,
	}, httpMux)

	go func() {
		err := httpServer.Start()
		if err != nil {
			logrus.Error(err)
		}
	}()
	logrus.Info(fmt.Sprintf("http server started on %s", httpPort))

	shutdownOps := map[string]operation{
		"offer database": func(ctx context.Context) error {
			cancel()
			return offerDB.Close()
		},
		"http": func(ctx context.Context) error {
			return httpServer.Shutdown(ctx)
		},
		"nats connection": func(ctx context.Context) error {
			return infrastructure.CloseJetstream(nc)
		},
	}
	if lockStore != nil {
		shutdownOps["redis lock store"] = func(ctx context.Context) error {
			return lockStore.Close()
		}
	}

	wait := gracefulShutdown(ctx, config.Env.GracefulShutdownTimeout, shutdownOps)

	<-wait
}
