package bootstrap

import (
	"context"

	"github.com/krobus00/dex-offer-service/internal/config"
	"github.com/krobus00/dex-offer-service/internal/infrastructure"
	"github.com/krobus00/dex-offer-service/internal/repository"
	"github.com/krobus00/dex-offer-service/internal/service/offergateway"
	"github.com/krobus00/dex-offer-service/internal/util"
	"github.com/spf13/cobra"
)

func StartOfferSubmitWorker(cmd *cobra.Command, args []string) {
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

	err = offerGatewayService.ReconcileBuiltIntents(ctx)
	util.ContinueOrFatal(err)

	err = offerGatewayService.JetstreamEventSubscribe(ctx)
	util.ContinueOrFatal(err)

	shutdownOps := map[string]operation{
		"offer database": func(ctx context.Context) error {
			cancel()
			return offerDB.Close()
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
