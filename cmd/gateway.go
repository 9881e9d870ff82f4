package cmd

import (
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/gallerynet/paddle/analytics"
	"github.com/gallerynet/paddle/database"
	"github.com/gallerynet/paddle/gateway"
)

func init() {
	rootCmd.AddCommand(gatewayCmd)

	gatewayCmd.Flags().StringVar(&gatewayURL, "gateway-url", gatewayDefaultURL, "listen address for webserver")
	gatewayCmd.Flags().StringSliceVar(&saleEventUrls, "sale-event-uris", defaultSaleEventUrls, "sale event stream endpoints")
	gatewayCmd.Flags().StringVar(&redisURI, "redis-uri", defaultRedisURI, "redis uri")
	gatewayCmd.Flags().StringVar(&postgresURL, "db", defaultPostgresURL, "PostgreSQL DSN")

	gatewayCmd.Flags().StringVar(&maxDBConnections, "max-db-connections", maxDBConnectionsDefault, "Maximum DB Connections")
	gatewayCmd.Flags().StringVar(&maxIdleConnections, "max-idle-connections", maxIdleConnectionsDefault, "Maximum Idle Connections")
	gatewayCmd.Flags().StringVar(&maxTimeConnection, "max-idle-timeout", maxTimeConnectionDefault, "Maximum Idle Timeout")
	gatewayCmd.Flags().StringVar(&dbDriver, "db-driver", dbDriverDefault, "Database Driver")

	gatewayCmd.Flags().StringVar(&marketplaceURL, "marketplace", marketplaceURLDefault, "Marketplace GraphQL URL")
	gatewayCmd.Flags().StringVar(&marketplaceAPIKey, "marketplace-API-Key", marketplaceAPIKeyDefault, "Marketplace API Key")

	gatewayCmd.Flags().StringVar(&tokenizerURL, "tokenizer", tokenizerURLDefault, "Payment Tokenizer URL")
	gatewayCmd.Flags().StringVar(&tokenizerAPIKey, "tokenizer-API-Key", tokenizerAPIKeyDefault, "Payment Tokenizer API Key")

	gatewayCmd.Flags().StringVar(&trackerBroker, "tracker-broker", trackerBrokerDefault, "Tracker Broker URL")
	gatewayCmd.Flags().StringVar(&trackerPort, "tracker-port", trackerPortDefault, "Tracker Port")
	gatewayCmd.Flags().StringVar(&trackerClient, "tracker-client", trackerClientDefault, "Tracker Client ID")
	gatewayCmd.Flags().StringVar(&trackerUserName, "tracker-username", trackerUserNameDefault, "Tracker User Name")
	gatewayCmd.Flags().StringVar(&trackerPassword, "tracker-password", trackerPasswordDefault, "Tracker Password")

	gatewayCmd.Flags().StringVar(&insightsURL, "insights-url", insightsURLDefault, "Insights Server URL")

	gatewayCmd.Flags().StringVar(&appURL, "app-url", appURLDefault, "storefront base URL for redirects")
	gatewayCmd.Flags().StringVar(&pollInterval, "poll-interval", pollIntervalDefault, "Settlement Poll Interval")
	gatewayCmd.Flags().StringVar(&maxPollAttempts, "max-poll-attempts", maxPollAttemptsDefault, "Settlement Poll Attempts")
	gatewayCmd.Flags().StringVar(&lotCacheTimeout, "lot-cache-timeout", lotCacheTimeoutDefault, "Lot Board Cache Timeout")

	gatewayCmd.Flags().StringVar(&readTimeout, "gateway-read-timeout", readTimeoutDefault, "Gateway Read Timeout")
	gatewayCmd.Flags().StringVar(&readHeaderTimeout, "gateway-read-header-timeout", readHeaderTimeoutDefault, "Gateway Read Header Timeout")
	gatewayCmd.Flags().StringVar(&writeTimeout, "gateway-write-timeout", writeTimeoutDefault, "Gateway Write Timeout")
	gatewayCmd.Flags().StringVar(&idleTimeout, "gateway-idle-timeout", idleTimeoutDefault, "Gateway Idle Timeout")

}

var gatewayCmd = &cobra.Command{
	Use:   "gateway",
	Short: "Start the Gateway",
	Run: func(cmd *cobra.Command, args []string) {
		log := *logrus.NewEntry(logrus.New()).WithFields(logrus.Fields{
			"package": "Gateway",
		})

		if len(saleEventUrls) == 0 {
			log.Fatal("no sale event endpoints specified")
		}

		if redisURI == "" {
			log.Fatal("No Redis URL Specified")
		}

		if postgresURL == "" {
			log.Fatal("couldn't read db URL")
		}
		maxConnections, _ := strconv.ParseInt(maxDBConnections, 10, 64)
		maxIdle, _ := strconv.ParseInt(maxIdleConnections, 10, 64)
		maxTimeIdle, _ := time.ParseDuration(maxTimeConnection)
		databaseOpts := &database.DatabaseOpts{
			MaxConnections:        int(maxConnections),
			MaxIdleConnections:    int(maxIdle),
			MaxIdleTimeConnection: maxTimeIdle,
		}
		if marketplaceURL == "" {
			log.Fatal("couldn't read Marketplace URL")
		}

		port, _ := strconv.ParseInt(trackerPort, 10, 64)
		trackerParams := &analytics.TrackerMQTTOpts{
			Broker:   trackerBroker,
			Port:     uint64(port),
			ClientID: trackerClient,
			UserName: trackerUserName,
			Password: trackerPassword,
		}

		interval, _ := time.ParseDuration(pollInterval)
		attempts, _ := strconv.ParseInt(maxPollAttempts, 10, 64)
		cacheTimeout, _ := time.ParseDuration(lotCacheTimeout)

		opts := &gateway.GatewayParams{
			URL: gatewayURL,

			DbURL:          postgresURL,
			DatabaseParams: *databaseOpts,
			DbDriver:       database.DatabaseDriver(dbDriver),

			MarketplaceURL:    marketplaceURL,
			MarketplaceAPIKey: marketplaceAPIKey,

			TokenizerURL:    tokenizerURL,
			TokenizerAPIKey: tokenizerAPIKey,

			TrackerParams: *trackerParams,

			SaleEventUrls: saleEventUrls,

			InsightsURL: insightsURL,

			RedisURI: redisURI,

			AppURL: appURL,

			PollInterval:    interval,
			MaxPollAttempts: int(attempts),

			LotCacheTimeout: cacheTimeout,
		}

		srv, err := gateway.NewGatewayAPI(opts, log)
		if err != nil {
			log.WithError(err).Fatal("failed to create service")
		}

		readTimeoutTime, _ := time.ParseDuration(readTimeout)
		readHeaderTimeoutTime, _ := time.ParseDuration(readHeaderTimeout)
		writeTimeoutTime, _ := time.ParseDuration(writeTimeout)
		idleTimeoutTime, _ := time.ParseDuration(idleTimeout)
		serverParams := &gateway.GatewayServerParams{
			ReadTimeout:       readTimeoutTime,
			ReadHeaderTimeout: readHeaderTimeoutTime,
			WriteTimeout:      writeTimeoutTime,
			IdleTimeout:       idleTimeoutTime,
		}

		log.Infof("Webserver starting on %s ...", srv.URL)
		err = srv.StartServer(serverParams)
		if err != nil {
			log.WithError(err).Fatal("server error")
		}
	},
}
