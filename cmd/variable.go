package cmd

var (
	gatewayURL         string
	saleEventUrls      []string
	redisURI           string
	postgresURL        string
	maxDBConnections   string
	maxIdleConnections string
	maxTimeConnection  string
	dbDriver           string
	marketplaceURL     string
	marketplaceAPIKey  string
	tokenizerURL       string
	tokenizerAPIKey    string
	trackerBroker      string
	trackerPort        string
	trackerClient      string
	trackerUserName    string
	trackerPassword    string
	insightsURL        string
	appURL             string
	pollInterval       string
	maxPollAttempts    string
	lotCacheTimeout    string
	readTimeout        string
	readHeaderTimeout  string
	writeTimeout       string
	idleTimeout        string
)

var (
	gatewayDefaultURL         = "localhost:9062"
	defaultSaleEventUrls      = []string{"http://localhost:3500"}
	defaultRedisURI           = "redis://localhost:6379"
	defaultPostgresURL        = ""
	maxDBConnectionsDefault   = "100"
	maxIdleConnectionsDefault = "100"
	maxTimeConnectionDefault  = "100s"
	dbDriverDefault           = "postgres"
	marketplaceURLDefault     = ""
	marketplaceAPIKeyDefault  = ""
	tokenizerURLDefault       = ""
	tokenizerAPIKeyDefault    = ""
	trackerBrokerDefault      = ""
	trackerPortDefault        = ""
	trackerClientDefault      = ""
	trackerUserNameDefault    = ""
	trackerPasswordDefault    = ""
	insightsURLDefault        = "localhost:9001"
	appURLDefault             = "https://www.gallerynet.example"
	pollIntervalDefault       = "1s"
	maxPollAttemptsDefault    = "60"
	lotCacheTimeoutDefault    = "60s"
	readTimeoutDefault        = "10s"
	readHeaderTimeoutDefault  = "10s"
	// The bid handler polls settlement inline, so the write timeout must
	// outlast the full poll budget (max-poll-attempts x poll-interval).
	writeTimeoutDefault = "75s"
	idleTimeoutDefault  = "10s"
)

var GatewayVersion = "dev"
