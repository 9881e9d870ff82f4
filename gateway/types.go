package gateway

import (
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/gallerynet/paddle/analytics"
	"github.com/gallerynet/paddle/bidflow"
	"github.com/gallerynet/paddle/database"
	"github.com/gallerynet/paddle/insights"
	"github.com/gallerynet/paddle/lots"
	"github.com/gallerynet/paddle/marketplace"
	"github.com/gallerynet/paddle/payments"
	"github.com/gallerynet/paddle/saleevents"
	relayUtils "github.com/gallerynet/paddle/utils"
)

// Gateway is the storefront-facing HTTP service. It owns the resolver and
// every supporting component the bid flow touches.
type Gateway struct {
	db             *database.DatabaseInterface
	marketplace    *marketplace.MarketplaceClient
	tokenizer      *payments.CardTokenizer
	tracker        *analytics.TrackerMQTT
	events         analytics.Sink
	resolver       *bidflow.Resolver
	lotBoard       *lots.LotBoard
	saleEvents     *saleevents.MultiSaleClient
	insightsServer *insights.InsightsServer
	saleUtils      *relayUtils.SaleUtils
	URL            string
	log            *logrus.Entry
	server         *http.Server
}

type GatewayParams struct {
	URL string

	DbURL          string
	DatabaseParams database.DatabaseOpts
	DbDriver       database.DatabaseDriver

	MarketplaceURL    string
	MarketplaceAPIKey string

	TokenizerURL    string
	TokenizerAPIKey string

	TrackerParams analytics.TrackerMQTTOpts

	SaleEventUrls []string

	InsightsURL string

	RedisURI string

	AppURL string

	PollInterval    time.Duration
	MaxPollAttempts int

	LotCacheTimeout time.Duration
}

type GatewayServerParams struct {
	ReadTimeout       time.Duration
	ReadHeaderTimeout time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
}

// IncrementsResponse lists a sale's bid increments in minor units, lowest
// first.
type IncrementsResponse struct {
	SaleID     string   `json:"sale_id"`
	Increments []string `json:"increments"`
}

// SelectedIncrementResponse is the increment resolved for a requested amount.
type SelectedIncrementResponse struct {
	SaleID              string `json:"sale_id"`
	RequestedMinor      string `json:"requested_minor"`
	SelectedMaxBidMinor string `json:"selected_max_bid_minor"`
}

type HTTPError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}
