package lots

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/gallerynet/paddle/redisStore"
)

var (
	saleIncrementsKey = "sale-increments"
	saleStateKey      = "sale-state"
	positionKey       = "bidder-position"
)

// SaleState is the cached subset of backend sale state the gateway consults
// before letting a bid through.
type SaleState struct {
	SaleID             string `json:"sale_id"`
	Slug               string `json:"slug"`
	Closed             bool   `json:"closed"`
	RegistrationClosed bool   `json:"registration_closed"`
}

// LotBoard caches per-sale increments, sale state and the latest polled
// position snapshot in redis.
type LotBoard struct {
	redisInterface redisStore.RedisInterface
	log            *logrus.Entry
	cacheTimeout   time.Duration
}
