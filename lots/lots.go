package lots

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/gallerynet/paddle/bidcore"
	"github.com/gallerynet/paddle/redisStore"
)

func NewLotBoard(redis redisStore.RedisInterface, cacheTimeout time.Duration) *LotBoard {
	return &LotBoard{
		redisInterface: redis,
		cacheTimeout:   cacheTimeout,
		log: logrus.NewEntry(logrus.New()).WithFields(logrus.Fields{
			"package": "Lots",
		}),
	}
}

func (b *LotBoard) SaveIncrements(saleID string, increments []string) error {
	incrementsKey := fmt.Sprintf("%s-%s", saleIncrementsKey, saleID)
	return b.redisInterface.SetObj(incrementsKey, increments, b.cacheTimeout)
}

func (b *LotBoard) Increments(saleID string) ([]string, error) {
	incrementsKey := fmt.Sprintf("%s-%s", saleIncrementsKey, saleID)
	increments := []string{}
	err := b.redisInterface.GetObj(incrementsKey, &increments)
	if err != nil {
		return nil, err
	}
	return increments, nil
}

// Sale states live in one hash keyed by sale id, so the refresher's bulk
// updates share a single expiring key.
func (b *LotBoard) SaveSaleState(state SaleState) error {
	return b.redisInterface.HSetObj(saleStateKey, state.SaleID, state, b.cacheTimeout)
}

func (b *LotBoard) SaleState(saleID string) (*SaleState, error) {
	value, err := b.redisInterface.Client.HGet(context.Background(), saleStateKey, saleID).Result()
	if err != nil {
		return nil, err
	}

	state := new(SaleState)
	err = json.Unmarshal([]byte(value), state)
	return state, err
}

// SavePositionSnapshot keeps the latest polled snapshot under both the
// original position id and the superseding one, so a storefront holding an
// older id still resolves the current standing.
func (b *LotBoard) SavePositionSnapshot(requestedPositionID string, snapshot *bidcore.BidderPositionStatus) error {
	snapshotKey := fmt.Sprintf("%s-%s", positionKey, snapshot.PositionID)
	if err := b.redisInterface.SetObj(snapshotKey, snapshot, b.cacheTimeout); err != nil {
		return err
	}

	if requestedPositionID == snapshot.PositionID {
		return nil
	}
	requestedKey := fmt.Sprintf("%s-%s", positionKey, requestedPositionID)
	return b.redisInterface.SetObj(requestedKey, snapshot, b.cacheTimeout)
}

func (b *LotBoard) PositionSnapshot(positionID string) (*bidcore.BidderPositionStatus, error) {
	snapshotKey := fmt.Sprintf("%s-%s", positionKey, positionID)
	value, err := b.redisInterface.Client.Get(context.Background(), snapshotKey).Result()
	if err != nil {
		return nil, err
	}

	snapshot := new(bidcore.BidderPositionStatus)
	err = json.Unmarshal([]byte(value), snapshot)
	return snapshot, err
}
