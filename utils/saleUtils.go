package utils

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/gallerynet/paddle/database"
	"github.com/gallerynet/paddle/lots"
	"github.com/gallerynet/paddle/marketplace"
)

// SaleUtils keeps the lot board and the database in step with the
// marketplace's active sales.
type SaleUtils struct {
	db          *database.DatabaseInterface
	marketplace *marketplace.MarketplaceClient

	saleStatus *SaleStatusUtils
}

func NewSaleUtils(db *database.DatabaseInterface, marketplaceClient *marketplace.MarketplaceClient, lotBoard *lots.LotBoard) *SaleUtils {
	salestatus := &SaleStatusUtils{
		LotBoard:  lotBoard,
		SalesLast: make(map[string]lots.SaleState),
		Mu:        sync.Mutex{},
		Log: *logrus.NewEntry(logrus.New()).WithFields(logrus.Fields{
			"package": "SaleUtils",
			"utils":   "SaleStatus",
		}),
	}

	return &SaleUtils{
		db:          db,
		marketplace: marketplaceClient,
		saleStatus:  salestatus,
	}
}

func (saleUtils *SaleUtils) StartUtils() (err error) {

	go saleUtils.SaleUpdate()

	return nil
}

func (saleUtils *SaleUtils) SaleUpdate() {
	for {
		saleUtils.saleStatus.GetSales(*saleUtils.marketplace, *saleUtils.db)
		time.Sleep(SaleRefreshInterval)
	}
}

func (saleStatus *SaleStatusUtils) GetSales(marketplaceClient marketplace.MarketplaceClient, db database.DatabaseInterface) {
	sales, err := marketplaceClient.GetActiveSales(context.Background())
	if err != nil {
		saleStatus.Log.WithError(err).Error("Failed To Get Active Sales")
		return
	}

	saleStatus.Mu.Lock()
	defer saleStatus.Mu.Unlock()

	saleStatus.Log.Infof("Updating %d Sales in Redis...", len(sales))
	saleDatabases := []database.SaleDatabase{}
	for _, sale := range sales {
		saleDatabases = append(saleDatabases, database.SaleDatabase{
			SaleID:             sale.ID,
			Slug:               sale.Slug,
			Closed:             sale.IsClosed,
			RegistrationClosed: sale.IsRegistrationClosed,
			Increments:         sale.BidIncrements,
		})

		state := lots.SaleState{
			SaleID:             sale.ID,
			Slug:               sale.Slug,
			Closed:             sale.IsClosed,
			RegistrationClosed: sale.IsRegistrationClosed,
		}
		if state == saleStatus.SalesLast[sale.ID] {
			continue
		}
		if err = saleStatus.LotBoard.SaveSaleState(state); err != nil {
			saleStatus.Log.WithError(err).Error("failed to set sale state in redis")
		}
		if err = saleStatus.LotBoard.SaveIncrements(sale.ID, sale.BidIncrements); err != nil {
			saleStatus.Log.WithError(err).Error("failed to set sale increments in redis")
		}
		saleStatus.SalesLast[sale.ID] = state
	}

	saleStatus.Log.Infof("Updating %d Sales in Database...", len(sales))
	err = db.PutSales(saleDatabases)
	if err != nil {
		saleStatus.Log.WithError(err).Error("failed to save sales")
	}
}
