package utils

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/gallerynet/paddle/lots"
)

var SaleRefreshInterval = 30 * time.Second

// SaleStatusUtils tracks the last state written per sale so unchanged sales
// skip the redis round trip on each refresh.
type SaleStatusUtils struct {
	Log       logrus.Entry
	LotBoard  *lots.LotBoard
	SalesLast map[string]lots.SaleState
	Mu        sync.Mutex
}
