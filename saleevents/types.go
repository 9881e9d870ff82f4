package saleevents

import (
	"net/url"
	"sync"
)

// SaleEventData is one sale lifecycle event from the marketplace stream.
type SaleEventData struct {
	SaleID               string `json:"sale_id"`
	Slug                 string `json:"slug"`
	IsClosed             bool   `json:"is_closed"`
	IsRegistrationClosed bool   `json:"is_registration_closed"`
}

// SaleData holds the latest known lifecycle state per sale.
type SaleData struct {
	Mu    sync.Mutex
	Sales map[string]SaleEventData
}

type saleClient struct {
	endpoint *url.URL
}

// MultiSaleClient subscribes to the sale event stream on every configured
// endpoint. Duplicate events from redundant endpoints collapse into the same
// map entry.
type MultiSaleClient struct {
	Clients  []*saleClient
	SaleData SaleData
}
