package saleevents

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/r3labs/sse/v2"
	"github.com/sirupsen/logrus"
)

var log = logrus.NewEntry(logrus.New()).WithFields(logrus.Fields{
	"package": "SaleEvents",
})

func NewMultiSaleClient(endpoints []string) (*MultiSaleClient, error) {
	clients := make([]*saleClient, 0, len(endpoints))
	for _, endpoint := range endpoints {
		parsed, err := url.ParseRequestURI(endpoint)
		if err != nil {
			return nil, err
		}
		clients = append(clients, &saleClient{endpoint: parsed})
	}

	return &MultiSaleClient{
		Clients: clients,
		SaleData: SaleData{
			Sales: make(map[string]SaleEventData),
		},
	}, nil
}

// Start subscribes on all endpoints and keeps SaleData current until the
// context is cancelled.
func (m *MultiSaleClient) Start(ctx context.Context) {
	saleChannel := make(chan SaleEventData)
	go m.SubscribeToSaleEvents(ctx, saleChannel)
}

func (m *MultiSaleClient) SubscribeToSaleEvents(ctx context.Context, saleChannel chan SaleEventData) {
	for _, client := range m.Clients {
		go client.subscribeToSaleEvents(ctx, saleChannel)
	}

	for {
		select {
		case <-ctx.Done():
			return
		case saleEvent := <-saleChannel:
			m.SaleData.Mu.Lock()
			m.SaleData.Sales[saleEvent.SaleID] = saleEvent
			m.SaleData.Mu.Unlock()
		}
	}
}

func (m *MultiSaleClient) SaleClosed(saleID string) bool {
	m.SaleData.Mu.Lock()
	defer m.SaleData.Mu.Unlock()
	return m.SaleData.Sales[saleID].IsClosed
}

func (m *MultiSaleClient) RegistrationClosed(saleID string) bool {
	m.SaleData.Mu.Lock()
	defer m.SaleData.Mu.Unlock()
	return m.SaleData.Sales[saleID].IsRegistrationClosed
}

func (c *saleClient) subscribeToSaleEvents(ctx context.Context, saleChannel chan SaleEventData) {
	log.Infof("starting sale events subscription, endpoint %s", c.endpoint.String())
	defer log.Debugf("sale events subscription ended, endpoint %s", c.endpoint.String())

	for {
		client := sse.NewClient(fmt.Sprintf("%s/api/v1/events?topics=sale", c.endpoint.String()))
		err := client.SubscribeRawWithContext(ctx, func(msg *sse.Event) {
			var event SaleEventData
			if err := json.Unmarshal(msg.Data, &event); err != nil {
				log.WithError(err).Warn("sale event subscription failed")
				return
			}
			saleChannel <- event
		})

		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return
		}

		if err != nil {
			log.Error("failed to subscribe to sale events")
			time.Sleep(1 * time.Second)
		}

		log.Warn("saleevents SubscribeRaw ended, reconnecting")
	}
}
