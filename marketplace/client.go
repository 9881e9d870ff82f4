package marketplace

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gallerynet/paddle/bidcore"
)

func NewMarketplaceClient(url string, apiKey string) *MarketplaceClient {
	return &MarketplaceClient{
		Client: http.Client{Timeout: 10 * time.Second},
		URL:    url,
		APIKey: apiKey,
	}
}

// do posts one GraphQL document and decodes the data payload into out.
// Network failures come back as TransportError, GraphQL-level errors as
// MutationError with the backend messages verbatim.
func (m *MarketplaceClient) do(ctx context.Context, query string, variables map[string]any, out any) error {
	body, err := json.Marshal(graphQLRequest{Query: query, Variables: variables})
	if err != nil {
		return bidcore.TransportError(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.URL, bytes.NewReader(body))
	if err != nil {
		return bidcore.TransportError(err)
	}
	req.Header.Add("Content-Type", "application/json")
	if m.APIKey != "" {
		req.Header.Add("X-API-KEY", m.APIKey)
	}

	res, err := m.Client.Do(req)
	if err != nil {
		return bidcore.TransportError(err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return bidcore.TransportError(fmt.Errorf("marketplace responded %d", res.StatusCode))
	}

	envelope := new(graphQLEnvelope)
	if err := json.NewDecoder(res.Body).Decode(&envelope); err != nil {
		return bidcore.TransportError(err)
	}

	if len(envelope.Errors) > 0 {
		messages := make([]string, len(envelope.Errors))
		for i, graphErr := range envelope.Errors {
			messages[i] = graphErr.Message
		}
		return bidcore.MutationError(messages...)
	}

	if out != nil {
		if err := json.Unmarshal(envelope.Data, out); err != nil {
			return bidcore.TransportError(err)
		}
	}
	return nil
}

func (m *MarketplaceClient) CreateBidderPosition(ctx context.Context, submission *bidcore.BidSubmission) (*PositionResult, error) {
	variables := map[string]any{
		"input": map[string]any{
			"artworkID":         submission.ArtworkID,
			"maxBidAmountCents": submission.MaxBidAmountCents,
			"saleID":            submission.SaleID,
		},
	}

	data := new(createBidderPositionData)
	if err := m.do(ctx, CreateBidderPositionMutation, variables, data); err != nil {
		return nil, err
	}

	return &PositionResult{
		PositionID: data.CreateBidderPosition.Position.InternalID,
		BidderID:   data.CreateBidderPosition.Bidder.InternalID,
	}, nil
}

func (m *MarketplaceClient) CreateCreditCardAndUpdatePhone(ctx context.Context, token string, phone string) error {
	variables := map[string]any{
		"creditCardInput": map[string]any{"token": token},
		"profileInput":    map[string]any{"phone": phone},
	}

	return m.do(ctx, CreateCreditCardAndUpdatePhoneMutation, variables, new(createCreditCardData))
}

func (m *MarketplaceClient) BidderPositionStatus(ctx context.Context, bidderPositionID string) (*bidcore.BidderPositionStatus, error) {
	variables := map[string]any{"bidderPositionID": bidderPositionID}

	data := new(bidderPositionStatusData)
	if err := m.do(ctx, BidderPositionStatusQuery, variables, data); err != nil {
		return nil, err
	}

	return &bidcore.BidderPositionStatus{
		PositionID: data.BidderPositionStatus.BidderPositionID,
		Status:     bidcore.PositionStatus(data.BidderPositionStatus.Status),
		BidderID:   data.BidderPositionStatus.BidderID,
	}, nil
}

func (m *MarketplaceClient) GetSale(ctx context.Context, saleID string) (*Sale, error) {
	variables := map[string]any{"saleID": saleID}

	data := new(saleData)
	if err := m.do(ctx, SaleIncrementsQuery, variables, data); err != nil {
		return nil, err
	}
	return &data.Sale, nil
}

func (m *MarketplaceClient) GetActiveSales(ctx context.Context) ([]Sale, error) {
	data := new(activeSalesData)
	if err := m.do(ctx, ActiveSalesQuery, nil, data); err != nil {
		return nil, err
	}
	return data.Sales, nil
}
