package marketplace

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gallerynet/paddle/bidcore"
)

func graphQLServer(t *testing.T, response string, gotRequests *[]graphQLRequest) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		decoded := graphQLRequest{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&decoded))
		if gotRequests != nil {
			*gotRequests = append(*gotRequests, decoded)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(response))
	}))
}

func TestCreateBidderPositionDecodesPositionAndBidder(t *testing.T) {
	requests := []graphQLRequest{}
	server := graphQLServer(t, `{"data":{"createBidderPosition":{"position":{"internalID":"positionid"},"bidder":{"internalID":"new-bidder-id"}}}}`, &requests)
	defer server.Close()

	client := NewMarketplaceClient(server.URL, "test-key")
	result, err := client.CreateBidderPosition(context.Background(), &bidcore.BidSubmission{
		ArtworkID:         "artworkid",
		SaleID:            "saleid",
		MaxBidAmountCents: 5000000,
	})

	require.NoError(t, err)
	assert.Equal(t, "positionid", result.PositionID)
	assert.Equal(t, "new-bidder-id", result.BidderID)

	require.Len(t, requests, 1)
	input := requests[0].Variables["input"].(map[string]any)
	assert.Equal(t, "artworkid", input["artworkID"])
	assert.Equal(t, "saleid", input["saleID"])
	assert.Equal(t, float64(5000000), input["maxBidAmountCents"])
}

func TestGraphQLErrorBecomesMutationError(t *testing.T) {
	server := graphQLServer(t, `{"errors":[{"message":"Sale Closed to Bids."}]}`, nil)
	defer server.Close()

	client := NewMarketplaceClient(server.URL, "")
	_, err := client.CreateBidderPosition(context.Background(), &bidcore.BidSubmission{})

	require.Error(t, err)
	bidErr, ok := err.(*bidcore.BidError)
	require.True(t, ok)
	assert.Equal(t, bidcore.KindMutation, bidErr.Kind)
	assert.Equal(t, []string{"Sale Closed to Bids."}, bidErr.DisplayMessages)
}

func TestUnreachableBackendBecomesTransportError(t *testing.T) {
	server := graphQLServer(t, `{}`, nil)
	server.Close()

	client := NewMarketplaceClient(server.URL, "")
	_, err := client.CreateBidderPosition(context.Background(), &bidcore.BidSubmission{})

	require.Error(t, err)
	bidErr, ok := err.(*bidcore.BidError)
	require.True(t, ok)
	assert.Equal(t, bidcore.KindTransport, bidErr.Kind)
	assert.Equal(t, []string{bidcore.MsgConnectionProblem}, bidErr.DisplayMessages)
}

func TestBidderPositionStatusDecodesSnapshot(t *testing.T) {
	server := graphQLServer(t, `{"data":{"bidderPositionStatus":{"bidderPositionID":"pending-bidder-position-id-from-polling","status":"PENDING","bidderID":"existing-bidder-id"}}}`, nil)
	defer server.Close()

	client := NewMarketplaceClient(server.URL, "")
	snapshot, err := client.BidderPositionStatus(context.Background(), "positionid")

	require.NoError(t, err)
	assert.Equal(t, "pending-bidder-position-id-from-polling", snapshot.PositionID)
	assert.Equal(t, bidcore.StatusPending, snapshot.Status)
	assert.Equal(t, "existing-bidder-id", snapshot.BidderID)
}

func TestGetSaleDecodesIncrements(t *testing.T) {
	server := graphQLServer(t, `{"data":{"sale":{"internalID":"saleid","slug":"saleslug","isClosed":false,"isRegistrationClosed":false,"bidIncrements":["5000000","6000000","7000000"]}}}`, nil)
	defer server.Close()

	client := NewMarketplaceClient(server.URL, "")
	sale, err := client.GetSale(context.Background(), "saleid")

	require.NoError(t, err)
	assert.Equal(t, "saleslug", sale.Slug)
	assert.Equal(t, []string{"5000000", "6000000", "7000000"}, sale.BidIncrements)
}
