package marketplace

import (
	"encoding/json"
	"net/http"
)

// MarketplaceClient speaks to the marketplace GraphQL backend that owns
// bidder registration, bid placement and settlement.
type MarketplaceClient struct {
	Client http.Client
	URL    string
	APIKey string
}

type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

type graphQLError struct {
	Message string `json:"message"`
}

type graphQLEnvelope struct {
	Data   json.RawMessage `json:"data"`
	Errors []graphQLError  `json:"errors"`
}

// PositionResult is what a successful createBidderPosition mutation yields.
// BidderID is only present when the mutation registered a new bidder.
type PositionResult struct {
	PositionID string
	BidderID   string
}

// Sale is the subset of sale state the gateway tracks.
type Sale struct {
	ID                   string   `json:"internalID"`
	Slug                 string   `json:"slug"`
	IsClosed             bool     `json:"isClosed"`
	IsRegistrationClosed bool     `json:"isRegistrationClosed"`
	BidIncrements        []string `json:"bidIncrements"`
}

type createBidderPositionData struct {
	CreateBidderPosition struct {
		Position struct {
			InternalID string `json:"internalID"`
		} `json:"position"`
		Bidder struct {
			InternalID string `json:"internalID"`
		} `json:"bidder"`
	} `json:"createBidderPosition"`
}

type createCreditCardData struct {
	CreateCreditCard struct {
		CreditCard struct {
			InternalID string `json:"internalID"`
		} `json:"creditCard"`
	} `json:"createCreditCard"`
	UpdateMyUserProfile struct {
		User struct {
			InternalID string `json:"internalID"`
		} `json:"user"`
	} `json:"updateMyUserProfile"`
}

type bidderPositionStatusData struct {
	BidderPositionStatus struct {
		BidderPositionID string `json:"bidderPositionID"`
		Status           string `json:"status"`
		BidderID         string `json:"bidderID"`
	} `json:"bidderPositionStatus"`
}

type saleData struct {
	Sale Sale `json:"sale"`
}

type activeSalesData struct {
	Sales []Sale `json:"sales"`
}
