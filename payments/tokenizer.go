// Package payments wraps the card tokenization provider. The gateway never
// sees raw card numbers; the storefront collects them with the provider's
// element and the gateway exchanges billing details for an opaque token.
package payments

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gallerynet/paddle/bidcore"
)

type CardTokenizer struct {
	Client http.Client
	URL    string
	APIKey string
}

type tokenResponse struct {
	ID    string `json:"id"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func NewCardTokenizer(tokenizerURL string, apiKey string) *CardTokenizer {
	return &CardTokenizer{
		Client: http.Client{Timeout: 10 * time.Second},
		URL:    tokenizerURL,
		APIKey: apiKey,
	}
}

// CreateToken exchanges billing details for an opaque payment token. A
// provider error payload is a PaymentError; anything below that is a
// TransportError.
func (c *CardTokenizer) CreateToken(ctx context.Context, card bidcore.CardFields) (string, error) {
	form := url.Values{}
	form.Set("name", card.Name)
	form.Set("address_line1", card.AddressLine1)
	form.Set("address_line2", card.AddressLine2)
	form.Set("address_city", card.AddressCity)
	form.Set("address_state", card.AddressState)
	form.Set("address_zip", card.AddressZip)
	form.Set("address_country", card.AddressCountry)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.URL+"/v1/tokens", strings.NewReader(form.Encode()))
	if err != nil {
		return "", bidcore.TransportError(err)
	}
	req.Header.Add("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Add("Authorization", "Bearer "+c.APIKey)

	res, err := c.Client.Do(req)
	if err != nil {
		return "", bidcore.TransportError(err)
	}
	defer res.Body.Close()

	token := new(tokenResponse)
	if err := json.NewDecoder(res.Body).Decode(&token); err != nil {
		return "", bidcore.TransportError(err)
	}

	if token.Error != nil {
		return "", bidcore.PaymentError(fmt.Sprintf("Stripe error: %s", token.Error.Message))
	}
	if token.ID == "" {
		return "", bidcore.PaymentError("tokenization returned no token")
	}

	return token.ID, nil
}
