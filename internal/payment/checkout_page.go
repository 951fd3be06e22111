package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/thigam/Nishukishe-Back-End-sub002/internal/domain"
)

// CheckoutPageAdapter initializes a hosted checkout and hands back the page
// the customer is redirected to.
type CheckoutPageAdapter struct {
	baseURL     string
	secretKey   string
	callbackURL string
	hc          *http.Client
}

func NewCheckoutPageAdapter(baseURL, secretKey, callbackURL string, hc *http.Client) *CheckoutPageAdapter {
	if hc == nil {
		hc = http.DefaultClient
	}
	return &CheckoutPageAdapter{
		baseURL:     strings.TrimRight(baseURL, "/"),
		secretKey:   secretKey,
		callbackURL: callbackURL,
		hc:          hc,
	}
}

type initializeRequest struct {
	Email       string            `json:"email"`
	Amount      int64             `json:"amount"`
	Currency    string            `json:"currency"`
	Reference   string            `json:"reference"`
	CallbackURL string            `json:"callback_url,omitempty"`
	Channels    []string          `json:"channels,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

type initializeResponse struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    struct {
		AuthorizationURL string `json:"authorization_url"`
		AccessCode       string `json:"access_code"`
		Reference        string `json:"reference"`
	} `json:"data"`
}

func (a *CheckoutPageAdapter) Initiate(ctx context.Context, req Request) (Instructions, error) {
	if req.CustomerEmail == "" {
		return Instructions{}, domain.Validationf("checkout page payments require an email")
	}

	body := initializeRequest{
		Email:       req.CustomerEmail,
		Amount:      req.Amount.Minor(),
		Currency:    req.Currency,
		Reference:   req.PaymentID,
		CallbackURL: a.callbackURL,
		Metadata:    map[string]string{"purchase_id": req.PurchaseID},
	}
	if req.Channel != "" {
		body.Channels = []string{strings.ToLower(req.Channel)}
	}

	raw, err := postJSON(ctx, a.hc, a.baseURL+"/transaction/initialize", map[string]string{
		"Authorization": "Bearer " + a.secretKey,
	}, body)
	if err != nil {
		return Instructions{}, fmt.Errorf("initialize checkout: %w", err)
	}

	var resp initializeResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return Instructions{}, fmt.Errorf("decode checkout response: %w", err)
	}
	if !resp.Status {
		return Instructions{}, errors.New("initialize checkout: " + resp.Message)
	}

	ref := resp.Data.Reference
	if ref == "" {
		ref = req.PaymentID
	}
	return Instructions{
		Reference:   ref,
		PaymentLink: resp.Data.AuthorizationURL,
		Channel:     req.Channel,
		Message:     resp.Message,
		Response:    raw,
	}, nil
}
