package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/thigam/Nishukishe-Back-End-sub002/internal/domain"
)

// MobileMoneyAdapter pushes a payment prompt to the customer's phone
// (STK push). The provider generates the reference; there is no link.
type MobileMoneyAdapter struct {
	baseURL string
	apiKey  string
	hc      *http.Client
}

func NewMobileMoneyAdapter(baseURL, apiKey string, hc *http.Client) *MobileMoneyAdapter {
	if hc == nil {
		hc = http.DefaultClient
	}
	return &MobileMoneyAdapter{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		hc:      hc,
	}
}

type stkPushRequest struct {
	Amount           string `json:"amount"`
	Currency         string `json:"currency"`
	Phone            string `json:"phone"`
	Name             string `json:"name"`
	Email            string `json:"email"`
	AccountReference string `json:"account_reference"`
	Description      string `json:"description,omitempty"`
}

type stkPushResponse struct {
	Reference string `json:"reference"`
	Status    string `json:"status"`
	Message   string `json:"message"`
}

func (a *MobileMoneyAdapter) Initiate(ctx context.Context, req Request) (Instructions, error) {
	if req.CustomerPhone == "" || req.CustomerName == "" || req.CustomerEmail == "" {
		return Instructions{}, domain.Validationf("mobile money payments require phone, name and email")
	}
	phone, err := NormalizeMSISDN(req.CustomerPhone)
	if err != nil {
		return Instructions{}, err
	}

	raw, err := postJSON(ctx, a.hc, a.baseURL+"/stk-push", map[string]string{
		"Authorization": "Bearer " + a.apiKey,
	}, stkPushRequest{
		Amount:           req.Amount.String(),
		Currency:         req.Currency,
		Phone:            phone,
		Name:             req.CustomerName,
		Email:            req.CustomerEmail,
		AccountReference: req.PurchaseID,
		Description:      req.Description,
	})
	if err != nil {
		return Instructions{}, fmt.Errorf("stk push: %w", err)
	}

	var resp stkPushResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return Instructions{}, fmt.Errorf("decode stk push response: %w", err)
	}

	status := domain.PaymentStatusPending
	if strings.EqualFold(resp.Status, "failed") {
		status = domain.PaymentStatusFailed
	}
	return Instructions{
		Reference: resp.Reference,
		Channel:   req.Channel,
		Status:    status,
		Message:   resp.Message,
		Response:  raw,
	}, nil
}

// NormalizeMSISDN converts local phone formats (07XXXXXXXX, +2547XXXXXXXX,
// 7XXXXXXXX) to the 2547XXXXXXXX form mobile money APIs expect.
func NormalizeMSISDN(phone string) (string, error) {
	p := strings.NewReplacer(" ", "", "-", "", "(", "", ")", "").Replace(strings.TrimSpace(phone))
	p = strings.TrimPrefix(p, "+")
	switch {
	case strings.HasPrefix(p, "0") && len(p) == 10:
		p = "254" + p[1:]
	case len(p) == 9 && (p[0] == '7' || p[0] == '1'):
		p = "254" + p
	}
	if len(p) < 10 || len(p) > 15 {
		return "", domain.Validationf("invalid phone number %q", phone)
	}
	for _, r := range p {
		if r < '0' || r > '9' {
			return "", domain.Validationf("invalid phone number %q", phone)
		}
	}
	return p, nil
}
