package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"hash"
	"net/http"
	"strings"

	"github.com/stripe/stripe-go/webhook"

	"github.com/thigam/Nishukishe-Back-End-sub002/internal/domain"
)

// ErrEventIgnored marks an authentic callback that does not settle a payment.
var ErrEventIgnored = errors.New("event does not settle a payment")

// Notification is a verified provider statement about one payment.
type Notification struct {
	Provider  string
	Reference string
	Success   bool
}

// WebhookVerifier authenticates one provider's callback and extracts the
// outcome. Signature failures wrap domain.ErrInvalidSignature.
type WebhookVerifier interface {
	Verify(payload []byte, header http.Header) (Notification, error)
}

// Webhooks maps provider names to their verifiers. Providers without an
// entry cannot be settled by callback.
type Webhooks map[string]WebhookVerifier

func (w Webhooks) Verify(provider string, payload []byte, header http.Header) (Notification, error) {
	name := strings.ToLower(strings.TrimSpace(provider))
	v, ok := w[name]
	if !ok {
		return Notification{}, fmt.Errorf("%w: %q", domain.ErrWebhookNotConfigured, provider)
	}
	n, err := v.Verify(payload, header)
	if err != nil {
		return Notification{}, err
	}
	n.Provider = name
	return n, nil
}

// StripeWebhook checks the Stripe-Signature header and maps PaymentIntent
// events to the intent id the card adapter stored as reference.
type StripeWebhook struct {
	secret string
}

func NewStripeWebhook(secret string) *StripeWebhook {
	return &StripeWebhook{secret: secret}
}

func (v *StripeWebhook) Verify(payload []byte, header http.Header) (Notification, error) {
	if v.secret == "" {
		return Notification{}, fmt.Errorf("%w: no secret configured", domain.ErrInvalidSignature)
	}
	event, err := webhook.ConstructEvent(payload, header.Get("Stripe-Signature"), v.secret)
	if err != nil {
		return Notification{}, fmt.Errorf("%w: %v", domain.ErrInvalidSignature, err)
	}

	var success bool
	switch event.Type {
	case "payment_intent.succeeded":
		success = true
	case "payment_intent.payment_failed", "payment_intent.canceled":
	default:
		return Notification{}, ErrEventIgnored
	}

	if event.Data == nil {
		return Notification{}, domain.Validationf("stripe event %s has no object", event.ID)
	}
	id, _ := event.Data.Object["id"].(string)
	if id == "" {
		return Notification{}, domain.Validationf("stripe event %s has no payment intent id", event.ID)
	}
	return Notification{Reference: id, Success: success}, nil
}

// CheckoutPageWebhook checks the x-paystack-signature header, an HMAC-SHA512
// of the body keyed with the secret key.
type CheckoutPageWebhook struct {
	secret string
}

func NewCheckoutPageWebhook(secretKey string) *CheckoutPageWebhook {
	return &CheckoutPageWebhook{secret: secretKey}
}

type checkoutPageEvent struct {
	Event string `json:"event"`
	Data  struct {
		Reference string `json:"reference"`
		Status    string `json:"status"`
	} `json:"data"`
}

func (v *CheckoutPageWebhook) Verify(payload []byte, header http.Header) (Notification, error) {
	if err := checkHMAC(sha512.New, v.secret, payload, header.Get("X-Paystack-Signature")); err != nil {
		return Notification{}, err
	}

	var ev checkoutPageEvent
	if err := json.Unmarshal(payload, &ev); err != nil {
		return Notification{}, domain.Validationf("decode checkout callback: %v", err)
	}

	var success bool
	switch ev.Event {
	case "charge.success":
		success = true
	case "charge.failed":
	default:
		return Notification{}, ErrEventIgnored
	}
	if ev.Data.Reference == "" {
		return Notification{}, domain.Validationf("checkout callback has no reference")
	}
	return Notification{Reference: ev.Data.Reference, Success: success}, nil
}

// MobileMoneyWebhook checks X-Callback-Signature, an HMAC-SHA256 of the body
// keyed with the secret shared with the mobile money gateway.
type MobileMoneyWebhook struct {
	secret string
}

func NewMobileMoneyWebhook(secret string) *MobileMoneyWebhook {
	return &MobileMoneyWebhook{secret: secret}
}

type mobileMoneyCallback struct {
	Reference string `json:"reference"`
	Status    string `json:"status"`
}

func (v *MobileMoneyWebhook) Verify(payload []byte, header http.Header) (Notification, error) {
	if err := checkHMAC(sha256.New, v.secret, payload, header.Get("X-Callback-Signature")); err != nil {
		return Notification{}, err
	}

	var cb mobileMoneyCallback
	if err := json.Unmarshal(payload, &cb); err != nil {
		return Notification{}, domain.Validationf("decode mobile money callback: %v", err)
	}
	if cb.Reference == "" {
		return Notification{}, domain.Validationf("mobile money callback has no reference")
	}

	switch strings.ToLower(cb.Status) {
	case "success", "completed":
		return Notification{Reference: cb.Reference, Success: true}, nil
	case "failed", "cancelled":
		return Notification{Reference: cb.Reference}, nil
	default:
		return Notification{}, ErrEventIgnored
	}
}

// SignHMAC returns the hex signature the HMAC verifiers expect.
func SignHMAC(h func() hash.Hash, secret string, payload []byte) string {
	return hex.EncodeToString(macSum(h, secret, payload))
}

func macSum(h func() hash.Hash, secret string, payload []byte) []byte {
	mac := hmac.New(h, []byte(secret))
	mac.Write(payload)
	return mac.Sum(nil)
}

func checkHMAC(h func() hash.Hash, secret string, payload []byte, signature string) error {
	if secret == "" {
		return fmt.Errorf("%w: no secret configured", domain.ErrInvalidSignature)
	}
	if signature == "" {
		return fmt.Errorf("%w: missing signature", domain.ErrInvalidSignature)
	}
	got, err := hex.DecodeString(strings.TrimSpace(signature))
	if err != nil {
		return fmt.Errorf("%w: malformed signature", domain.ErrInvalidSignature)
	}
	if !hmac.Equal(got, macSum(h, secret, payload)) {
		return fmt.Errorf("%w: signature mismatch", domain.ErrInvalidSignature)
	}
	return nil
}
