package payment

import (
	"context"
	"fmt"
	"strings"

	"github.com/thigam/Nishukishe-Back-End-sub002/internal/domain"
)

// Config selects which registered providers may be used.
type Config struct {
	// DefaultProvider is used when a request names no method.
	DefaultProvider string
	// Enabled lists provider names that accept payments. Empty enables
	// every registered provider.
	Enabled []string
}

// Route is a canonicalized (provider, channel) pair.
type Route struct {
	Provider string
	Family   Family
	Channel  string
	Method   string
}

// Router dispatches payment attempts through a lookup table built once at
// construction.
type Router struct {
	cfg       Config
	providers map[string]Provider
	enabled   map[string]bool
}

func NewRouter(cfg Config, providers ...Provider) *Router {
	r := &Router{
		cfg:       cfg,
		providers: make(map[string]Provider, len(providers)),
		enabled:   make(map[string]bool, len(cfg.Enabled)),
	}
	for _, p := range providers {
		name := strings.ToLower(strings.TrimSpace(p.Name))
		if name == "" || p.Adapter == nil {
			continue
		}
		p.Name = name
		r.providers[name] = p
	}
	for _, name := range cfg.Enabled {
		name = strings.ToLower(strings.TrimSpace(name))
		if name != "" {
			r.enabled[name] = true
		}
	}
	return r
}

// Resolve canonicalizes a client method/channel pair into a route.
//
// A compound method such as "stripe_card" splits into provider "stripe"
// and forced channel "CARD", overriding the client channel. Mobile money
// without a channel defaults to MOBILE. Channels are upper-cased.
func (r *Router) Resolve(method, channel string) (Route, error) {
	m := strings.ToLower(strings.TrimSpace(method))
	if m == "" {
		m = strings.ToLower(strings.TrimSpace(r.cfg.DefaultProvider))
	}
	if m == "" {
		return Route{}, domain.ErrUnsupportedPaymentMethod
	}
	ch := strings.ToUpper(strings.TrimSpace(channel))

	p, ok := r.providers[m]
	if !ok {
		idx := strings.LastIndex(m, "_")
		if idx <= 0 || idx == len(m)-1 {
			return Route{}, fmt.Errorf("%w: %s", domain.ErrUnsupportedPaymentMethod, method)
		}
		p, ok = r.providers[m[:idx]]
		if !ok {
			return Route{}, fmt.Errorf("%w: %s", domain.ErrUnsupportedPaymentMethod, method)
		}
		ch = strings.ToUpper(m[idx+1:])
	}

	if !r.isEnabled(p.Name) {
		return Route{}, fmt.Errorf("%w: %s is disabled", domain.ErrUnsupportedPaymentMethod, p.Name)
	}
	if ch == "" && p.Family == FamilyMobileMoney {
		ch = ChannelMobile
	}

	return Route{
		Provider: p.Name,
		Family:   p.Family,
		Channel:  ch,
		Method:   m,
	}, nil
}

// Initiate resolves the route and calls the adapter once. Adapter errors are
// returned unchanged; retries are the caller's business.
func (r *Router) Initiate(ctx context.Context, p domain.Payment, req Request) (Instructions, error) {
	route, err := r.Resolve(req.Method, req.Channel)
	if err != nil {
		return Instructions{}, err
	}

	req.Channel = route.Channel
	req.PaymentID = p.ID
	req.PurchaseID = p.PurchaseID
	req.Amount = p.Amount
	if req.Currency == "" {
		req.Currency = p.Currency
	}
	if req.Description == "" {
		req.Description = p.Description
	}

	instr, err := r.providers[route.Provider].Adapter.Initiate(ctx, req)
	if err != nil {
		return Instructions{}, err
	}
	if instr.Channel == "" {
		instr.Channel = route.Channel
	}
	instr.Channel = strings.ToUpper(instr.Channel)
	if instr.Status == "" {
		instr.Status = domain.PaymentStatusPending
	}
	return instr, nil
}

func (r *Router) isEnabled(name string) bool {
	if len(r.enabled) == 0 {
		return true
	}
	return r.enabled[name]
}
