package http

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/thigam/Nishukishe-Back-End-sub002/internal/app"
	"github.com/thigam/Nishukishe-Back-End-sub002/internal/domain"
	"github.com/thigam/Nishukishe-Back-End-sub002/internal/render"
)

var errBoom = errors.New("boom")

type fakeCheckout struct {
	got    app.CheckoutInput
	result app.CheckoutResult
	err    error
}

func (f *fakeCheckout) Checkout(_ context.Context, in app.CheckoutInput) (app.CheckoutResult, error) {
	f.got = in
	return f.result, f.err
}

type fakeHolds struct {
	got       app.PlaceHoldInput
	result    app.PlaceHoldResult
	holds     []domain.Hold
	err       error
	listedFor [2]string
}

func (f *fakeHolds) PlaceHold(_ context.Context, in app.PlaceHoldInput) (app.PlaceHoldResult, error) {
	f.got = in
	return f.result, f.err
}

func (f *fakeHolds) ListHolds(_ context.Context, bookableID, sessionID string) ([]domain.Hold, error) {
	f.listedFor = [2]string{bookableID, sessionID}
	return f.holds, f.err
}

type fakeTickets struct {
	doc render.Document
	err error
}

func (f *fakeTickets) Download(_ context.Context, _, token string) (render.Document, error) {
	if f.err != nil {
		return render.Document{}, f.err
	}
	if token != "secret" {
		return render.Document{}, domain.ErrForbidden
	}
	return f.doc, nil
}

type fakeRefunds struct {
	purchase domain.Purchase
	err      error
	reason   string
	approved *bool
}

func (f *fakeRefunds) RequestRefund(_ context.Context, _ string, reason string) (domain.Purchase, error) {
	f.reason = reason
	return f.purchase, f.err
}

func (f *fakeRefunds) ProcessRefund(_ context.Context, _ string, approved bool) (domain.Purchase, error) {
	f.approved = &approved
	return f.purchase, f.err
}

type fakePayments struct {
	got         app.ConfirmPaymentInput
	gotProvider string
	gotPayload  string
	gotHeader   http.Header
	result      app.ConfirmPaymentResult
	err         error
}

func (f *fakePayments) Confirm(_ context.Context, in app.ConfirmPaymentInput) (app.ConfirmPaymentResult, error) {
	f.got = in
	return f.result, f.err
}

func (f *fakePayments) ConfirmCallback(_ context.Context, provider string, payload []byte, header http.Header) (app.ConfirmPaymentResult, error) {
	f.gotProvider = provider
	f.gotPayload = string(payload)
	f.gotHeader = header
	return f.result, f.err
}

type fakePinger struct {
	err error
}

func (f fakePinger) Ping(context.Context) error {
	return f.err
}

const testAdminToken = "admin-secret"

func newRequest(method, path, body string) *http.Request {
	if body == "" {
		return httptest.NewRequest(method, path, nil)
	}
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

// serve sends the request with the admin bearer token set, so admin routes
// behave like authenticated operator calls.
func serve(t *testing.T, svcs Services, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := newRequest(method, path, body)
	req.Header.Set("Authorization", "Bearer "+testAdminToken)
	return serveRequest(t, svcs, req)
}

func serveRequest(t *testing.T, svcs Services, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	NewRouter(svcs, RouterConfig{
		CORSOrigins: []string{"http://localhost:5173"},
		AdminToken:  testAdminToken,
	}).ServeHTTP(rec, req)
	return rec
}
