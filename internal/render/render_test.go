package render

import (
	"strings"
	"testing"

	"github.com/thigam/Nishukishe-Back-End-sub002/internal/domain"
	"github.com/thigam/Nishukishe-Back-End-sub002/internal/money"
)

func TestTextRenderer_Render(t *testing.T) {
	t.Parallel()

	doc, err := NewTextRenderer().Render(
		domain.Bookable{Title: "Lamu Cultural Festival"},
		domain.Purchase{
			ID:            "pur-1",
			CustomerName:  "Halima",
			CustomerEmail: "halima@example.com",
			Currency:      "KES",
			TotalAmount:   money.FromFloat(3000),
			Status:        domain.PurchaseStatusConfirmed,
			PaymentStatus: domain.PaymentStatePaid,
		},
		[]domain.Ticket{
			{Code: "A1B2C3D4E5F60718", PassengerName: "Halima", SeatNumber: "12A", Price: money.FromFloat(1500)},
			{Code: "0918273645ABCDEF", PassengerName: "Omar", Price: money.FromFloat(1500)},
		},
	)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if doc.Filename != "tickets-pur-1.txt" {
		t.Fatalf("unexpected filename %q", doc.Filename)
	}
	body := string(doc.Body)
	for _, want := range []string{"Lamu Cultural Festival", "KES 3000.00", "A1B2C3D4E5F60718", "12A", "Omar"} {
		if !strings.Contains(body, want) {
			t.Fatalf("expected %q in document:\n%s", want, body)
		}
	}
	if got := strings.Count(body, "1500.00"); got != 2 {
		t.Fatalf("expected 2 ticket prices, got %d", got)
	}
}
