// Package render turns a purchase and its tickets into a downloadable
// document.
package render

import (
	"bytes"
	"fmt"
	"text/tabwriter"

	"github.com/thigam/Nishukishe-Back-End-sub002/internal/domain"
)

type Document struct {
	ContentType string
	Filename    string
	Body        []byte
}

// Renderer is a read-only transform; it must not mutate what it is given.
type Renderer interface {
	Render(b domain.Bookable, p domain.Purchase, tickets []domain.Ticket) (Document, error)
}

// TextRenderer produces a plain-text ticket sheet, one row per ticket.
type TextRenderer struct{}

func NewTextRenderer() TextRenderer {
	return TextRenderer{}
}

func (TextRenderer) Render(b domain.Bookable, p domain.Purchase, tickets []domain.Ticket) (Document, error) {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "%s\n", b.Title)
	fmt.Fprintf(&buf, "Booking %s\n", p.ID)
	fmt.Fprintf(&buf, "Purchaser: %s <%s>\n", p.CustomerName, p.CustomerEmail)
	fmt.Fprintf(&buf, "Status: %s / %s\n", p.Status, p.PaymentStatus)
	fmt.Fprintf(&buf, "Total: %s %s\n\n", p.Currency, p.TotalAmount)

	tw := tabwriter.NewWriter(&buf, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "CODE\tPASSENGER\tSEAT\tPRICE")
	for _, t := range tickets {
		seat := t.SeatNumber
		if seat == "" {
			seat = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", t.Code, t.PassengerName, seat, t.Price)
	}
	if err := tw.Flush(); err != nil {
		return Document{}, fmt.Errorf("render tickets: %w", err)
	}

	return Document{
		ContentType: "text/plain; charset=utf-8",
		Filename:    fmt.Sprintf("tickets-%s.txt", p.ID),
		Body:        buf.Bytes(),
	}, nil
}
