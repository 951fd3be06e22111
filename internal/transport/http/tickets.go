package http

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/thigam/Nishukishe-Back-End-sub002/internal/render"
)

// TicketDownloader is the minimal interface needed to serve ticket documents.
type TicketDownloader interface {
	Download(ctx context.Context, purchaseID, token string) (render.Document, error)
}

// HandleTicketDocument returns an HTTP handler for
// GET /bookings/{id}/tickets/pdf?token=.
func HandleTicketDocument(svc TicketDownloader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		doc, err := svc.Download(r.Context(), mux.Vars(r)["id"], r.URL.Query().Get("token"))
		if err != nil {
			writeServiceError(w, r, err)
			return
		}

		w.Header().Set("Content-Type", doc.ContentType)
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", doc.Filename))
		w.Header().Set("Content-Length", strconv.Itoa(len(doc.Body)))
		w.Header().Set("Cache-Control", "no-store")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(doc.Body)
	}
}
