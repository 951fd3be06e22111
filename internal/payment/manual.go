package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

const defaultManualInstructions = "Pay at the organizer's desk and quote your booking reference."

// ManualAdapter covers offline payment. It never calls out and always
// succeeds with a static instruction.
type ManualAdapter struct {
	message string
}

func NewManualAdapter(message string) *ManualAdapter {
	if strings.TrimSpace(message) == "" {
		message = defaultManualInstructions
	}
	return &ManualAdapter{message: message}
}

func (a *ManualAdapter) Initiate(_ context.Context, req Request) (Instructions, error) {
	ref := "MANUAL-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:12])
	raw, err := json.Marshal(map[string]string{
		"reference": ref,
		"message":   a.message,
	})
	if err != nil {
		return Instructions{}, fmt.Errorf("encode manual instructions: %w", err)
	}
	return Instructions{
		Reference: ref,
		Channel:   req.Channel,
		Message:   a.message,
		Response:  raw,
	}, nil
}
