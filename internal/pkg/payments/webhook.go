package payments

import (
	"encoding/json"
	"errors"
)

// EventTypeSettled is the only gateway event type this service acts on.
const EventTypeSettled = "payment_intent.succeeded"

// SettlementEvent is the normalized "payment succeeded" notification handed to
// the settlement handler. The proposal and admin ids travel as intent metadata
// set at intent-creation time; they are never re-derived.
type SettlementEvent struct {
	ExternalPaymentID string
	ProposalID        string
	AdminID           string
	AmountMinor       int64
	Currency          string
	PaymentMethod     string
	Status            string
}

type webhookEnvelope struct {
	Type string `json:"type"`
	Data struct {
		Object struct {
			ID                 string            `json:"id"`
			Amount             int64             `json:"amount"`
			Currency           string            `json:"currency"`
			Status             string            `json:"status"`
			PaymentMethodTypes []string          `json:"payment_method_types"`
			Metadata           map[string]string `json:"metadata"`
		} `json:"object"`
	} `json:"data"`
}

// ParseWebhookEvent decodes a gateway webhook payload. The second return value
// reports whether the event is a settlement this service cares about; other
// event types are acknowledged but ignored.
func ParseWebhookEvent(payload []byte) (*SettlementEvent, bool, error) {
	var envelope webhookEnvelope
	if err := json.Unmarshal(payload, &envelope); err != nil {
		return nil, false, err
	}
	if envelope.Type != EventTypeSettled {
		return nil, false, nil
	}

	obj := envelope.Data.Object
	if obj.ID == "" {
		return nil, false, errors.New("settlement event is missing the payment intent id")
	}

	ev := &SettlementEvent{
		ExternalPaymentID: obj.ID,
		ProposalID:        obj.Metadata["proposalId"],
		AdminID:           obj.Metadata["adminId"],
		AmountMinor:       obj.Amount,
		Currency:          obj.Currency,
		Status:            obj.Status,
	}
	if len(obj.PaymentMethodTypes) > 0 {
		ev.PaymentMethod = obj.PaymentMethodTypes[0]
	}
	return ev, true, nil
}
