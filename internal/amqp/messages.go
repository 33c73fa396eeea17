package amqp

import (
	"encoding/json"
	"time"
)

// PaymentApprovedMessage is the event that triggers debt distribution:
// a payment against one debt envelope has been approved upstream.
// Amounts travel as cents, never as decimals.
type PaymentApprovedMessage struct {
	EnvelopeID  int64     `json:"envelope_id"`
	AmountCents int64     `json:"amount_cents"`
	ApprovedAt  time.Time `json:"approved_at"`
	Timestamp   time.Time `json:"timestamp"`
}

func NewPaymentApprovedMessage(envelopeID, amountCents int64, approvedAt time.Time) *PaymentApprovedMessage {
	return &PaymentApprovedMessage{
		EnvelopeID:  envelopeID,
		AmountCents: amountCents,
		ApprovedAt:  approvedAt,
		Timestamp:   time.Now(),
	}
}

func (m *PaymentApprovedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func PaymentApprovedMessageFromJSON(data []byte) (*PaymentApprovedMessage, error) {
	var msg PaymentApprovedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// DebtPaidOffMessage announces that one debt item's balance reached
// zero, for downstream bookkeeping and notifications.
type DebtPaidOffMessage struct {
	ItemID     int64     `json:"item_id"`
	EnvelopeID int64     `json:"envelope_id"`
	PaidOffAt  time.Time `json:"paid_off_at"`
	Timestamp  time.Time `json:"timestamp"`
}

func NewDebtPaidOffMessage(itemID, envelopeID int64, paidOffAt time.Time) *DebtPaidOffMessage {
	return &DebtPaidOffMessage{
		ItemID:     itemID,
		EnvelopeID: envelopeID,
		PaidOffAt:  paidOffAt,
		Timestamp:  time.Now(),
	}
}

func (m *DebtPaidOffMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func DebtPaidOffMessageFromJSON(data []byte) (*DebtPaidOffMessage, error) {
	var msg DebtPaidOffMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
