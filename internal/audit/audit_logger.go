package audit

import (
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	EventAccountOpened = "ACCOUNT_OPENED"
	EventAccountClosed = "ACCOUNT_CLOSED"
	EventTopUp         = "TOPUP"
	EventTransfer      = "TRANSFER"
	EventError         = "ERROR"
)

type Event struct {
	Timestamp time.Time         `json:"timestamp"`
	EventType string            `json:"event_type"`
	RecordID  string            `json:"record_id,omitempty"`
	Account   string            `json:"account"`
	Amount    decimal.Decimal   `json:"amount"`
	Status    string            `json:"status"`
	Details   map[string]string `json:"details,omitempty"`
}

// Logger writes one AUDIT record per money movement or account lifecycle change.
type Logger struct {
	log *zap.Logger
	now func() time.Time
}

func NewLogger(log *zap.Logger) *Logger {
	return &Logger{log: log.Named("audit"), now: time.Now}
}

func (a *Logger) LogAccountOpened(iban, userID string) {
	a.write(Event{
		EventType: EventAccountOpened,
		Account:   iban,
		Status:    "SUCCESS",
		Details:   map[string]string{"user_id": userID},
	})
}

func (a *Logger) LogAccountClosed(iban string, topUpsRemoved int64) {
	a.write(Event{
		EventType: EventAccountClosed,
		Account:   iban,
		Status:    "SUCCESS",
		Details:   map[string]string{"topups_removed": strconv.FormatInt(topUpsRemoved, 10)},
	})
}

func (a *Logger) LogTopUp(recordID, iban string, amount, balance decimal.Decimal) {
	a.write(Event{
		EventType: EventTopUp,
		RecordID:  recordID,
		Account:   iban,
		Amount:    amount,
		Status:    "SUCCESS",
		Details:   map[string]string{"balance": balance.String()},
	})
}

func (a *Logger) LogTransfer(recordID, fromIBAN, toIBAN string, amount decimal.Decimal, status string) {
	a.write(Event{
		EventType: EventTransfer,
		RecordID:  recordID,
		Account:   fromIBAN,
		Amount:    amount,
		Status:    status,
		Details:   map[string]string{"to_account": toIBAN},
	})
}

func (a *Logger) LogError(operation, iban string, err error) {
	a.write(Event{
		EventType: EventError,
		Account:   iban,
		Status:    "FAILED",
		Details:   map[string]string{"operation": operation, "error": err.Error()},
	})
}

func (a *Logger) write(event Event) {
	event.Timestamp = a.now()
	a.log.Info("AUDIT", zap.Any("event", event))
}
