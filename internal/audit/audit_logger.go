// Package audit records who changed which pawn transaction.
package audit

import (
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type Event struct {
	Timestamp         time.Time
	EventType         string
	TransactionNumber string
	ActorID           int64
	Amount            decimal.Decimal
	Status            string
	Details           map[string]string
}

type Logger struct {
	logger *zap.Logger
}

func NewLogger(logger *zap.Logger) *Logger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Logger{logger: logger.Named("audit")}
}

func (a *Logger) LogTransactionCreated(transactionNumber string, actorID int64, loanAmount decimal.Decimal, customerID int64) {
	a.log(Event{
		Timestamp:         time.Now(),
		EventType:         "TRANSACTION_CREATED",
		TransactionNumber: transactionNumber,
		ActorID:           actorID,
		Amount:            loanAmount,
		Status:            "SUCCESS",
		Details:           map[string]string{"customer_id": strconv.FormatInt(customerID, 10)},
	})
}

func (a *Logger) LogPayment(transactionNumber, paymentNumber, paymentType string, actorID int64, amount decimal.Decimal) {
	a.log(Event{
		Timestamp:         time.Now(),
		EventType:         "PAYMENT_RECORDED",
		TransactionNumber: transactionNumber,
		ActorID:           actorID,
		Amount:            amount,
		Status:            "SUCCESS",
		Details:           map[string]string{"payment_number": paymentNumber, "payment_type": paymentType},
	})
}

func (a *Logger) LogError(operation string, transactionID, actorID int64, err error) {
	a.log(Event{
		Timestamp:         time.Now(),
		EventType:         "ERROR",
		TransactionNumber: strconv.FormatInt(transactionID, 10),
		ActorID:           actorID,
		Status:            "FAILED",
		Details:           map[string]string{"operation": operation, "error": err.Error()},
	})
}

func (a *Logger) log(e Event) {
	fields := []zap.Field{
		zap.Time("timestamp", e.Timestamp),
		zap.String("event_type", e.EventType),
		zap.String("transaction", e.TransactionNumber),
		zap.Int64("actor_id", e.ActorID),
		zap.String("status", e.Status),
	}
	if !e.Amount.IsZero() {
		fields = append(fields, zap.String("amount", e.Amount.String()))
	}
	for k, v := range e.Details {
		fields = append(fields, zap.String(k, v))
	}
	a.logger.Info("AUDIT", fields...)
}
