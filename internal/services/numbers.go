package services

import (
	"crypto/rand"
	"math/big"
	"time"
)

const (
	TransactionPrefix       = "TRX-"
	ExtensionPaymentPrefix  = "PAY-EXT-"
	InterestPaymentPrefix   = "PAY-INT-"
	RedemptionPaymentPrefix = "PAY-PYM-"

	numberSuffixLength = 4
	numberCharset      = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// CodeGenerator returns the random suffix of a transaction or payment number.
type CodeGenerator func() string

func generateSecureCode() string {
	code := make([]byte, numberSuffixLength)
	charsetLen := big.NewInt(int64(len(numberCharset)))

	for i := range code {
		n, _ := rand.Int(rand.Reader, charsetLen)
		code[i] = numberCharset[n.Int64()]
	}

	return string(code)
}

// formatNumber renders PREFIX-YYYYMMDD-XXXX.
func formatNumber(prefix string, at time.Time, suffix string) string {
	return prefix + at.Format("20060102") + "-" + suffix
}
