package receipts

import (
	"errors"
	"fmt"
	"math/rand"
	"time"
)

const (
	receiptSuffixLen     = 7
	receiptSuffixCharset = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
)

// Service issues receipt numbers for fee payments. A payment must not be
// recorded unless Issue succeeds first. PDF rendering and the Drive upload
// are disabled; only the transaction id is produced.
type Service struct{}

func NewService() *Service {
	return &Service{}
}

func (s *Service) Issue(studentName string, amount float64, studentUID string) (string, error) {
	if studentName == "" || studentUID == "" {
		return "", errors.New("missing required fields: studentName, studentUid")
	}
	if amount <= 0 {
		return "", errors.New("amount must be greater than 0")
	}

	seededRand := rand.New(rand.NewSource(time.Now().UnixNano()))
	suffix := make([]byte, receiptSuffixLen)
	for i := range suffix {
		suffix[i] = receiptSuffixCharset[seededRand.Intn(len(receiptSuffixCharset))]
	}

	return fmt.Sprintf("TXN%d%s", time.Now().UnixMilli(), suffix), nil
}
