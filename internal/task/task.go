package task

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// TaskData is the record produced by one form submission. It is never
// modified after New returns; a new submission replaces it wholesale.
type TaskData struct {
	PhoneNumber  string  `json:"phoneNumber"`
	JobType      JobType `json:"jobType"`
	ProductPrice float64 `json:"productPrice"`
	GeneratedAt  string  `json:"generatedAt"`
}

func New(phone string, job JobType, price float64, now time.Time) TaskData {
	return TaskData{
		PhoneNumber:  phone,
		JobType:      job,
		ProductPrice: price,
		GeneratedAt:  FormatTimestamp(now),
	}
}

// Total is the order value: unit price times the job's product count.
func (t TaskData) Total() float64 {
	return t.ProductPrice * float64(t.JobType.ProductCount())
}

// ParsePrice parses a user-entered price. Empty, unparsable, non-finite and
// negative inputs are rejected with ErrInvalidPrice.
func ParsePrice(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidPrice
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0, ErrInvalidPrice
	}
	return v, nil
}
