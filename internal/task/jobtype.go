package task

import (
	"encoding/json"
	"fmt"
	"strings"
)

// JobType is the order category: how many products make up one order.
type JobType string

const (
	JobSingle JobType = "SINGLE"
	JobTriple JobType = "TRIPLE"
	JobQuad   JobType = "QUAD"
	JobPenta  JobType = "PENTA"
)

var productCounts = map[JobType]int{
	JobSingle: 1,
	JobTriple: 3,
	JobQuad:   4,
	JobPenta:  5,
}

// JobTypes lists every job type in display order.
func JobTypes() []JobType {
	return []JobType{JobSingle, JobTriple, JobQuad, JobPenta}
}

// ParseJobType accepts the upper- or lower-case name. An empty string yields JobSingle.
func ParseJobType(s string) (JobType, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return JobSingle, nil
	}
	jt := JobType(s)
	if _, ok := productCounts[jt]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownJobType, s)
	}
	return jt, nil
}

func (j JobType) Valid() bool {
	_, ok := productCounts[j]
	return ok
}

func (j JobType) ProductCount() int {
	return productCounts[j]
}

// Label is the form option text, e.g. "1 Pesanan - 3 Produk".
func (j JobType) Label() string {
	return fmt.Sprintf("1 Pesanan - %d Produk", j.ProductCount())
}

func (j JobType) String() string {
	return string(j)
}

func (j *JobType) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	jt, err := ParseJobType(s)
	if err != nil {
		return err
	}
	*j = jt
	return nil
}
