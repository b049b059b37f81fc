package server

import (
	"github.com/pwnholic/taskcard/internal/form"
	"github.com/pwnholic/taskcard/internal/task"
)

type jobOption struct {
	Value    string
	Label    string
	Selected bool
}

// cardView is a TaskData with every field already formatted for display.
type cardView struct {
	PhoneNumber  string `json:"phoneNumber"`
	JobType      string `json:"jobType"`
	JobLabel     string `json:"jobLabel"`
	ProductCount int    `json:"productCount"`
	ProductPrice string `json:"productPrice"`
	Total        string `json:"total"`
	GeneratedAt  string `json:"generatedAt"`
}

type pageView struct {
	Fields     form.Fields
	Jobs       []jobOption
	Card       *cardView
	Generating bool
	Error      string
}

func newCardView(d task.TaskData) *cardView {
	return &cardView{
		PhoneNumber:  d.PhoneNumber,
		JobType:      string(d.JobType),
		JobLabel:     d.JobType.Label(),
		ProductCount: d.JobType.ProductCount(),
		ProductPrice: task.FormatIDR(d.ProductPrice),
		Total:        task.FormatIDR(d.Total()),
		GeneratedAt:  d.GeneratedAt,
	}
}

func newPageView(s form.State, errMsg string) pageView {
	v := pageView{Fields: s.Fields, Generating: s.Generating, Error: errMsg}
	for _, jt := range task.JobTypes() {
		v.Jobs = append(v.Jobs, jobOption{
			Value:    string(jt),
			Label:    jt.Label(),
			Selected: jt == s.Fields.JobType,
		})
	}
	if s.Data != nil {
		v.Card = newCardView(*s.Data)
	}
	return v
}
