package form

import "github.com/pwnholic/taskcard/internal/task"

// Fields are the raw form inputs as the user typed them.
type Fields struct {
	PhoneNumber string       `json:"phoneNumber" form:"phoneNumber"`
	JobType     task.JobType `json:"jobType" form:"jobType"`
	PriceInput  string       `json:"priceInput" form:"priceInput"`
}

// State is a snapshot of the form. Data is nil until the first successful submission.
type State struct {
	Fields     Fields         `json:"fields"`
	Data       *task.TaskData `json:"data,omitempty"`
	Generating bool           `json:"generating"`
}

func (s State) withFields(f Fields) State {
	s.Fields = f
	return s
}

func (s State) generating() State {
	s.Generating = true
	return s
}

func (s State) aborted() State {
	s.Generating = false
	return s
}

func (s State) submitted(d task.TaskData) State {
	s.Data = &d
	s.Generating = false
	return s
}

func (s State) reset() State {
	return State{Fields: Fields{JobType: task.JobSingle}}
}

func (s State) clone() State {
	if s.Data != nil {
		d := *s.Data
		s.Data = &d
	}
	return s
}
