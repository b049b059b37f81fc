package server

import (
	"github.com/pwnholic/taskcard/internal/form"
	"github.com/pwnholic/taskcard/internal/render"
	"github.com/pwnholic/taskcard/internal/task"
)

// Workspace pairs the form with the card that displays its published
// record. Every successful submit remounts the card.
type Workspace struct {
	Form *form.Controller
	Card *render.Card
}

func NewWorkspace(ctrl *form.Controller, card *render.Card) *Workspace {
	ctrl.OnPublish(func(d task.TaskData) { card.Mount(d) })
	return &Workspace{Form: ctrl, Card: card}
}

func (w *Workspace) Reset() error {
	if err := w.Form.Reset(); err != nil {
		return err
	}
	w.Card.Unmount()
	return nil
}
