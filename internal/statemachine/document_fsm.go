package statemachine

import (
	"context"
	"fmt"

	"github.com/looplab/fsm"
	"github.com/ncnwin/backoffice-api/internal/models"
)

// DocumentFSM wraps a document with its state machine
type DocumentFSM struct {
	document *models.Document
	fsm      *fsm.FSM
}

// NewDocumentFSM creates a new document state machine
func NewDocumentFSM(document *models.Document) *DocumentFSM {
	dfsm := &DocumentFSM{
		document: document,
	}

	dfsm.fsm = fsm.NewFSM(
		document.Status,
		fsm.Events{
			// draft → issued
			{Name: "issue", Src: []string{models.DocumentStatusDraft}, Dst: models.DocumentStatusIssued},

			// issued → paid (invoices only, guarded by MayMarkPaid)
			{Name: "mark_paid", Src: []string{models.DocumentStatusIssued}, Dst: models.DocumentStatusPaid},

			// draft/issued → cancelled
			{Name: "cancel", Src: []string{models.DocumentStatusDraft, models.DocumentStatusIssued}, Dst: models.DocumentStatusCancelled},
		},
		fsm.Callbacks{},
	)

	return dfsm
}

// Issue transitions the document to issued state
func (d *DocumentFSM) Issue(ctx context.Context) error {
	if !d.document.MayIssue() {
		return fmt.Errorf("document cannot be issued in current state: %s", d.document.Status)
	}

	if err := d.fsm.Event(ctx, "issue"); err != nil {
		return fmt.Errorf("failed to issue document: %w", err)
	}

	d.document.Status = d.fsm.Current()
	return nil
}

// MarkPaid transitions an issued invoice to paid state
func (d *DocumentFSM) MarkPaid(ctx context.Context) error {
	if !d.document.MayMarkPaid() {
		return fmt.Errorf("document cannot be marked paid in current state: %s", d.document.Status)
	}

	if err := d.fsm.Event(ctx, "mark_paid"); err != nil {
		return fmt.Errorf("failed to mark document paid: %w", err)
	}

	d.document.Status = d.fsm.Current()
	return nil
}

// Cancel transitions the document to cancelled state
func (d *DocumentFSM) Cancel(ctx context.Context) error {
	if !d.document.MayCancel() {
		return fmt.Errorf("document cannot be cancelled in current state: %s", d.document.Status)
	}

	if err := d.fsm.Event(ctx, "cancel"); err != nil {
		return fmt.Errorf("failed to cancel document: %w", err)
	}

	d.document.Status = d.fsm.Current()
	return nil
}

// Current returns the current state
func (d *DocumentFSM) Current() string {
	return d.fsm.Current()
}
