package statemachine

import (
	"context"
	"testing"

	"github.com/ncnwin/backoffice-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocumentFSM_IssueFromDraft(t *testing.T) {
	doc := &models.Document{DocumentType: models.DocumentTypeInvoice, Status: models.DocumentStatusDraft}

	require.NoError(t, NewDocumentFSM(doc).Issue(context.Background()))
	assert.Equal(t, models.DocumentStatusIssued, doc.Status)
}

func TestDocumentFSM_IssueTwiceFails(t *testing.T) {
	doc := &models.Document{DocumentType: models.DocumentTypeInvoice, Status: models.DocumentStatusIssued}

	err := NewDocumentFSM(doc).Issue(context.Background())
	assert.Error(t, err)
	assert.Equal(t, models.DocumentStatusIssued, doc.Status)
}

func TestDocumentFSM_MarkPaidRequiresIssuedInvoice(t *testing.T) {
	cases := []struct {
		name         string
		documentType string
		status       string
		wantErr      bool
	}{
		{"issued invoice", models.DocumentTypeInvoice, models.DocumentStatusIssued, false},
		{"draft invoice", models.DocumentTypeInvoice, models.DocumentStatusDraft, true},
		{"paid invoice", models.DocumentTypeInvoice, models.DocumentStatusPaid, true},
		{"issued quotation", models.DocumentTypeQuotation, models.DocumentStatusIssued, true},
		{"issued delivery note", models.DocumentTypeDeliveryNote, models.DocumentStatusIssued, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			doc := &models.Document{DocumentType: tc.documentType, Status: tc.status}
			err := NewDocumentFSM(doc).MarkPaid(context.Background())
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, models.DocumentStatusPaid, doc.Status)
			}
		})
	}
}

func TestDocumentFSM_Cancel(t *testing.T) {
	for _, status := range []string{models.DocumentStatusDraft, models.DocumentStatusIssued} {
		doc := &models.Document{DocumentType: models.DocumentTypeInvoice, Status: status}
		require.NoError(t, NewDocumentFSM(doc).Cancel(context.Background()))
		assert.Equal(t, models.DocumentStatusCancelled, doc.Status)
	}
}

func TestDocumentFSM_CancelPaidFails(t *testing.T) {
	doc := &models.Document{DocumentType: models.DocumentTypeInvoice, Status: models.DocumentStatusPaid}

	assert.Error(t, NewDocumentFSM(doc).Cancel(context.Background()))
	assert.Equal(t, models.DocumentStatusPaid, doc.Status)
}

func TestDocumentFSM_CancelCancelledFails(t *testing.T) {
	doc := &models.Document{DocumentType: models.DocumentTypeInvoice, Status: models.DocumentStatusCancelled}

	assert.Error(t, NewDocumentFSM(doc).Cancel(context.Background()))
}
