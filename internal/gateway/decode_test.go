package gateway

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wppops/asat-validator/pkg/types"
)

const samplePayload = `{
	"orderDetails": {
		"orderStatus": "Completed",
		"orderHistory": [
			{"eventType": "Order created", "eventDescription": "created"},
			{"eventType": "Workflow error", "eventDescription": "V041: conflicting order for article"}
		]
	},
	"article": {"id": "PD987654", "doi": "10.1000/xyz123"},
	"journal": {"name": "Journal of Testing", "revenueModel": "OA"},
	"paymentDetails": {"paymentMethod": "Invoice", "totalChargedAmount": 2500.00}
}`

func TestDecodeOrderPayload(t *testing.T) {
	detail, err := DecodeOrderPayload("400100200", []byte(samplePayload))

	require.NoError(t, err)
	assert.Equal(t, "400100200", detail.OrderID)
	assert.Equal(t, "Completed", detail.OrderStatus)
	assert.Equal(t, "PD987654", detail.ArticleID)
	assert.Equal(t, "10.1000/xyz123", detail.ArticleDOI)
	assert.Equal(t, "Journal of Testing", detail.JournalName)
	assert.Equal(t, types.RevenueModelOA, detail.RevenueModel)
	assert.Equal(t, types.PaymentMethodInvoice, detail.PaymentMethod)
	assert.Equal(t, "2500", detail.TotalCharged.String())
	assert.True(t, detail.HasError)
	assert.Equal(t, types.ErrorCodeV041, detail.ErrorCode)
}

func TestDecodeOrderPayload_MissingOrderDetails(t *testing.T) {
	_, err := DecodeOrderPayload("400100200", []byte(`{"article":{"id":"PD1"}}`))

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrBadPayload)
}

func TestDecodeOrderPayload_Malformed(t *testing.T) {
	_, err := DecodeOrderPayload("400100200", []byte(`{"orderDetails": [`))

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrBadPayload)
}

func TestScanHistoryForError(t *testing.T) {
	tests := []struct {
		name     string
		history  []historyEvent
		wantErr  bool
		wantCode string
	}{
		{
			name:    "no error events",
			history: []historyEvent{{EventType: "Order created"}, {EventType: "Order completed"}},
		},
		{
			name: "v041 by substring",
			history: []historyEvent{
				{EventType: "Workflow Error", EventDescription: "failed with V041 conflict"},
			},
			wantErr:  true,
			wantCode: "V041",
		},
		{
			name: "short code prefix before colon",
			history: []historyEvent{
				{EventType: "error", EventDescription: "V017: price mismatch on charge line"},
			},
			wantErr:  true,
			wantCode: "V017",
		},
		{
			name: "prose description yields no code",
			history: []historyEvent{
				{EventType: "Processing error", EventDescription: "the backend rejected the submission entirely"},
			},
			wantErr:  true,
			wantCode: "",
		},
		{
			name: "first error event wins",
			history: []historyEvent{
				{EventType: "ERROR", EventDescription: "V010: first"},
				{EventType: "error", EventDescription: "V041 second"},
			},
			wantErr:  true,
			wantCode: "V010",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hasError, code, _ := scanHistoryForError(tt.history)

			assert.Equal(t, tt.wantErr, hasError)
			assert.Equal(t, tt.wantCode, code)
		})
	}
}

func TestHistoryHasCreditMemo(t *testing.T) {
	assert.False(t, historyHasCreditMemo([]historyEvent{{EventType: "Order canceled"}}))
	assert.True(t, historyHasCreditMemo([]historyEvent{
		{EventType: "Order canceled"},
		{EventType: "Credit memo created"},
	}))
}

func TestDecodeSiblings(t *testing.T) {
	payload := &siblingsPayload{Payload: []siblingEntry{
		{OrderUniqueID: "400100200", OrderStatus: types.OrderStatusCanceled, InCancelledState: true}, // the order itself
		{OrderUniqueID: "400100201", OrderStatus: "Completed"},
		{OrderUniqueID: "400100202", OrderStatus: types.OrderStatusCanceled, InCancelledState: true},
		// Status says canceled but the flag disagrees: treated as active
		{OrderUniqueID: "400100203", OrderStatus: types.OrderStatusCanceled, InCancelledState: false},
	}}

	siblings := decodeSiblings(payload, "400100200")

	require.Len(t, siblings, 3)
	assert.Equal(t, types.SiblingOrder{OrderID: "400100201", IsCanceled: false}, siblings[0])
	assert.Equal(t, types.SiblingOrder{OrderID: "400100202", IsCanceled: true}, siblings[1])
	assert.Equal(t, types.SiblingOrder{OrderID: "400100203", IsCanceled: false}, siblings[2])
}

func TestFlexID(t *testing.T) {
	var e siblingEntry
	require.NoError(t, json.Unmarshal([]byte(`{"orderUniqueId": "400100201"}`), &e))
	assert.Equal(t, "400100201", string(e.OrderUniqueID))

	require.NoError(t, json.Unmarshal([]byte(`{"orderUniqueId": 400100202}`), &e))
	assert.Equal(t, "400100202", string(e.OrderUniqueID))

	assert.Error(t, json.Unmarshal([]byte(`{"orderUniqueId": true}`), &e))
}

func TestStripArticlePrefix(t *testing.T) {
	assert.Equal(t, "987654", stripArticlePrefix("PD987654"))
	assert.Equal(t, "987654", stripArticlePrefix("987654"))
	assert.Equal(t, "", stripArticlePrefix("PD"))
}
