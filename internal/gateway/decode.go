package gateway

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/wppops/asat-validator/pkg/types"
)

// History event markers the decode layer scans for
const (
	errorEventMarker      = "error"
	creditMemoEventMarker = "Credit memo created"

	// Error descriptions start with a short code before the first colon;
	// anything longer than this is prose, not a code
	maxErrorCodeLen = 10
)

// orderPayload mirrors the backend's order detail response
type orderPayload struct {
	OrderDetails *struct {
		OrderStatus  string         `json:"orderStatus"`
		OrderHistory []historyEvent `json:"orderHistory"`
	} `json:"orderDetails"`
	Article struct {
		ID  string `json:"id"`
		DOI string `json:"doi"`
	} `json:"article"`
	Journal struct {
		Name         string `json:"name"`
		RevenueModel string `json:"revenueModel"`
	} `json:"journal"`
	PaymentDetails struct {
		PaymentMethod      string          `json:"paymentMethod"`
		TotalChargedAmount decimal.Decimal `json:"totalChargedAmount"`
	} `json:"paymentDetails"`
}

type historyEvent struct {
	EventType        string `json:"eventType"`
	EventDescription string `json:"eventDescription"`
}

// siblingsPayload mirrors the backend's by-article order listing
type siblingsPayload struct {
	Payload []siblingEntry `json:"payload"`
}

type siblingEntry struct {
	OrderUniqueID    flexID `json:"orderUniqueId"`
	OrderStatus      string `json:"orderStatus"`
	InCancelledState bool   `json:"inCancelledState"`
}

// flexID decodes an id the backend sends as either a JSON string or a number
type flexID string

func (f *flexID) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*f = flexID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("order id is neither string nor number: %s", b)
	}
	*f = flexID(n.String())
	return nil
}

// DecodeOrderPayload decodes a raw order detail body the same way the live
// client does. Exposed for offline inspection of saved payloads.
func DecodeOrderPayload(orderID string, raw []byte) (*types.OrderDetail, error) {
	var payload orderPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadPayload, err)
	}
	return decodeOrderDetail(orderID, &payload)
}

// decodeOrderDetail maps a raw order payload onto the validation snapshot
func decodeOrderDetail(orderID string, p *orderPayload) (*types.OrderDetail, error) {
	if p.OrderDetails == nil {
		return nil, fmt.Errorf("%w: missing orderDetails", ErrBadPayload)
	}

	detail := &types.OrderDetail{
		OrderID:       orderID,
		OrderStatus:   p.OrderDetails.OrderStatus,
		ArticleID:     p.Article.ID,
		ArticleDOI:    p.Article.DOI,
		JournalName:   p.Journal.Name,
		RevenueModel:  p.Journal.RevenueModel,
		PaymentMethod: p.PaymentDetails.PaymentMethod,
		TotalCharged:  p.PaymentDetails.TotalChargedAmount,
	}
	detail.HasError, detail.ErrorCode, detail.ErrorDescription = scanHistoryForError(p.OrderDetails.OrderHistory)

	if err := detail.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadPayload, err)
	}

	return detail, nil
}

// scanHistoryForError finds the first error event in the order history and
// extracts a short error code from its description
func scanHistoryForError(history []historyEvent) (hasError bool, code, description string) {
	for _, event := range history {
		if !strings.Contains(strings.ToLower(event.EventType), errorEventMarker) {
			continue
		}

		description = event.EventDescription
		if strings.Contains(description, types.ErrorCodeV041) {
			code = types.ErrorCodeV041
		} else if prefix := strings.TrimSpace(strings.SplitN(description, ":", 2)[0]); prefix != "" && len(prefix) < maxErrorCodeLen {
			code = prefix
		}

		return true, code, description
	}

	return false, "", ""
}

// historyHasCreditMemo reports whether the order history records a created
// credit memo
func historyHasCreditMemo(history []historyEvent) bool {
	for _, event := range history {
		if strings.Contains(event.EventType, creditMemoEventMarker) {
			return true
		}
	}
	return false
}

// decodeSiblings maps the by-article listing onto sibling orders, excluding
// the order under evaluation. A sibling counts as canceled only when both
// the status and the cancellation flag say so.
func decodeSiblings(p *siblingsPayload, excludeOrderID string) []types.SiblingOrder {
	siblings := make([]types.SiblingOrder, 0, len(p.Payload))
	for _, entry := range p.Payload {
		id := string(entry.OrderUniqueID)
		if id == "" || id == excludeOrderID {
			continue
		}
		siblings = append(siblings, types.SiblingOrder{
			OrderID:    id,
			IsCanceled: entry.OrderStatus == types.OrderStatusCanceled && entry.InCancelledState,
		})
	}
	return siblings
}

// stripArticlePrefix removes the "PD" prefix article ids carry in order
// payloads; the by-article query expects the bare dhId
func stripArticlePrefix(articleID string) string {
	return strings.TrimPrefix(articleID, "PD")
}
