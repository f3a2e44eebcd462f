// Package report turns verdicts into the run's output: one self-describing
// JSON object per order, appended line by line to the report file, plus the
// console summary printed when the run ends. Records never reference each
// other; consumers can process any line in isolation.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"

	"github.com/wppops/asat-validator/internal/csvio"
	"github.com/wppops/asat-validator/internal/runner"
	"github.com/wppops/asat-validator/pkg/types"
)

// Resend status values recorded on a report line
const (
	ResendSuccess = "success"
	ResendFailed  = "failed"
)

// Record is one report line: the CSV context the order arrived with, every
// input the decision tree examined, the verdict, and the resend result when
// the order went through the resend phase
type Record struct {
	RunID string `json:"run_id"`

	// Input context
	OrderID          string `json:"order_id"`
	SourceFile       string `json:"source_file,omitempty"`
	RowNumber        int    `json:"row_number,omitempty"`
	ArticleProductID string `json:"article_product_id,omitempty"`
	WorkflowStatus   string `json:"workflow_status,omitempty"`

	// Order echo
	OrderStatus string `json:"order_status"`
	ArticleID   string `json:"article_id,omitempty"`
	ArticleDOI  string `json:"article_doi,omitempty"`
	JournalName string `json:"journal_name,omitempty"`

	// Inputs examined
	HasError               bool            `json:"has_error"`
	ErrorCode              string          `json:"error_code"`
	ErrorDescription       string          `json:"error_description,omitempty"`
	IsV041Error            bool            `json:"is_v041_error"`
	OtherOrdersNotCanceled int             `json:"other_orders_not_canceled"`
	CanceledHasCreditMemo  *bool           `json:"canceled_order_has_credit_memo"` // Null when the lookup never ran
	RevenueModel           string          `json:"revenue_model"`
	PaymentMethod          string          `json:"payment_method"`
	TotalCharged           decimal.Decimal `json:"total_charged"`

	// Decision
	CanResend        bool   `json:"can_resend"`
	Outcome          string `json:"outcome"`
	ValidationReason string `json:"validation_reason"`
	ValidationStep   string `json:"validation_step"`

	// Resend phase; empty unless the order was selected for resend
	ResendStatus string `json:"resend_status,omitempty"`
	ResendError  string `json:"resend_error,omitempty"`
}

// Build assembles the record for one order from its CSV row, its verdict,
// and (when the order was resent) its resend outcome
func Build(runID string, in csvio.Order, v types.Verdict, resent *types.ResendOutcome) Record {
	rec := Record{
		RunID:            runID,
		OrderID:          in.OrderID,
		SourceFile:       in.SourceFile,
		RowNumber:        in.RowNumber,
		ArticleProductID: in.ArticleProductID,
		WorkflowStatus:   in.WorkflowStatus,

		OrderStatus: v.OrderStatus,
		ArticleID:   v.ArticleID,
		ArticleDOI:  v.ArticleDOI,
		JournalName: v.JournalName,

		HasError:               v.HasError,
		ErrorCode:              v.ErrorCode,
		ErrorDescription:       v.ErrorDescription,
		IsV041Error:            v.IsV041,
		OtherOrdersNotCanceled: v.ActiveSiblings,
		RevenueModel:           v.RevenueModel,
		PaymentMethod:          v.PaymentMethod,
		TotalCharged:           v.TotalCharged,

		CanResend:        v.CanResend(),
		Outcome:          string(v.Outcome.Kind),
		ValidationReason: v.ReasonText,
		ValidationStep:   v.Step,
	}

	if v.CreditMemo != nil {
		found := v.CreditMemo.Found
		rec.CanceledHasCreditMemo = &found
	}

	if resent != nil {
		if resent.Success {
			rec.ResendStatus = ResendSuccess
		} else {
			rec.ResendStatus = ResendFailed
			rec.ResendError = resent.FailureMessage
		}
	}

	return rec
}

// DefaultName returns the timestamped report file name used when the
// operator does not pick one
func DefaultName(now time.Time) string {
	return fmt.Sprintf("validation_results_%s.jsonl", now.Format("20060102_150405"))
}

// WriteJSONL writes the records to path, one JSON object per line. The
// parent directory must already exist; the file is created or truncated.
func WriteJSONL(path string, records []Record) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report %s: %w", path, err)
	}

	enc := json.NewEncoder(f)
	for _, rec := range records {
		if err := enc.Encode(rec); err != nil {
			_ = f.Close()
			return fmt.Errorf("write report %s: %w", filepath.Base(path), err)
		}
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("close report %s: %w", path, err)
	}
	return nil
}

// PrintSummary writes the human-readable run summary: totals per outcome,
// then the block/review reasons by frequency
func PrintSummary(w io.Writer, s runner.Summary) {
	fmt.Fprintf(w, "\nValidation summary\n")
	fmt.Fprintf(w, "  Orders evaluated:  %d\n", s.Total)
	fmt.Fprintf(w, "  Approved:          %d\n", s.Approved)
	fmt.Fprintf(w, "  Blocked:           %d\n", s.Blocked)
	fmt.Fprintf(w, "  VIAX review:       %d\n", s.Review)

	if len(s.Reasons) > 0 {
		fmt.Fprintf(w, "  Block/review reasons:\n")
		for _, rc := range s.Reasons {
			fmt.Fprintf(w, "    %4d  %s\n", rc.Count, rc.Reason)
		}
	}
}
