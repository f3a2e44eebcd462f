// Command rulecheck evaluates the resend decision tree against a saved
// order-payload JSON file, without credentials or a backend. Useful for
// triaging a single order's verdict from a captured payload. V041 orders
// report as blocked fetches here since the sibling lookups need a live
// backend.
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/wppops/asat-validator/internal/gateway"
	"github.com/wppops/asat-validator/internal/rules"
)

func main() {
	log.SetFlags(0)

	if len(os.Args) != 3 {
		log.Fatalf("usage: rulecheck <order-id> <payload.json>")
	}
	orderID, path := os.Args[1], os.Args[2]

	raw, err := os.ReadFile(path)
	if err != nil {
		log.Fatalf("read payload: %v", err)
	}

	detail, err := gateway.DecodeOrderPayload(orderID, raw)
	if err != nil {
		log.Fatalf("decode payload: %v", err)
	}

	verdict := rules.Evaluate(detail, rules.Providers{})

	fmt.Printf("order:         %s\n", verdict.OrderID)
	fmt.Printf("status:        %s\n", verdict.OrderStatus)
	fmt.Printf("has error:     %v", verdict.HasError)
	if verdict.HasError {
		fmt.Printf(" (code %s)", verdict.ErrorCode)
	}
	fmt.Println()
	fmt.Printf("revenue model: %s\n", verdict.RevenueModel)
	fmt.Printf("payment:       %s\n", verdict.PaymentMethod)
	fmt.Printf("charged:       %s\n", verdict.TotalCharged)
	fmt.Printf("outcome:       %s (at %s)\n", verdict.Outcome.Kind, verdict.Step)
	fmt.Printf("reason:        %s\n", verdict.ReasonText)
}
