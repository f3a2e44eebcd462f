// Package gateway implements the order-management backend client: the three
// read operations validation depends on (order detail, sibling orders by
// article, credit-memo presence) and the single write operation (resend).
//
// # Session
//
// The backend uses cookie sessions. Login posts the credentials once and the
// cookie jar carries the session on every later call:
//
//	client, err := gateway.NewClient(gateway.Config{
//	    BaseURL:   "https://backend.example.com/api",
//	    ResendURL: "https://resend.example.com",
//	    Username:  user,
//	    Password:  pass,
//	    Timeout:   10 * time.Second,
//	})
//	if err != nil {
//	    return err
//	}
//	if err := client.Login(ctx); err != nil {
//	    return err
//	}
//
// A 401/403 from any call yields ErrUnauthorized; callers treat it as fatal
// for the whole run since the session cannot recover.
//
// # Retry
//
// Reads and the login call retry up to MaxRetries times with exponential
// backoff, but only on transient failures: HTTP 429, 5xx, and transport
// errors. Permanent failures (401/403, 404, undecodable payloads) return
// immediately. Resend never retries — a retry after an ambiguous failure
// could double-send an order.
//
// # Caching
//
// Decoded order payloads are held in a bounded LRU keyed by order id.
// Credit-memo checks read the same payloads as order details, so a canceled
// sibling that was itself part of the batch is never fetched twice.
// Concurrent fetches for one id are coalesced through singleflight.
package gateway
