// Package resilience provides the retry and concurrency-limiting policies
// used by the request service.
//
//   - Retry runs attempts strictly one after another. A zero InitialBackoff
//     retries immediately.
//   - Bulkhead caps the number of concurrent calls; callers wait for a slot
//     until their context ends.
//
// Example:
//
//	resp, err := resilience.Retry(ctx, resilience.RetryConfig{MaxAttempts: 4},
//	    func(attempt int) (domain.Response, error) { return sender.Send(ctx, req.Clone()) })
package resilience
