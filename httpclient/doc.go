// Package httpclient orchestrates hurl's sends.
//
// Service validates each request and hands it to a Sender, the single
// transport port. It adds two policies on top: SendWithRetry re-sends a
// failed request immediately until the retry budget is spent, and
// SendBatch validates a whole batch before sending every member
// concurrently.
//
//	client, _ := transport.New(transport.WithTLS(cfg.TLS))
//	svc := httpclient.NewService(client)
//
//	req, err := httpclient.NewRequestBuilder().
//	    Method("post").
//	    URL("https://api.example.com/items").
//	    Header("Authorization: Bearer t").
//	    Body(`{"name":"widget"}`).
//	    Build()
//	resp, err := svc.SendWithRetry(ctx, req, 2)
//
// The transport subpackage provides the reference Sender; httpclienttest
// provides a scripted one for tests.
package httpclient
