// Package pacer wraps outgoing HTTP requests with per-endpoint rate limiting
// and retry with exponential backoff. It is aimed at applications that call
// third-party or internal APIs and need to respect request-rate constraints
// while tolerating transient network failures.
//
// # Key Concepts
//
//   - [Strategy] decides how long a caller waits before the next request to
//     an endpoint may go out. Built-ins: [NoOp], [FixedInterval], and
//     [TokenBucket]; any type implementing Wait can be supplied instead.
//   - [Client] holds the shared HTTP session and an endpoint registry mapping
//     exact URLs to strategies. Verbs (Get, Post, Put, Delete) funnel into
//     [Client.Request].
//   - Transport failures (connection errors, timeouts) are retried with
//     exponential backoff and surfaced as a [TransportError] once the attempt
//     budget is exhausted. HTTP responses with 4xx/5xx statuses are returned
//     to the caller as ordinary results, never retried.
//
// # Quick Start
//
//	client := pacer.New()
//	client.ConfigureLimit("https://api.example.com/search", 2*time.Second)
//
//	resp, err := client.Get(ctx, "https://api.example.com/search",
//		pacer.WithRequestRetries(3),
//	)
//
// Endpoint matching is exact-string only. Pattern matching (for example an
// ordered list of matcher/strategy pairs) is a deliberate extension point,
// not implemented here.
package pacer
