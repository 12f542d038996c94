// Package delivery holds the sinks a rendered brief is posted to.
//
//   - webhook: the primary chat webhook (JSON {"text": ...})
//   - gmail: fallback email through the Gmail API
//   - file: fallback markdown file written to an outbox directory
package delivery
