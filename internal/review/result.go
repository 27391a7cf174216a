package review

import (
	"fmt"
	"html"
	"sort"
	"strings"
)

// maxTextLength bounds the plain-text rendering so it fits chat-message
// limits on the clients that display it. maxHTMLLength bounds the panel
// fragment the same way, and maxDataExcerpt caps how much of a list's
// response body is echoed into either rendering.
const (
	maxTextLength  = 2000
	maxHTMLLength  = 4000
	maxDataExcerpt = 256
)

// Response is the outcome of one dispatch request. Message is set only on
// rejection; an accepted request carries the per-list delivery outcomes
// keyed by each list's label.
type Response struct {
	Message string             `json:"message,omitempty"`
	Lists   map[string]Outcome `json:"lists,omitempty"`
}

// Accepted reports whether the transition was applied. Partial or even
// total delivery failure still counts as accepted; the state change and
// the audit entry already happened.
func (r *Response) Accepted() bool {
	return r.Message == ""
}

// sortedLabels returns the outcome keys in a stable order so renderings
// do not shuffle between calls.
func (r *Response) sortedLabels() []string {
	labels := make([]string, 0, len(r.Lists))
	for label := range r.Lists {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	return labels
}

// Text renders the response as plain text suitable for a chat message.
// The output is truncated to fit message limits; the per-list detail is
// best effort, the authoritative record is the audit trail.
func (r *Response) Text() string {
	if !r.Accepted() {
		return "**Request Failed**\n" + r.Message
	}

	var b strings.Builder
	b.WriteString("**Request Complete**\n")
	for _, label := range r.sortedLabels() {
		out := r.Lists[label]
		line := fmt.Sprintf("%s: %s\n", label, outcomeLine(out))
		if b.Len()+len(line) > maxTextLength {
			b.WriteString("...")
			break
		}
		b.WriteString(line)
	}
	return b.String()
}

// HTML renders the response as an HTML fragment for the review panel.
// Every interpolated value is escaped; outcome data from lists is
// attacker-controlled text.
func (r *Response) HTML() string {
	if !r.Accepted() {
		return "<h3>Request Failed</h3><p>" + html.EscapeString(r.Message) + "</p>"
	}

	var b strings.Builder
	b.WriteString("<h3>Request Complete</h3><ul>")
	for _, label := range r.sortedLabels() {
		out := r.Lists[label]
		item := "<li><b>" + html.EscapeString(label) + "</b>: " +
			html.EscapeString(outcomeLine(out)) + "</li>"
		if b.Len()+len(item) > maxHTMLLength {
			b.WriteString("<li>...</li>")
			break
		}
		b.WriteString(item)
	}
	b.WriteString("</ul>")
	return b.String()
}

// outcomeLine summarises one delivery outcome in a single line. Data may
// hold any JSON value; only strings are echoed, everything else is
// described by its status alone.
func outcomeLine(out Outcome) string {
	if out.Delivered() {
		if s, ok := out.Data.(string); ok && s != "" {
			return fmt.Sprintf("delivered (%d) %s", out.Status, excerpt(s))
		}
		return fmt.Sprintf("delivered (%d)", out.Status)
	}
	if out.Msg != "" {
		return fmt.Sprintf("failed (%d) %s", out.Status, excerpt(out.Msg))
	}
	return fmt.Sprintf("failed (%d)", out.Status)
}

// excerpt caps list-supplied text; response bodies can be up to the
// notifier's read limit.
func excerpt(s string) string {
	if len(s) <= maxDataExcerpt {
		return s
	}
	return s[:maxDataExcerpt] + "..."
}
