package review

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResponseAccepted(t *testing.T) {
	assert.True(t, (&Response{}).Accepted())
	assert.True(t, (&Response{Lists: map[string]Outcome{"a": {Status: 500}}}).Accepted())
	assert.False(t, (&Response{Message: "Bot not found"}).Accepted())
}

func TestResponseTextRejection(t *testing.T) {
	resp := &Response{Message: "Bot not found"}
	assert.Equal(t, "**Request Failed**\nBot not found", resp.Text())
}

func TestResponseTextOutcomes(t *testing.T) {
	resp := &Response{Lists: map[string]Outcome{
		"origin.example.com": {Status: 200, Data: "added"},
		"other.example.com":  {Status: -1, Msg: "Failed to make request"},
	}}

	text := resp.Text()
	assert.True(t, strings.HasPrefix(text, "**Request Complete**\n"))
	assert.Contains(t, text, "origin.example.com: delivered (200) added\n")
	assert.Contains(t, text, "other.example.com: failed (-1) Failed to make request\n")
}

func TestResponseTextBounded(t *testing.T) {
	lists := map[string]Outcome{}
	for r := 'a'; r <= 'z'; r++ {
		label := strings.Repeat(string(r), 120) + ".example.com"
		lists[label] = Outcome{Status: 200, Data: "ok"}
	}
	resp := &Response{Lists: lists}

	text := resp.Text()
	assert.LessOrEqual(t, len(text), maxTextLength+3)
	assert.True(t, strings.HasSuffix(text, "..."))
}

func TestResponseRenderingsCapLargeData(t *testing.T) {
	// A chatty list can answer with up to the notifier's read limit;
	// only a short excerpt of that body may reach either rendering.
	huge := strings.Repeat("x", 200000)
	resp := &Response{Lists: map[string]Outcome{
		"origin.example.com": {Status: 200, Data: huge},
		"other.example.com":  {Status: 200, Data: "ok"},
	}}

	text := resp.Text()
	assert.LessOrEqual(t, len(text), maxTextLength+3)
	assert.Contains(t, text, "origin.example.com: delivered (200) "+huge[:maxDataExcerpt]+"...")
	assert.Contains(t, text, "other.example.com: delivered (200) ok\n")

	out := resp.HTML()
	assert.LessOrEqual(t, len(out), maxHTMLLength+len("<li>...</li></ul>"))
	assert.Contains(t, out, "<b>origin.example.com</b>")
	assert.NotContains(t, out, huge[:maxDataExcerpt+1])
}

func TestResponseHTMLBounded(t *testing.T) {
	lists := map[string]Outcome{}
	for r := 'a'; r <= 'z'; r++ {
		label := strings.Repeat(string(r), 120) + ".example.com"
		lists[label] = Outcome{Status: 200, Data: strings.Repeat("y", 100000)}
	}
	resp := &Response{Lists: lists}

	out := resp.HTML()
	assert.LessOrEqual(t, len(out), maxHTMLLength+len("<li>...</li></ul>"))
	assert.Contains(t, out, "<li>...</li>")
}

func TestResponseHTMLEscapes(t *testing.T) {
	resp := &Response{Lists: map[string]Outcome{
		"<script>alert(1)</script>": {Status: 200, Data: "<img src=x>"},
	}}

	out := resp.HTML()
	assert.NotContains(t, out, "<script>")
	assert.Contains(t, out, "&lt;script&gt;alert(1)&lt;/script&gt;")
	assert.Contains(t, out, "&lt;img src=x&gt;")
}

func TestResponseHTMLNonStringData(t *testing.T) {
	// Lists answer with arbitrary JSON; rendering must not panic on
	// objects or numbers.
	resp := &Response{Lists: map[string]Outcome{
		"origin.example.com": {Status: 200, Data: map[string]any{"done": true}},
		"other.example.com":  {Status: 200, Data: 42.0},
	}}

	out := resp.HTML()
	assert.Contains(t, out, "delivered (200)")
	assert.Contains(t, out, "<h3>Request Complete</h3>")
}

func TestResponseHTMLRejection(t *testing.T) {
	resp := &Response{Message: `reason with "quotes" & <tags>`}
	out := resp.HTML()
	assert.Contains(t, out, "<h3>Request Failed</h3>")
	assert.NotContains(t, out, "<tags>")
}
