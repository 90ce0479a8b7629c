package router

import (
	"encoding/json"
	"fmt"
	"html"
	"net/http"
	"path"
	"strings"
	"time"
	"unicode"

	"go.trai.ch/swcache/internal/core/domain"
)

const placeholderSVG = `<svg xmlns="http://www.w3.org/2000/svg" width="128" height="128" viewBox="0 0 128 128">` +
	`<rect width="128" height="128" rx="24" fill="%s"/>` +
	`<text x="64" y="64" dy=".35em" text-anchor="middle" font-family="system-ui, sans-serif" ` +
	`font-size="48" font-weight="600" fill="#ffffff">%s</text></svg>`

const offlinePage = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Offline - Study Companion</title>
<style>
body{margin:0;min-height:100vh;display:flex;align-items:center;justify-content:center;
font-family:system-ui,-apple-system,sans-serif;background:#0f172a;color:#e2e8f0}
main{max-width:28rem;padding:2rem;text-align:center}
h1{font-size:1.75rem;margin:0 0 .75rem}
p{color:#94a3b8;line-height:1.5}
button{margin-top:1.5rem;padding:.75rem 1.5rem;border:0;border-radius:.5rem;
background:#38bdf8;color:#0f172a;font-weight:600;cursor:pointer}
</style>
</head>
<body>
<main>
<h1>You're Offline</h1>
<p>Study Companion can't reach the network right now. Your timer keeps running and your
progress is saved on this device until the connection comes back.</p>
<button onclick="location.reload()">Try Again</button>
</main>
</body>
</html>
`

const offlineAPIMessage = "You are offline. This request can be retried when the connection is back."

// PlaceholderName returns the icon name for an image path: the file name without extension.
func PlaceholderName(p string) string {
	base := path.Base(p)
	return strings.TrimSuffix(base, path.Ext(base))
}

// Initials returns up to two upper-cased initials of an underscore, dash or space separated name.
func Initials(name string) string {
	fields := strings.FieldsFunc(name, func(r rune) bool {
		return r == '_' || r == '-' || r == ' ' || r == '.'
	})
	var b strings.Builder
	for _, f := range fields {
		for _, r := range f {
			if unicode.IsLetter(r) || unicode.IsDigit(r) {
				b.WriteRune(unicode.ToUpper(r))
				break
			}
		}
		if b.Len() >= 2 {
			break
		}
	}
	if b.Len() == 0 {
		return "?"
	}
	return b.String()
}

// PlaceholderImage renders the deterministic SVG placeholder for an image path.
func PlaceholderImage(policy domain.Policy, imagePath string) *domain.Response {
	name := PlaceholderName(imagePath)
	color := policy.PlaceholderColor(name)
	body := fmt.Sprintf(placeholderSVG, html.EscapeString(color), html.EscapeString(Initials(name)))
	return synthesized(http.StatusOK, "image/svg+xml", domain.FallbackPlaceholder, []byte(body))
}

// OfflinePage renders the self-contained offline HTML page.
func OfflinePage() *domain.Response {
	return synthesized(http.StatusOK, "text/html; charset=utf-8", domain.FallbackOfflinePage, []byte(offlinePage))
}

// SilentAudio is the zero-length audio response served when a track is unavailable.
func SilentAudio() *domain.Response {
	return synthesized(http.StatusOK, "audio/mpeg", domain.FallbackSilentAudio, nil)
}

// NetworkError is the generic response for a request nothing else could serve.
func NetworkError() *domain.Response {
	return synthesized(http.StatusRequestTimeout, "text/plain; charset=utf-8", "", []byte("Network error"))
}

type offlineAPIBody struct {
	Error     string `json:"error"`
	Offline   bool   `json:"offline"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

// OfflineAPIError renders the structured 503 payload for an API request that failed offline.
func OfflineAPIError(now time.Time) *domain.Response {
	//nolint:errchkjson // string and bool fields only
	body, _ := json.Marshal(offlineAPIBody{
		Error:     "offline",
		Offline:   true,
		Message:   offlineAPIMessage,
		Timestamp: now.UTC().Format(time.RFC3339),
	})
	return synthesized(http.StatusServiceUnavailable, "application/json", domain.FallbackOfflineAPI, body)
}

func synthesized(status int, contentType, fallback string, body []byte) *domain.Response {
	h := make(http.Header)
	h.Set("Content-Type", contentType)
	if fallback != "" {
		h.Set(domain.FallbackHeader, fallback)
	}
	return &domain.Response{
		Status: status,
		Header: h,
		Body:   body,
		Source: domain.SourceFallback,
	}
}
