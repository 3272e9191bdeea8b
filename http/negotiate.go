package http

import (
	"net/http"
	"strconv"
	"strings"
)

// wantsJSON picks the response format. JSON wins ties and is the default when
// the client sends no Accept header, so curl and API clients get JSON while
// browsers, which rank text/html above */*, get the HTML page.
func wantsJSON(r *http.Request) bool {
	accept := strings.TrimSpace(r.Header.Get("Accept"))
	if accept == "" {
		return true
	}
	jsonQ := acceptQuality(accept, "application", "json")
	htmlQ := acceptQuality(accept, "text", "html")
	return jsonQ > 0 && jsonQ >= htmlQ
}

// acceptQuality returns the q value the most specific matching media range in
// accept assigns to typ/subtype, or 0 when nothing matches.
func acceptQuality(accept, typ, subtype string) float64 {
	best, bestSpecificity := 0.0, -1

	for _, part := range strings.Split(accept, ",") {
		fields := strings.Split(part, ";")
		mediaRange := strings.ToLower(strings.TrimSpace(fields[0]))
		t, s, ok := strings.Cut(mediaRange, "/")
		if !ok {
			continue
		}

		specificity := -1
		switch {
		case t == typ && s == subtype:
			specificity = 2
		case t == typ && s == "*":
			specificity = 1
		case t == "*" && s == "*":
			specificity = 0
		}
		if specificity < bestSpecificity || specificity < 0 {
			continue
		}

		q := 1.0
		for _, param := range fields[1:] {
			k, v, found := strings.Cut(strings.TrimSpace(param), "=")
			if !found || strings.ToLower(strings.TrimSpace(k)) != "q" {
				continue
			}
			if parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
				q = parsed
			}
		}

		if specificity > bestSpecificity || q > best {
			best, bestSpecificity = q, specificity
		}
	}
	return best
}
