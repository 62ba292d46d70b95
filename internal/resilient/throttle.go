package resilient

import (
	"encoding/json"
	"math"
	"regexp"
	"strconv"
)

var availableIn = regexp.MustCompile(`(?i)available in (\d+(?:\.\d+)?) seconds?`)

type throttleBody struct {
	Detail string `json:"detail"`
}

// advertisedWait extracts N from a 429 body of the form
// {"detail": "Request was throttled. Expected available in N seconds."}.
// Fractional values round up.
func advertisedWait(body []byte) (int, bool) {
	var b throttleBody
	if err := json.Unmarshal(body, &b); err != nil {
		return 0, false
	}
	m := availableIn.FindStringSubmatch(b.Detail)
	if m == nil {
		return 0, false
	}
	n, err := strconv.ParseFloat(m[1], 64)
	if err != nil || n > math.MaxInt32 {
		return 0, false
	}
	return int(math.Ceil(n)), true
}

// rateLimitWaitUnits is N+1 for an advertised wait, otherwise the default
func rateLimitWaitUnits(body []byte, defaultUnits int) int {
	if n, ok := advertisedWait(body); ok {
		return n + 1
	}
	return defaultUnits
}
