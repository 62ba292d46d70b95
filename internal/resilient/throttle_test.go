package resilient

import (
	"testing"

	"gotest.tools/v3/assert"
)

func TestAdvertisedWait(t *testing.T) {
	cases := []struct {
		body string
		n    int
		ok   bool
	}{
		{`{"detail":"Request was throttled. Expected available in 12 seconds."}`, 12, true},
		{`{"detail":"Expected available in 1 second."}`, 1, true},
		{`{"detail":"expected AVAILABLE IN 7 seconds"}`, 7, true},
		{`{"detail":"Expected available in 2.2 seconds."}`, 3, true},
		{`{"detail":"Expected available in soon seconds."}`, 0, false},
		{`{"detail":"Request was throttled."}`, 0, false},
		{`{"detail":null}`, 0, false},
		{`{"detail":["Expected available in 3 seconds."]}`, 0, false},
		{`not json`, 0, false},
		{``, 0, false},
	}
	for _, tc := range cases {
		n, ok := advertisedWait([]byte(tc.body))
		assert.Equal(t, tc.ok, ok, tc.body)
		assert.Equal(t, tc.n, n, tc.body)
	}
}

func TestRateLimitWaitUnits(t *testing.T) {
	assert.Equal(t, 13, rateLimitWaitUnits([]byte(`{"detail":"Expected available in 12 seconds."}`), 60))
	assert.Equal(t, 60, rateLimitWaitUnits([]byte(`{"detail":"try later"}`), 60))
	assert.Equal(t, 1, rateLimitWaitUnits([]byte(`{"detail":"Expected available in 0 seconds."}`), 60))
}
