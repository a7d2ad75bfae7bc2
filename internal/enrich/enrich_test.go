package enrich

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/canopyhq/canopylog/internal/wideevent"
)

func TestRequest_MergesMetadata(t *testing.T) {
	ev := wideevent.Fields{}
	Request().Enrich(ev, wideevent.RequestMeta{
		Method:     "POST",
		RequestID:  "req-1",
		RemoteAddr: "10.0.0.1:1234",
		UserAgent:  "curl/8.0",
	})

	req, ok := ev["request"].(wideevent.Fields)
	require.True(t, ok)
	assert.Equal(t, "POST", req["method"])
	assert.Equal(t, "req-1", req["id"])
	assert.Equal(t, "10.0.0.1:1234", req["remote_addr"])
	assert.Equal(t, "curl/8.0", req["user_agent"])
}

func TestRequest_EmptyMetadataAddsNothing(t *testing.T) {
	ev := wideevent.Fields{}
	Request().Enrich(ev, wideevent.RequestMeta{})
	_, present := ev["request"]
	assert.False(t, present)
}

func TestHost_CapturesProcessState(t *testing.T) {
	ev := wideevent.Fields{}
	Host().Enrich(ev, wideevent.RequestMeta{})

	host, ok := ev["host"].(wideevent.Fields)
	require.True(t, ok)
	assert.NotZero(t, host["pid"])
	goroutines, ok := host["goroutines"].(int)
	require.True(t, ok)
	assert.Greater(t, goroutines, 0)
}
