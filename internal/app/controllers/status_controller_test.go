package controllers

import (
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCallStatusCompletedRecordsCallEnd(t *testing.T) {
	fb := &fakeBuzzService{}
	fr := newFakeRedisService()
	r := newVoiceTestRouter(newTestContainer(t, fb, &fakeTwilioService{}, fr))

	w := postForm(r, "/status", url.Values{
		"CallSid":    {"CA0001"},
		"CallStatus": {"completed"},
	})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"CA0001"}, fb.callEnds)
	assert.Equal(t, "completed", fr.statuses["CA0001"])
}

func TestCallStatusIntermediateOnlyCaches(t *testing.T) {
	fb := &fakeBuzzService{}
	fr := newFakeRedisService()
	r := newVoiceTestRouter(newTestContainer(t, fb, &fakeTwilioService{}, fr))

	w := postForm(r, "/status", url.Values{
		"CallSid":    {"CA0001"},
		"CallStatus": {"ringing"},
	})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, fb.callEnds)
	assert.Equal(t, "ringing", fr.statuses["CA0001"])
}

func TestCallStatusRepeatedCompletedOverwrites(t *testing.T) {
	fb := &fakeBuzzService{}
	fr := newFakeRedisService()
	r := newVoiceTestRouter(newTestContainer(t, fb, &fakeTwilioService{}, fr))

	postForm(r, "/status", url.Values{"CallSid": {"CA0001"}, "CallStatus": {"completed"}})
	w := postForm(r, "/status", url.Values{"CallSid": {"CA0001"}, "CallStatus": {"completed"}})

	// 重复的completed回调后写覆盖，不报错
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"CA0001", "CA0001"}, fb.callEnds)
}

func TestCallStatusMissingCallSidIgnored(t *testing.T) {
	fb := &fakeBuzzService{}
	fr := newFakeRedisService()
	r := newVoiceTestRouter(newTestContainer(t, fb, &fakeTwilioService{}, fr))

	w := postForm(r, "/status", url.Values{"CallStatus": {"completed"}})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, fb.callEnds)
}
