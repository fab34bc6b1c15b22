package twiml

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderSay(t *testing.T) {
	doc, err := New().Say("Connecting").Render()
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(doc, "<?xml"))
	assert.Contains(t, doc, "<Response><Say>Connecting</Say></Response>")
}

func TestRenderGatherWithNestedSay(t *testing.T) {
	resp := New()
	gather := resp.Gather(&Gather{
		Input:                 "dtmf speech",
		NumDigits:             4,
		Timeout:               10,
		SpeechTimeout:         "auto",
		Action:                "/voice/buzz/7/unlock",
		Hints:                 "Jane Smith",
		PartialResultCallback: "/voice/buzz/7/speach",
	})
	gather.Say("Say the name of the person you are trying to see")

	doc, err := resp.Render()
	require.NoError(t, err)

	assert.Contains(t, doc, `input="dtmf speech"`)
	assert.Contains(t, doc, `numDigits="4"`)
	assert.Contains(t, doc, `timeout="10"`)
	assert.Contains(t, doc, `speechTimeout="auto"`)
	assert.Contains(t, doc, `action="/voice/buzz/7/unlock"`)
	assert.Contains(t, doc, `hints="Jane Smith"`)
	assert.Contains(t, doc, `partialResultCallback="/voice/buzz/7/speach"`)
	// 提示语嵌套在Gather内部
	assert.Contains(t, doc, "><Say>Say the name of the person you are trying to see</Say></Gather>")
}

func TestRenderRedirectDefaultsToPost(t *testing.T) {
	doc, err := New().Redirect("/voice/buzz/7/dial").Render()
	require.NoError(t, err)

	assert.Contains(t, doc, `<Redirect method="POST">/voice/buzz/7/dial</Redirect>`)
}

func TestRenderEnqueueAndDialQueue(t *testing.T) {
	doc, err := New().
		Say("Connecting").
		Enqueue("buzz-7", "http://twimlets.com/holdmusic?Bucket=com.twilio.music.classical").
		Render()
	require.NoError(t, err)

	assert.Contains(t, doc, `<Enqueue waitUrl=`)
	assert.Contains(t, doc, ">buzz-7</Enqueue>")

	doc, err = New().DialQueue("buzz-7").Render()
	require.NoError(t, err)
	assert.Contains(t, doc, "<Dial><Queue>buzz-7</Queue></Dial>")
}

func TestRenderVerbOrder(t *testing.T) {
	doc, err := New().
		Say("first").
		Redirect("/next").
		Render()
	require.NoError(t, err)

	assert.Less(t, strings.Index(doc, "<Say>"), strings.Index(doc, "<Redirect"))
}

func TestRenderEscapesText(t *testing.T) {
	doc, err := New().Say("Tom & Jerry <guests>").Render()
	require.NoError(t, err)

	assert.Contains(t, doc, "Tom &amp; Jerry &lt;guests&gt;")
}

func TestRenderEmptyResponse(t *testing.T) {
	doc, err := New().Render()
	require.NoError(t, err)

	assert.Contains(t, doc, "<Response></Response>")
}
