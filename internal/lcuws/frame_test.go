package lcuws

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeCommand(t *testing.T) {
	b, err := encodeCommand(Subscribe, "OnJsonApiEvent_lol-lobby_v2_lobby")
	require.NoError(t, err)
	assert.Equal(t, `[5,"OnJsonApiEvent_lol-lobby_v2_lobby"]`, string(b))

	b, err = encodeCommand(Unsubscribe, "OnJsonApiEvent")
	require.NoError(t, err)
	assert.Equal(t, `[6,"OnJsonApiEvent"]`, string(b))
}

func TestDecodeEvent(t *testing.T) {
	ev, err := decodeEvent([]byte(`[8,"OnJsonApiEvent_lol-gameflow_v1_gameflow-phase",` +
		`{"data":"ChampSelect","eventType":"Update","uri":"/lol-gameflow/v1/gameflow-phase"}]`))
	require.NoError(t, err)
	assert.Equal(t, Update, ev.Type)
	assert.Equal(t, "OnJsonApiEvent_lol-gameflow_v1_gameflow-phase", ev.Name)
	assert.Equal(t, "/lol-gameflow/v1/gameflow-phase", ev.Topic)
	assert.Equal(t, map[string]any{
		"data":      "ChampSelect",
		"eventType": "Update",
		"uri":       "/lol-gameflow/v1/gameflow-phase",
	}, ev.Payload.AsMap())
}

func TestDecodeEventNestedValues(t *testing.T) {
	ev, err := decodeEvent([]byte(`[8,"OnJsonApiEvent",{"data":{"ids":[1,2.5],"ok":true,"none":null}}]`))
	require.NoError(t, err)
	assert.Equal(t, "OnJsonApiEvent", ev.Topic)
	assert.Equal(t, map[string]any{
		"ids":  []any{float64(1), 2.5},
		"ok":   true,
		"none": nil,
	}, ev.Payload.AsMap()["data"])
}

func TestDecodeEventNullPayload(t *testing.T) {
	ev, err := decodeEvent([]byte(`[8,"GetLolLoginV1LoginConnectionState",null]`))
	require.NoError(t, err)
	assert.Equal(t, "GetLolLoginV1LoginConnectionState", ev.Topic)
	assert.Empty(t, ev.Payload.AsMap())
}

func TestDecodeEventMalformed(t *testing.T) {
	for _, s := range []string{
		`not json`,
		`[8]`,
		`[8,"x"]`,
		`["8","x",{}]`,
		`[8,7,{}]`,
		`[8,"x",[1,2]]`,
		`{"a":1}`,
	} {
		_, err := decodeEvent([]byte(s))
		assert.Error(t, err, s)
	}
}

func TestIsEmptyFrame(t *testing.T) {
	assert.True(t, isEmptyFrame(nil))
	assert.True(t, isEmptyFrame([]byte(" \n")))
	assert.False(t, isEmptyFrame([]byte("[]")))
}

func TestEventTypeString(t *testing.T) {
	assert.Equal(t, "subscribe", Subscribe.String())
	assert.Equal(t, "unsubscribe", Unsubscribe.String())
	assert.Equal(t, "update", Update.String())
	assert.Equal(t, "event(3)", EventType(3).String())
}

func TestDecodeEventLargeIntegerIsFloat64(t *testing.T) {
	ev, err := decodeEvent([]byte(`[8,"OnJsonApiEvent",{"id":9007199254740993,"small":42}]`))
	require.NoError(t, err)
	m := ev.Payload.AsMap()
	assert.Equal(t, float64(42), m["small"])
	// 2^53+1 не представимо в float64
	assert.Equal(t, float64(9007199254740992), m["id"])
}

func TestDecodeEventRejectsStrictJSONViolations(t *testing.T) {
	for name, frame := range map[string][]byte{
		"duplicate key": []byte(`[8,"OnJsonApiEvent",{"a":1,"a":2}]`),
		"invalid utf-8": append(append([]byte(`[8,"OnJsonApiEvent",{"a":"`), 0xff), []byte(`"}]`)...),
	} {
		t.Run(name, func(t *testing.T) {
			_, err := decodeEvent(frame)
			assert.Error(t, err)
		})
	}
}
