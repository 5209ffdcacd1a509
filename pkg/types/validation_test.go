package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodePayloadAccepts(t *testing.T) {
	testCases := []struct {
		name string
		raw  string
		dst  any
	}{
		{"identify", `{"name":"alice"}`, &IdentifyPayload{}},
		{"message", `{"body":"hi"}`, &MessagePayload{}},
		{"message with ack", `{"body":"hi","ack":true}`, &MessagePayload{}},
		{"private", `{"to":"bob","body":"psst"}`, &PrivatePayload{}},
		{"join room", `{"room":"r1"}`, &JoinRoomPayload{}},
		{"room message", `{"room":"r1","body":"yo"}`, &RoomMessagePayload{}},
		{"fetch history", `{"offset":0}`, &FetchHistoryPayload{}},
		{"fetch history deep", `{"offset":40}`, &FetchHistoryPayload{}},
		{"react", `{"messageId":"m1","reaction":"❤️"}`, &ReactPayload{}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.NoError(t, DecodePayload(json.RawMessage(tc.raw), tc.dst))
		})
	}
}

func TestDecodePayloadRejects(t *testing.T) {
	testCases := []struct {
		name string
		raw  string
		dst  any
	}{
		{"identify empty name", `{"name":""}`, &IdentifyPayload{}},
		{"identify missing name", `{}`, &IdentifyPayload{}},
		{"message empty body", `{"body":""}`, &MessagePayload{}},
		{"private missing recipient", `{"body":"psst"}`, &PrivatePayload{}},
		{"join room empty", `{"room":""}`, &JoinRoomPayload{}},
		{"room message missing room", `{"body":"yo"}`, &RoomMessagePayload{}},
		{"fetch history negative offset", `{"offset":-3}`, &FetchHistoryPayload{}},
		{"react missing reaction", `{"messageId":"m1"}`, &ReactPayload{}},
		{"not json", `{"name":`, &IdentifyPayload{}},
		{"wrong type", `{"offset":"ten"}`, &FetchHistoryPayload{}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Error(t, DecodePayload(json.RawMessage(tc.raw), tc.dst))
		})
	}
}

func TestDecodePayloadEmptyRaw(t *testing.T) {
	// Payloads without required fields accept an absent data object.
	var fetch FetchHistoryPayload
	require.NoError(t, DecodePayload(nil, &fetch))
	assert.Zero(t, fetch.Offset)

	// Payloads with required fields do not.
	assert.Error(t, DecodePayload(nil, &IdentifyPayload{}))
}

func TestEnvelopeRoundTrip(t *testing.T) {
	raw := []byte(`{"event":"identify","data":{"name":"alice"}}`)

	var env Envelope
	require.NoError(t, json.Unmarshal(raw, &env))
	assert.Equal(t, EventIdentify, env.Event)

	var p IdentifyPayload
	require.NoError(t, DecodePayload(env.Data, &p))
	assert.Equal(t, "alice", p.Name)
}
