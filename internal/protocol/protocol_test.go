package protocol

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rorical/CodeAssist/internal/backend"
)

func TestEncode_AddsCommandTag(t *testing.T) {
	data, err := Encode(CallBackend{
		ID:   "id_1",
		URL:  "https://example.test/ask",
		Body: backend.AnalysisRequest{Question: "q", Mode: backend.ModeHints},
	})
	require.NoError(t, err)

	var fields map[string]any
	require.NoError(t, json.Unmarshal(data, &fields))
	assert.Equal(t, "callBackend", fields["command"])
	assert.Equal(t, "id_1", fields["id"])
	assert.Equal(t, map[string]any{"question": "q", "mode": "hints"}, fields["body"])
}

func TestDecode(t *testing.T) {
	tests := []struct {
		raw  string
		want Message
	}{
		{`{"command":"selectedCode","code":"x"}`, SelectedCode{Code: "x"}},
		{`{"command":"requestSelectedCode"}`, RequestSelectedCode{}},
		{`{"command":"replaceSelection","content":"y","mode":"cleancode"}`, ReplaceSelection{Content: "y", Mode: backend.ModeCleanCode}},
		{`{"command":"backendError","id":"id_2","error":"boom"}`, BackendError{ID: "id_2", Error: "boom"}},
		{`{"command":"reveal","preserveFocus":true}`, Reveal{PreserveFocus: true}},
		{`{"command":"backendResult","id":"id_3","data":{"result":"r"}}`, BackendResult{ID: "id_3", Data: map[string]any{"result": "r"}}},
	}
	for _, tt := range tests {
		t.Run(tt.want.Command(), func(t *testing.T) {
			got, err := Decode([]byte(tt.raw))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecode_Rejects(t *testing.T) {
	_, err := Decode([]byte(`{"code":"x"}`))
	assert.ErrorIs(t, err, ErrNoCommand)

	_, err = Decode([]byte(`{"command":"launchMissiles"}`))
	assert.ErrorIs(t, err, ErrUnknownCommand)

	_, err = Decode([]byte(`not json`))
	assert.Error(t, err)
}
