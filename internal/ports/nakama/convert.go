package nakama

import (
	"encoding/json"
	"fmt"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"cardduel/internal/app"
)

var eventOpCodes = map[app.EventKind]int64{
	app.EventMatchStarted:    OpMatchStarted,
	app.EventTurnBegan:       OpTurnBegan,
	app.EventCardPlayed:      OpCardPlayed,
	app.EventPlayRejected:    OpPlayRejected,
	app.EventOverplayPenalty: OpOverplayPenalty,
	app.EventTurnEnded:       OpTurnEnded,
	app.EventMatchEnded:      OpMatchEnded,
	app.EventMulligan:        OpMulliganDone,
}

var wireOptions = protojson.MarshalOptions{EmitUnpopulated: true}

// toStruct converts any JSON-encodable value into a protobuf Struct.
func toStruct(v interface{}) (*structpb.Struct, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var m map[string]interface{}
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return structpb.NewStruct(m)
}

// encodeWire marshals v as protojson over a Struct, the format of every
// server message and the match label.
func encodeWire(v interface{}) ([]byte, error) {
	s, err := toStruct(v)
	if err != nil {
		return nil, err
	}
	return wireOptions.Marshal(s)
}

// encodeEvent returns the op code and wire bytes for an app event.
func encodeEvent(ev app.Event) (int64, []byte, error) {
	opCode, ok := eventOpCodes[ev.Kind]
	if !ok {
		return 0, nil, fmt.Errorf("unknown event kind %q", ev.Kind)
	}
	data, err := encodeWire(ev.Payload)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to encode %s: %w", ev.Kind, err)
	}
	return opCode, data, nil
}
