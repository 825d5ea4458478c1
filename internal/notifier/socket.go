package notifier

import "encoding/json"

// eventEnvelope is the wire format of a pushed event.
type eventEnvelope struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

func marshalEvent(event string, payload interface{}) ([]byte, error) {
	return json.Marshal(eventEnvelope{Event: event, Data: payload})
}
