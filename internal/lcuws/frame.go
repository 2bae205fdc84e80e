package lcuws

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/EgorLis/teemo/internal/topic"
)

// EventType — первый элемент WAMP-подобного фрейма LCU.
type EventType int

const (
	Subscribe   EventType = 5
	Unsubscribe EventType = 6
	// Update — только сервер -> клиент
	Update EventType = 8
)

func (t EventType) String() string {
	switch t {
	case Subscribe:
		return "subscribe"
	case Unsubscribe:
		return "unsubscribe"
	case Update:
		return "update"
	default:
		return "event(" + strconv.Itoa(int(t)) + ")"
	}
}

// Event — разобранный входящий фрейм [code, wireName, payload].
type Event struct {
	Type    EventType
	Name    string
	Topic   string
	Payload *structpb.Struct
}

// encodeCommand — [code,"wireName"]
func encodeCommand(kind EventType, wireName string) ([]byte, error) {
	return json.Marshal([]any{int(kind), wireName})
}

// пустой фрейм: подтверждение записи, а не событие
func isEmptyFrame(data []byte) bool {
	return len(bytes.TrimSpace(data)) == 0
}

// decodeEvent строже encoding/json: payload с повторяющимся ключом или
// невалидным UTF-8 отвергается, и такой фрейм пропускается.
func decodeEvent(data []byte) (Event, error) {
	var parts []json.RawMessage
	if err := json.Unmarshal(data, &parts); err != nil {
		return Event{}, fmt.Errorf("decode frame: %w", err)
	}
	if len(parts) != 3 {
		return Event{}, fmt.Errorf("decode frame: want 3 elements, got %d", len(parts))
	}

	var code int
	if err := json.Unmarshal(parts[0], &code); err != nil {
		return Event{}, fmt.Errorf("decode frame type: %w", err)
	}
	var name string
	if err := json.Unmarshal(parts[1], &name); err != nil {
		return Event{}, fmt.Errorf("decode frame name: %w", err)
	}

	payload := &structpb.Struct{}
	if raw := bytes.TrimSpace(parts[2]); !bytes.Equal(raw, []byte("null")) {
		if err := protojson.Unmarshal(raw, payload); err != nil {
			return Event{}, fmt.Errorf("decode payload of %s: %w", name, err)
		}
	}

	return Event{
		Type:    EventType(code),
		Name:    name,
		Topic:   topic.Reverse(name),
		Payload: payload,
	}, nil
}
