package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// ContextKind tells the UI which tab a context belongs to. The backend now
// stamps this explicitly; the client never infers it from id membership.
type ContextKind string

const (
	KindChat ContextKind = "chat"
	KindTask ContextKind = "task"
)

// LogEntry is one renderable unit of the remote conversation log. Id is stable
// across polls for the same logical entry and keys the transcript upsert; No is
// monotonic within a context and orders entries.
type LogEntry struct {
	No       int        `json:"no"`
	ID       string     `json:"id"`
	Type     string     `json:"type"`
	Heading  string     `json:"heading"`
	Content  string     `json:"content"`
	Temp     bool       `json:"temp"`
	FollowUp bool       `json:"follow_up"`
	KVPs     Attributes `json:"kvps"`
}

// ContextSummary describes one conversation known to the backend. Display
// ordering is by CreatedAt descending, never by id.
type ContextSummary struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	CreatedAt time.Time   `json:"created_at"`
	Kind      ContextKind `json:"kind"`
}

// TaskSummary mirrors ContextSummary for scheduled tasks.
type TaskSummary struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	State     string    `json:"state"`
}

// PollRequest is the body of the poll endpoint. A nil Context means the client
// has no context yet and the server may report or create a default one.
type PollRequest struct {
	LogFrom  int     `json:"log_from"`
	Context  *string `json:"context"`
	Timezone string  `json:"timezone"`
}

// PollResponse is a log snapshot plus the surrounding session state. LogGuid
// changes only when the server-side log object was replaced; LogVersion is a
// monotonic counter bumped on any entry change.
type PollResponse struct {
	Context           string           `json:"context"`
	LogGuid           string           `json:"log_guid"`
	LogVersion        int              `json:"log_version"`
	Logs              []LogEntry       `json:"logs"`
	LogProgress       string           `json:"log_progress"`
	LogProgressActive bool             `json:"log_progress_active"`
	Contexts          []ContextSummary `json:"contexts"`
	Tasks             []TaskSummary    `json:"tasks"`
	Paused            bool             `json:"paused"`
}

// SendRequest is the JSON body of the message endpoint. Attachments switch the
// request to multipart form encoding instead.
type SendRequest struct {
	Text      string `json:"text"`
	Context   string `json:"context"`
	MessageID string `json:"message_id"`
}

// SendResponse reports the context the message was filed under, which may
// differ from the request when the server created one.
type SendResponse struct {
	Context string `json:"context"`
}

// ExportResponse carries a serialized context.
type ExportResponse struct {
	CtxID   string `json:"ctxid"`
	Content string `json:"content"`
}

// ImportResponse lists the context ids created from an imported payload.
type ImportResponse struct {
	CtxIDs []string `json:"ctxids"`
}

// Attribute is a single key/value detail attached to a log entry.
type Attribute struct {
	Key   string
	Value json.RawMessage
}

// Attributes preserves the server's key order, which encoding/json maps would
// destroy. Decoding walks the object token by token.
type Attributes []Attribute

// UnmarshalJSON accepts an object, null, or (defensively) anything else, which
// is dropped rather than failing the whole entry.
func (a *Attributes) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*a = nil
		return nil
	}
	if trimmed[0] != '{' {
		*a = nil
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.UseNumber()
	if _, err := dec.Token(); err != nil { // opening brace
		return err
	}
	var result Attributes
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("attribute key is not a string: %v", keyTok)
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return err
		}
		result = append(result, Attribute{Key: key, Value: raw})
	}
	if _, err := dec.Token(); err != nil { // closing brace
		return err
	}
	*a = result
	return nil
}

// MarshalJSON writes the attributes back as an object in original order.
func (a Attributes) MarshalJSON() ([]byte, error) {
	if a == nil {
		return []byte("null"), nil
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, attr := range a {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(attr.Key)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		if len(attr.Value) == 0 {
			buf.WriteString("null")
		} else {
			buf.Write(attr.Value)
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Get returns the raw value for key and whether it was present.
func (a Attributes) Get(key string) (json.RawMessage, bool) {
	for _, attr := range a {
		if attr.Key == key {
			return attr.Value, true
		}
	}
	return nil, false
}

// Text renders an attribute value for display: strings unquoted, numbers and
// booleans verbatim, anything structured as compact JSON.
func (attr Attribute) Text() string {
	raw := bytes.TrimSpace(attr.Value)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			return s
		}
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(raw, &b); err == nil {
			return strconv.FormatBool(b)
		}
	}
	var compact bytes.Buffer
	if err := json.Compact(&compact, raw); err == nil {
		return compact.String()
	}
	return string(raw)
}
