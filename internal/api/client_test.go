package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestPollDecodesSnapshot(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/poll" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		if r.Method != http.MethodPost {
			t.Fatalf("unexpected method: %s", r.Method)
		}
		if got := r.Header.Get("X-API-KEY"); got != "secret" {
			t.Fatalf("missing api key header, got %q", got)
		}
		var payload PollRequest
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("failed to decode payload: %v", err)
		}
		if payload.Context == nil || *payload.Context != "ctx-1" {
			t.Fatalf("unexpected context in request: %v", payload.Context)
		}
		if payload.LogFrom != 3 {
			t.Fatalf("unexpected log_from: %d", payload.LogFrom)
		}
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{
			"context": "ctx-1",
			"log_guid": "guid-a",
			"log_version": 7,
			"logs": [
				{"no": 4, "id": "e4", "type": "agent", "heading": "Thinking", "content": "step", "temp": true,
				 "kvps": {"thoughts": "reasoning", "tool": "browser"}}
			],
			"log_progress": "Working...",
			"log_progress_active": true,
			"contexts": [{"id": "ctx-1", "name": "Chat 1", "created_at": "2026-08-01T10:00:00Z", "kind": "chat"}],
			"tasks": [],
			"paused": false
		}`)
	}))
	defer server.Close()

	client := New(Config{BaseURL: server.URL, APIKey: "secret", HTTPClient: server.Client()})
	ctxID := "ctx-1"
	resp, err := client.Poll(context.Background(), PollRequest{LogFrom: 3, Context: &ctxID, Timezone: "UTC"})
	if err != nil {
		t.Fatalf("poll failed: %v", err)
	}
	if resp.LogGuid != "guid-a" || resp.LogVersion != 7 {
		t.Fatalf("unexpected snapshot header: %+v", resp)
	}
	if len(resp.Logs) != 1 || resp.Logs[0].ID != "e4" || !resp.Logs[0].Temp {
		t.Fatalf("unexpected logs: %#v", resp.Logs)
	}
	if !resp.LogProgressActive || resp.LogProgress != "Working..." {
		t.Fatalf("unexpected progress: %q active=%v", resp.LogProgress, resp.LogProgressActive)
	}
	kvps := resp.Logs[0].KVPs
	if len(kvps) != 2 || kvps[0].Key != "thoughts" || kvps[1].Key != "tool" {
		t.Fatalf("attribute order not preserved: %#v", kvps)
	}
}

func TestAttributesPreserveOrderAndValues(t *testing.T) {
	t.Parallel()

	raw := `{"z_last": "v", "a_first": 3, "flag": true, "nested": {"x": 1}, "gone": null}`
	var attrs Attributes
	if err := json.Unmarshal([]byte(raw), &attrs); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	keys := make([]string, 0, len(attrs))
	for _, attr := range attrs {
		keys = append(keys, attr.Key)
	}
	want := []string{"z_last", "a_first", "flag", "nested", "gone"}
	if strings.Join(keys, ",") != strings.Join(want, ",") {
		t.Fatalf("key order lost: got %v want %v", keys, want)
	}
	if attrs[0].Text() != "v" {
		t.Fatalf("string value not unquoted: %q", attrs[0].Text())
	}
	if attrs[1].Text() != "3" {
		t.Fatalf("number value wrong: %q", attrs[1].Text())
	}
	if attrs[2].Text() != "true" {
		t.Fatalf("bool value wrong: %q", attrs[2].Text())
	}
	if attrs[3].Text() != `{"x":1}` {
		t.Fatalf("nested value wrong: %q", attrs[3].Text())
	}
	if attrs[4].Text() != "" {
		t.Fatalf("null value should render empty, got %q", attrs[4].Text())
	}

	out, err := json.Marshal(attrs)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	var round Attributes
	if err := json.Unmarshal(out, &round); err != nil {
		t.Fatalf("round trip failed: %v", err)
	}
	if len(round) != len(attrs) || round[0].Key != "z_last" {
		t.Fatalf("round trip lost order: %#v", round)
	}
}

func TestAttributesTolerateNonObject(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{`null`, `[1,2]`, `"text"`} {
		var attrs Attributes
		if err := json.Unmarshal([]byte(raw), &attrs); err != nil {
			t.Fatalf("unmarshal %s failed: %v", raw, err)
		}
		if attrs != nil {
			t.Fatalf("expected nil attributes for %s, got %#v", raw, attrs)
		}
	}
}

func TestSendReturnsFiledContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/message_async" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		var payload SendRequest
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("failed to decode payload: %v", err)
		}
		if payload.Text != "hello" || payload.MessageID == "" {
			t.Fatalf("unexpected payload: %+v", payload)
		}
		io.WriteString(w, `{"context": "ctx-created"}`)
	}))
	defer server.Close()

	client := New(Config{BaseURL: server.URL, HTTPClient: server.Client()})
	resp, err := client.Send(context.Background(), SendRequest{Text: "hello", MessageID: "m-1"})
	if err != nil {
		t.Fatalf("send failed: %v", err)
	}
	if resp.Context != "ctx-created" {
		t.Fatalf("unexpected context: %s", resp.Context)
	}
}

func TestSendWithAttachmentsUsesMultipart(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("expected multipart form: %v", err)
		}
		if got := r.FormValue("text"); got != "see attached" {
			t.Fatalf("unexpected text field: %q", got)
		}
		files := r.MultipartForm.File["attachments"]
		if len(files) != 1 || files[0].Filename != "notes.txt" {
			t.Fatalf("unexpected attachments: %#v", files)
		}
		file, err := files[0].Open()
		if err != nil {
			t.Fatalf("open attachment: %v", err)
		}
		defer file.Close()
		data, _ := io.ReadAll(file)
		if string(data) != "payload" {
			t.Fatalf("attachment content lost: %q", data)
		}
		io.WriteString(w, `{"context": "ctx-1"}`)
	}))
	defer server.Close()

	client := New(Config{BaseURL: server.URL, HTTPClient: server.Client()})
	resp, err := client.SendWithAttachments(context.Background(),
		SendRequest{Text: "see attached", Context: "ctx-1", MessageID: "m-2"},
		[]Attachment{{Name: "/tmp/notes.txt", Data: []byte("payload")}})
	if err != nil {
		t.Fatalf("send with attachments failed: %v", err)
	}
	if resp.Context != "ctx-1" {
		t.Fatalf("unexpected context: %s", resp.Context)
	}
}

func TestHTTPFailureBecomesTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer server.Close()

	client := New(Config{BaseURL: server.URL, HTTPClient: server.Client()})
	_, err := client.Poll(context.Background(), PollRequest{Timezone: "UTC"})
	if err == nil {
		t.Fatal("expected error for 502 response")
	}
	var te *TransportError
	if !errors.As(err, &te) {
		t.Fatalf("expected TransportError, got %T", err)
	}
	if te.StatusCode != http.StatusBadGateway {
		t.Fatalf("status code not captured: %d", te.StatusCode)
	}
	if !te.Unreachable() {
		t.Fatal("5xx should classify as backend unreachable")
	}
}

func TestConnectionFailureClassifiesUnreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // refuse connections

	client := New(Config{BaseURL: server.URL})
	_, err := client.Poll(context.Background(), PollRequest{Timezone: "UTC"})
	if err == nil {
		t.Fatal("expected error after server shutdown")
	}
	var te *TransportError
	if !errors.As(err, &te) {
		t.Fatalf("expected TransportError, got %T", err)
	}
	if !te.Unreachable() {
		t.Fatal("connection refused should classify as unreachable")
	}
}
