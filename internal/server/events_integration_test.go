package server

import (
	"bufio"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

type sseEvent struct {
	name string
	data string
}

// sseEvents parses a server-sent event body into a channel of completed events.
func sseEvents(body io.Reader) <-chan sseEvent {
	events := make(chan sseEvent, 8)
	go func() {
		defer close(events)
		scanner := bufio.NewScanner(body)
		var current sseEvent
		for scanner.Scan() {
			line := scanner.Text()
			switch {
			case line == "":
				if current.name != "" || current.data != "" {
					events <- current
				}
				current = sseEvent{}
			case strings.HasPrefix(line, "event:"):
				current.name = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
			case strings.HasPrefix(line, "data:"):
				current.data = strings.TrimSpace(strings.TrimPrefix(line, "data:"))
			}
		}
	}()
	return events
}

func authorizedRequest(t *testing.T, method, url, body, token string) *http.Request {
	t.Helper()
	var reader io.Reader = http.NoBody
	if body != "" {
		reader = strings.NewReader(body)
	}
	request, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}
	request.Header.Set("Authorization", "Bearer "+token)
	if body != "" {
		request.Header.Set("Content-Type", "application/json")
	}
	return request
}

func TestEventStreamEmitsRecordChanges(t *testing.T) {
	env := newTestEnvironment(t)
	token := env.registerAndLogin(t, "stream@example.com")
	apiServer := httptest.NewServer(env.handler)
	t.Cleanup(apiServer.Close)

	streamResp, err := http.DefaultClient.Do(authorizedRequest(t, http.MethodGet, apiServer.URL+"/api/events", "", token))
	if err != nil {
		t.Fatalf("failed to open stream: %v", err)
	}
	t.Cleanup(func() { _ = streamResp.Body.Close() })
	if streamResp.StatusCode != http.StatusOK || !strings.HasPrefix(streamResp.Header.Get("Content-Type"), "text/event-stream") {
		t.Fatalf("unexpected stream response: %d %q", streamResp.StatusCode, streamResp.Header.Get("Content-Type"))
	}
	events := sseEvents(streamResp.Body)

	deadline := time.After(5 * time.Second)
	select {
	case event := <-events:
		if event.name != realtimeEventHeartbeat {
			t.Fatalf("expected initial heartbeat, got %+v", event)
		}
	case <-deadline:
		t.Fatal("timed out waiting for heartbeat")
	}

	createResp, err := http.DefaultClient.Do(authorizedRequest(t, http.MethodPost, apiServer.URL+"/api/clients", `{"name":"Meera"}`, token))
	if err != nil {
		t.Fatalf("create request failed: %v", err)
	}
	var created struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(createResp.Body).Decode(&created); err != nil {
		t.Fatalf("failed to decode create response: %v", err)
	}
	_ = createResp.Body.Close()

	for {
		select {
		case <-deadline:
			t.Fatal("timed out waiting for record change")
		case event, ok := <-events:
			if !ok {
				t.Fatal("stream closed before record change")
			}
			if event.name != RealtimeEventRecordChanged {
				continue
			}
			var payload struct {
				Resource  string   `json:"resource"`
				Action    string   `json:"action"`
				RecordIDs []string `json:"recordIds"`
				Source    string   `json:"source"`
			}
			if err := json.Unmarshal([]byte(event.data), &payload); err != nil {
				t.Fatalf("failed to decode event payload %q: %v", event.data, err)
			}
			if payload.Resource != "clients" || payload.Action != RealtimeActionCreated || payload.Source != realtimeSourceBackend {
				t.Fatalf("unexpected event payload %+v", payload)
			}
			if len(payload.RecordIDs) != 1 || payload.RecordIDs[0] != created.ID {
				t.Fatalf("unexpected record ids %v, want %s", payload.RecordIDs, created.ID)
			}
			return
		}
	}
}
