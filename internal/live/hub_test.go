package live

import (
	"bytes"
	"context"
	"encoding/json"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func startHub(t *testing.T) (*Hub, string) {
	t.Helper()
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ServeWs(hub, w, r)
	}))
	t.Cleanup(srv.Close)
	return hub, "ws" + strings.TrimPrefix(srv.URL, "http")
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func waitForClients(t *testing.T, hub *Hub, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for hub.Count() != n {
		if time.Now().After(deadline) {
			t.Fatalf("clients = %d, want %d", hub.Count(), n)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestPublishReachesSubscribers(t *testing.T) {
	hub, url := startHub(t)
	orders := dial(t, url+"?topics=orders")
	all := dial(t, url)
	waitForClients(t, hub, 2)

	hub.Publish(TopicPieces, TopicOrders)

	var ev Event
	orders.SetReadDeadline(time.Now().Add(2 * time.Second))
	if err := orders.ReadJSON(&ev); err != nil {
		t.Fatalf("read: %v", err)
	}
	if ev.Type != "invalidate" || ev.Topic != TopicOrders {
		t.Errorf("orders tab got %+v", ev)
	}

	all.SetReadDeadline(time.Now().Add(2 * time.Second))
	for _, want := range []string{TopicPieces, TopicOrders} {
		if err := all.ReadJSON(&ev); err != nil {
			t.Fatalf("read: %v", err)
		}
		if ev.Topic != want {
			t.Errorf("got topic %q, want %q", ev.Topic, want)
		}
	}
}

func TestSlowClientIsDropped(t *testing.T) {
	hub := NewHub()
	c := &Client{hub: hub, send: make(chan []byte, 1), topics: map[string]bool{}}
	hub.clients[c] = true

	done := make(chan struct{})
	go func() {
		hub.Publish(TopicUsers, TopicUsers, TopicUsers)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Publish blocked on a full client")
	}

	if hub.Count() != 0 {
		t.Errorf("slow client still registered")
	}
	msg, ok := <-c.send
	if !ok {
		t.Fatal("buffered event lost")
	}
	var ev Event
	if err := json.Unmarshal(msg, &ev); err != nil || ev.Topic != TopicUsers {
		t.Errorf("event = %s (%v)", msg, err)
	}
	if _, ok := <-c.send; ok {
		t.Error("send channel not closed")
	}
}

func TestParseTopics(t *testing.T) {
	got := ParseTopics(" orders, ,pieces")
	if len(got) != 2 || !got["orders"] || !got["pieces"] {
		t.Errorf("ParseTopics = %v", got)
	}
	if len(ParseTopics("")) != 0 {
		t.Error("empty query produced topics")
	}
}

func TestTabIDsAreLogged(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.SetOutput(os.Stderr)

	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	c := &Client{hub: hub, send: make(chan []byte, sendBuffer), topics: map[string]bool{}, ID: "tab_test"}
	hub.register <- c
	hub.unregister <- c
	cancel()
	<-hub.done

	out := buf.String()
	if !strings.Contains(out, "connected: tab_test") || !strings.Contains(out, "disconnected: tab_test") {
		t.Errorf("log lacks tab id: %q", out)
	}
}
