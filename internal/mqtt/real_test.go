package mqtt

import (
	"errors"
	"testing"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
)

type fakeToken struct {
	err error
}

func (t *fakeToken) Wait() bool                     { return true }
func (t *fakeToken) WaitTimeout(time.Duration) bool { return true }
func (t *fakeToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}
func (t *fakeToken) Error() error { return t.err }

type sent struct {
	topic    string
	qos      byte
	retained bool
	payload  string
}

type fakeClient struct {
	connected    bool
	err          error
	sent         []sent
	disconnected bool
}

func (c *fakeClient) IsConnectionOpen() bool { return c.connected }

func (c *fakeClient) Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token {
	if c.err != nil {
		return &fakeToken{err: c.err}
	}
	c.sent = append(c.sent, sent{topic, qos, retained, string(payload.([]byte))})
	return &fakeToken{}
}

func (c *fakeClient) Disconnect(uint) { c.disconnected = true }

func newTestPublisher(c *fakeClient) *RealPublisher {
	return &RealPublisher{client: c, buf: newOutbox(4)}
}

func TestRealPublisherSendsWhenConnected(t *testing.T) {
	c := &fakeClient{connected: true}
	p := newTestPublisher(c)

	if err := p.Publish(GameEvent{Type: "ARMED", SessionID: "s"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := p.PublishSystem(SystemEvent{Event: "STARTUP", Retained: true}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(c.sent) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(c.sent))
	}
	if c.sent[0].topic != Topic || c.sent[0].qos != 0 || c.sent[0].retained {
		t.Errorf("game event: unexpected delivery %+v", c.sent[0])
	}
	if c.sent[1].topic != TopicSystem || c.sent[1].qos != 1 || !c.sent[1].retained {
		t.Errorf("system event: unexpected delivery %+v", c.sent[1])
	}
	if p.Buffered() != 0 {
		t.Errorf("nothing should be buffered, got %d", p.Buffered())
	}
}

func TestRealPublisherBuffersWhileDisconnected(t *testing.T) {
	c := &fakeClient{}
	p := newTestPublisher(c)

	p.Publish(GameEvent{Type: "ARMED"})
	p.Publish(GameEvent{Type: "COMPLETED"})
	if len(c.sent) != 0 {
		t.Fatal("nothing should be sent while disconnected")
	}
	if p.Buffered() != 2 {
		t.Fatalf("expected 2 buffered, got %d", p.Buffered())
	}

	c.connected = true
	p.flush()

	if len(c.sent) != 2 {
		t.Fatalf("expected replay of 2 messages, got %d", len(c.sent))
	}
	if p.Buffered() != 0 {
		t.Errorf("buffer should be empty after flush, got %d", p.Buffered())
	}
}

func TestRealPublisherRebuffersOnFailure(t *testing.T) {
	c := &fakeClient{connected: true, err: errors.New("broker said no")}
	p := newTestPublisher(c)

	if err := p.Publish(GameEvent{Type: "ARMED"}); err == nil {
		t.Error("expected publish error")
	}
	if p.Buffered() != 1 {
		t.Fatalf("failed message should be buffered, got %d", p.Buffered())
	}

	p.flush()
	if p.Buffered() != 1 {
		t.Errorf("failed replay should keep the message, got %d", p.Buffered())
	}

	c.err = nil
	p.flush()
	if p.Buffered() != 0 || len(c.sent) != 1 {
		t.Errorf("expected successful replay, buffered=%d sent=%d", p.Buffered(), len(c.sent))
	}
}

func TestRealPublisherClose(t *testing.T) {
	c := &fakeClient{connected: true}
	p := newTestPublisher(c)

	if !p.IsConnected() {
		t.Error("expected connected")
	}
	p.Close()
	if !c.disconnected {
		t.Error("expected disconnect")
	}
}

func TestRealPublisherCollapsesRetainedStatus(t *testing.T) {
	c := &fakeClient{}
	p := newTestPublisher(c)

	p.PublishSystem(SystemEvent{Event: "HEARTBEAT", Retained: true})
	p.Publish(GameEvent{Type: "ARMED"})
	p.PublishSystem(SystemEvent{Event: "HEARTBEAT", Retained: true})
	if p.Buffered() != 2 {
		t.Fatalf("expected 2 buffered, got %d", p.Buffered())
	}

	c.connected = true
	p.flush()
	if len(c.sent) != 2 || c.sent[0].topic != Topic || c.sent[1].topic != TopicSystem {
		t.Errorf("replay = %+v", c.sent)
	}
}
