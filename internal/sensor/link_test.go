package sensor

import (
	"errors"
	"fmt"
	"testing"
)

func TestLinkConnectAndPoll(t *testing.T) {
	src := NewFakeSource(
		FakeRead{Lines: []string{"cm=30", "cm=20"}},
		FakeRead{Lines: []string{`{"near": true}`}},
	)
	l := NewLink(src)

	if l.Connected() {
		t.Fatal("new link should not be connected")
	}
	if err := l.Connect(); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	st := l.Status()
	if !st.Connected || st.Port != "/dev/fake0" {
		t.Errorf("unexpected status: %+v", st)
	}

	if got := l.Poll(); len(got) != 2 || got[0] != "cm=30" {
		t.Errorf("first poll: %q", got)
	}
	if got := l.Poll(); len(got) != 1 {
		t.Errorf("second poll: %q", got)
	}
	if got := l.Poll(); got != nil {
		t.Errorf("exhausted script should return nil, got %q", got)
	}
}

func TestLinkPollUnconnected(t *testing.T) {
	l := NewLink(NewFakeSource())
	if got := l.Poll(); got != nil {
		t.Errorf("expected nil from unconnected link, got %q", got)
	}
}

func TestLinkOpenFailure(t *testing.T) {
	src := &FakeSource{OpenError: ErrNoPort}
	l := NewLink(src)

	err := l.Connect()
	if !errors.Is(err, ErrNoPort) {
		t.Fatalf("expected ErrNoPort, got %v", err)
	}
	st := l.Status()
	if st.Connected || st.Message == "" {
		t.Errorf("expected disconnected status with message, got %+v", st)
	}
}

func TestLinkNilSource(t *testing.T) {
	l := NewLink(nil)
	if err := l.Connect(); !errors.Is(err, ErrNoPort) {
		t.Errorf("expected ErrNoPort, got %v", err)
	}
}

func TestLinkTransientErrorResetsInput(t *testing.T) {
	src := NewFakeSource(
		FakeRead{Lines: []string{"cm=5"}, Err: fmt.Errorf("%w: garbled", ErrTransient)},
		FakeRead{Lines: []string{"cm=6"}},
	)
	l := NewLink(src)
	l.Connect()

	got := l.Poll()
	if len(got) != 1 || got[0] != "cm=5" {
		t.Errorf("lines read before the error should be kept, got %q", got)
	}
	if src.Conn.Resets != 1 {
		t.Errorf("expected one input reset, got %d", src.Conn.Resets)
	}
	if !l.Connected() {
		t.Fatal("transient error must not drop the connection")
	}
	if got := l.Poll(); len(got) != 1 || got[0] != "cm=6" {
		t.Errorf("expected recovery, got %q", got)
	}
}

func TestLinkConnectionLost(t *testing.T) {
	src := NewFakeSource(FakeRead{Err: fmt.Errorf("%w: unplugged", ErrConnectionLost)})
	l := NewLink(src)
	l.Connect()

	l.Poll()
	if l.Connected() {
		t.Fatal("lost connection should be dropped")
	}
	if !src.Conn.Closed {
		t.Error("lost connection should be closed")
	}
	st := l.Status()
	if st.Connected || st.Message == "" || st.Port != "/dev/fake0" {
		t.Errorf("unexpected status after loss: %+v", st)
	}
	if got := l.Poll(); got != nil {
		t.Errorf("poll after loss should be empty, got %q", got)
	}
}

func TestLinkReconnect(t *testing.T) {
	src := NewFakeSource()
	l := NewLink(src)
	l.Connect()
	l.Connect()

	if src.Opens != 2 {
		t.Errorf("expected 2 opens, got %d", src.Opens)
	}
	if !l.Connected() {
		t.Error("expected connected after reconnect")
	}
}

func TestLinkClose(t *testing.T) {
	src := NewFakeSource()
	l := NewLink(src)
	l.Connect()
	l.Close()
	l.Close()

	if l.Connected() || !src.Conn.Closed {
		t.Error("expected closed link")
	}
	if l.Status().Connected {
		t.Error("status should report disconnected")
	}
}
