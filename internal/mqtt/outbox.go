package mqtt

import "log"

// message is a serialized MQTT message held for replay after reconnection.
type message struct {
	topic    string
	payload  []byte
	qos      byte
	retained bool
}

// outbox queues messages while the broker is unreachable. A retained message
// replaces any queued retained message on the same topic, since the broker
// would only keep the last one. When full, the oldest non-retained message is
// dropped first.
// Not safe for concurrent use; caller must synchronize.
type outbox struct {
	queue    []message
	capacity int
	dropped  int // since last drain
}

func newOutbox(capacity int) *outbox {
	return &outbox{capacity: capacity}
}

func (o *outbox) push(m message) {
	if m.retained {
		for i, q := range o.queue {
			if q.retained && q.topic == m.topic {
				o.queue = append(o.queue[:i], o.queue[i+1:]...)
				break
			}
		}
	}

	o.queue = append(o.queue, m)
	if len(o.queue) <= o.capacity {
		return
	}

	if o.dropped == 0 {
		log.Printf("mqtt: outbox full (%d messages), dropping oldest", o.capacity)
	}
	o.dropped++

	victim := 0
	for i, q := range o.queue {
		if !q.retained {
			victim = i
			break
		}
	}
	o.queue = append(o.queue[:victim], o.queue[victim+1:]...)
}

// drain returns the queued messages oldest first and empties the outbox.
func (o *outbox) drain() []message {
	if len(o.queue) == 0 {
		return nil
	}
	if o.dropped > 0 {
		log.Printf("mqtt: %d messages were dropped while offline", o.dropped)
	}

	out := o.queue
	o.queue = nil
	o.dropped = 0
	return out
}

func (o *outbox) len() int {
	return len(o.queue)
}
