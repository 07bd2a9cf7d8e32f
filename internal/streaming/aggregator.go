package streaming

import "strings"

// DeltaFunc receives each increment in arrival order. A non-nil error stops
// the aggregation; the increment is already part of the buffer by then.
type DeltaFunc func(delta string) error

// Aggregator appends increments to a single buffer and hands each increment
// to one consumer. It is owned by a single producer and is not safe for
// concurrent use.
type Aggregator struct {
	buf     strings.Builder
	dec     *Decoder
	onDelta DeltaFunc
	chunks  int
}

// NewAggregator returns an Aggregator that forwards increments to onDelta.
// onDelta may be nil.
func NewAggregator(onDelta DeltaFunc) *Aggregator {
	return &Aggregator{onDelta: onDelta}
}

// Push appends a text increment and notifies the consumer. Empty increments
// carry nothing and are ignored.
func (a *Aggregator) Push(delta string) error {
	if delta == "" {
		return nil
	}
	a.buf.WriteString(delta)
	a.chunks++
	if a.onDelta == nil {
		return nil
	}
	return a.onDelta(delta)
}

// PushBytes decodes a raw byte increment before pushing it.
func (a *Aggregator) PushBytes(chunk []byte) error {
	if a.dec == nil {
		a.dec = NewDecoder()
	}
	text, err := a.dec.Decode(chunk)
	if err != nil {
		return err
	}
	return a.Push(text)
}

// Close flushes bytes still held by the decoder.
func (a *Aggregator) Close() error {
	if a.dec == nil {
		return nil
	}
	text, err := a.dec.Flush()
	if err != nil {
		return err
	}
	return a.Push(text)
}

// Text returns the buffer as accumulated so far.
func (a *Aggregator) Text() string {
	return a.buf.String()
}

// Len returns the buffer length in bytes. It never decreases.
func (a *Aggregator) Len() int {
	return a.buf.Len()
}

// Chunks returns how many non-empty increments were appended.
func (a *Aggregator) Chunks() int {
	return a.chunks
}
