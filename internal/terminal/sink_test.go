package terminal

import (
	"bytes"
	"math/rand"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSinkAppendsInOrder(t *testing.T) {
	sink := NewSink()
	sink.Append([]byte("hello "))
	sink.Append(nil)
	sink.Append([]byte("world\r\n"))

	assert.Equal(t, []byte("hello world\r\n"), sink.Bytes())
	assert.Equal(t, "hello world\r\n", sink.Text())
	assert.Equal(t, 13, sink.Len())
	assert.Empty(t, sink.Pending())
}

func TestSinkHoldsIncompleteSequences(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "two byte", input: "café!"},
		{name: "three byte", input: "price: €5"},
		{name: "four byte", input: "ok \U0001F680 go"},
		{name: "mixed", input: "é€\U0001F680é"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := []byte(tt.input)
			for split := 1; split < len(raw); split++ {
				sink := NewSink()
				sink.Append(raw[:split])

				assert.True(t, utf8.ValidString(sink.Text()), "split %d", split)
				assert.True(t, strings.HasPrefix(tt.input, sink.Text()), "split %d", split)
				assert.Equal(t, raw[len(sink.Text()):split], sink.Pending(), "split %d", split)

				sink.Append(raw[split:])
				assert.Equal(t, tt.input, sink.Text(), "split %d", split)
				assert.Empty(t, sink.Pending())
			}
		})
	}
}

func TestSinkReplacesIllFormedBytes(t *testing.T) {
	sink := NewSink()
	sink.Append([]byte("a\xffb"))

	assert.Equal(t, "a�b", sink.Text())
	assert.Equal(t, []byte("a\xffb"), sink.Bytes(), "raw bytes are kept verbatim")
}

func TestSinkBrokenSequenceAcrossAppends(t *testing.T) {
	sink := NewSink()
	sink.Append([]byte("x\xe2\x82"))
	assert.Equal(t, "x", sink.Text())

	sink.Append([]byte("A"))
	text := sink.Text()
	assert.True(t, utf8.ValidString(text))
	assert.True(t, strings.HasPrefix(text, "x�"))
	assert.True(t, strings.HasSuffix(text, "A"))
	assert.Empty(t, sink.Pending())
}

func TestSinkSnapshotsSurviveAppends(t *testing.T) {
	sink := NewSink()
	sink.Append([]byte("first"))

	bytesSnap := sink.Bytes()
	textSnap := sink.Text()

	for i := 0; i < 100; i++ {
		sink.Append([]byte(" more output"))
	}

	assert.Equal(t, []byte("first"), bytesSnap)
	assert.Equal(t, "first", textSnap)
	assert.Equal(t, len(bytesSnap), cap(bytesSnap))
}

func TestSinkRandomChunking(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 2000; i++ {
		b.WriteString("line é€\U0001F680 ")
	}
	want := []byte(b.String())

	rng := rand.New(rand.NewSource(1))
	sink := NewSink()
	for rest := want; len(rest) > 0; {
		n := 1 + rng.Intn(37)
		if n > len(rest) {
			n = len(rest)
		}
		sink.Append(rest[:n])
		rest = rest[n:]
	}

	assert.True(t, bytes.Equal(want, sink.Bytes()))
	require.Equal(t, len(want), len(sink.Text()))
	assert.Equal(t, string(want), sink.Text())
}
