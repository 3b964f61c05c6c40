package terminal

import (
	"errors"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Sink accumulates drained output. Raw bytes are kept exactly as read, in
// order, without bound. Alongside them a text view is decoded incrementally:
// it only ever ends on a complete UTF-8 sequence, and ill-formed bytes are
// replaced with U+FFFD. A trailing sequence that is still incomplete stays
// pending until the bytes completing it are appended.
//
// A Sink has a single writer. Slices and strings handed out by Bytes and Text
// stay valid after later appends, so they may be shared with readers.
type Sink struct {
	raw     []byte
	decoded int

	text    strings.Builder
	decoder *encoding.Decoder
	scratch []byte
}

// NewSink creates an empty sink.
func NewSink() *Sink {
	return &Sink{decoder: unicode.UTF8.NewDecoder()}
}

// Append adds p to the end of the sink.
func (s *Sink) Append(p []byte) {
	if len(p) == 0 {
		return
	}
	s.raw = append(s.raw, p...)
	s.decode()
}

func (s *Sink) decode() {
	src := s.raw[s.decoded:]
	for len(src) > 0 {
		// Every ill-formed byte may grow into a three byte replacement rune.
		if need := 3*len(src) + utf8.UTFMax; cap(s.scratch) < need {
			s.scratch = make([]byte, need)
		}

		nDst, nSrc, err := s.decoder.Transform(s.scratch[:cap(s.scratch)], src, false)
		s.text.Write(s.scratch[:nDst])
		s.decoded += nSrc
		src = src[nSrc:]

		if errors.Is(err, transform.ErrShortDst) && nSrc > 0 {
			continue
		}
		// nil, or ErrShortSrc for an incomplete trailing sequence.
		return
	}
}

// Bytes returns everything appended so far.
func (s *Sink) Bytes() []byte {
	return s.raw[:len(s.raw):len(s.raw)]
}

// Len returns the number of raw bytes appended so far.
func (s *Sink) Len() int { return len(s.raw) }

// Text returns the decoded output up to the last complete UTF-8 boundary.
func (s *Sink) Text() string { return s.text.String() }

// Pending returns the trailing bytes not yet decoded into Text.
func (s *Sink) Pending() []byte {
	return s.raw[s.decoded:len(s.raw):len(s.raw)]
}
