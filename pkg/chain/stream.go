package chain

// Stream reads Bitcoin-style wire encoding: little-endian integers
// and var_uint length prefixes. Reads past the end of the buffer
// return zero values and mark the stream invalid, so decoders can
// run to completion on untrusted bytes and check valid() once.
type Stream struct {
	b  []byte
	p  uint64
	ok bool
}

func NewStream(b []byte) *Stream {
	return &Stream{b: b, ok: true}
}

// valid reports whether every read so far was within bounds.
func (s *Stream) valid() bool {
	return s.ok
}

// complete reports whether the stream was fully and validly consumed.
func (s *Stream) complete() bool {
	return s.ok && s.p == uint64(len(s.b))
}

func (s *Stream) bytes(num uint64) []byte {
	if !s.ok || num > uint64(len(s.b))-s.p {
		s.ok = false
		return nil
	}
	p := s.p
	s.p += num
	return s.b[p : p+num]
}

func (s *Stream) uint16le() uint16 {
	b := s.bytes(2)
	if b == nil {
		return 0
	}
	return uint16(b[0]) | uint16(b[1])<<8
}

func (s *Stream) uint32le() uint32 {
	b := s.bytes(4)
	if b == nil {
		return 0
	}
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}

func (s *Stream) uint64le() uint64 {
	b := s.bytes(8)
	if b == nil {
		return 0
	}
	return uint64(b[0]) | uint64(b[1])<<8 | uint64(b[2])<<16 | uint64(b[3])<<24 |
		uint64(b[4])<<32 | uint64(b[5])<<40 | uint64(b[6])<<48 | uint64(b[7])<<56
}

func (s *Stream) var_uint() uint64 {
	b := s.bytes(1)
	if b == nil {
		return 0
	}
	val := b[0]
	if val < 253 {
		return uint64(val)
	}
	if val == 253 {
		return uint64(s.uint16le())
	}
	if val == 254 {
		return uint64(s.uint32le())
	}
	return s.uint64le()
}

// Writer builds the same encoding Stream reads.
type Writer struct {
	b []byte
}

func (w *Writer) Bytes() []byte {
	return w.b
}

func (w *Writer) bytes(b []byte) {
	w.b = append(w.b, b...)
}

func (w *Writer) uint16le(v uint16) {
	w.b = append(w.b, byte(v), byte(v>>8))
}

func (w *Writer) uint32le(v uint32) {
	w.b = append(w.b, byte(v), byte(v>>8), byte(v>>16), byte(v>>24))
}

func (w *Writer) uint64le(v uint64) {
	w.b = append(w.b, byte(v), byte(v>>8), byte(v>>16), byte(v>>24),
		byte(v>>32), byte(v>>40), byte(v>>48), byte(v>>56))
}

func (w *Writer) var_uint(v uint64) {
	switch {
	case v < 253:
		w.b = append(w.b, byte(v))
	case v <= 0xffff:
		w.b = append(w.b, 253)
		w.uint16le(uint16(v))
	case v <= 0xffffffff:
		w.b = append(w.b, 254)
		w.uint32le(uint32(v))
	default:
		w.b = append(w.b, 255)
		w.uint64le(v)
	}
}
