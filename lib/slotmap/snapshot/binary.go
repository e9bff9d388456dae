package snapshot

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/ValentinKolb/dSlot/lib/slot"
)

// Constants of the binary format
const (
	magicNum      = "DSLOTSN\x00" // File format identifier
	maxNameLength = 1 << 20       // Longest key name accepted when reading
)

// NewBinaryCodec creates a codec using a compact little endian format:
//
//	magic (8) | version (1) | count (8) | entries...
//	entry: key type (1) | name length (4) | name | index (4) | attributes (4) | value
//	value: type (1) | payload (bool: 1, int/int64/float: 8, string: length (4) + bytes)
func NewBinaryCodec() Codec {
	return &binaryCodecImpl{}
}

type binaryCodecImpl struct{}

func (b binaryCodecImpl) Name() string { return "binary" }

// --------------------------------------------------------------------------
// Encode
// --------------------------------------------------------------------------

func (b binaryCodecImpl) Encode(w io.Writer, s *Snapshot) error {
	bw := bufio.NewWriter(w)

	// Write file header
	if _, err := bw.WriteString(magicNum); err != nil {
		return err
	}
	if err := bw.WriteByte(s.Version); err != nil {
		return err
	}
	if err := binary.Write(bw, binary.LittleEndian, uint64(len(s.Entries))); err != nil {
		return err
	}

	// Write entries
	for _, e := range s.Entries {
		if err := bw.WriteByte(byte(e.KeyType)); err != nil {
			return err
		}
		if err := writeString(bw, e.Name); err != nil {
			return err
		}
		if err := binary.Write(bw, binary.LittleEndian, e.Index); err != nil {
			return err
		}
		if err := binary.Write(bw, binary.LittleEndian, uint32(e.Attributes)); err != nil {
			return err
		}
		if err := writeValue(bw, e.Value); err != nil {
			return err
		}
	}

	return bw.Flush()
}

func writeString(bw *bufio.Writer, s string) error {
	if err := binary.Write(bw, binary.LittleEndian, uint32(len(s))); err != nil {
		return err
	}
	_, err := bw.WriteString(s)
	return err
}

func writeValue(bw *bufio.Writer, v Value) error {
	if err := bw.WriteByte(byte(v.Type)); err != nil {
		return err
	}
	switch v.Type {
	case VTNil:
		return nil
	case VTBool:
		var x byte
		if v.Bool {
			x = 1
		}
		return bw.WriteByte(x)
	case VTInt, VTInt64:
		return binary.Write(bw, binary.LittleEndian, v.Int)
	case VTFloat:
		return binary.Write(bw, binary.LittleEndian, math.Float64bits(v.Float))
	case VTString:
		return writeString(bw, v.String)
	default:
		return fmt.Errorf("unknown value type: %d", v.Type)
	}
}

// --------------------------------------------------------------------------
// Decode
// --------------------------------------------------------------------------

func (b binaryCodecImpl) Decode(r io.Reader) (*Snapshot, error) {
	br := bufio.NewReader(r)

	// Read and verify magic number
	magicBytes := make([]byte, len(magicNum))
	if _, err := io.ReadFull(br, magicBytes); err != nil {
		return nil, err
	}
	if string(magicBytes) != magicNum {
		return nil, fmt.Errorf("invalid file format: magic number mismatch")
	}

	version, err := br.ReadByte()
	if err != nil {
		return nil, err
	}
	s := &Snapshot{Version: version}
	if err := checkVersion(s); err != nil {
		return nil, err
	}

	var count uint64
	if err := binary.Read(br, binary.LittleEndian, &count); err != nil {
		return nil, err
	}

	// the count is not trusted for preallocation
	for i := uint64(0); i < count; i++ {
		var e Entry

		keyType, err := br.ReadByte()
		if err != nil {
			return nil, err
		}
		e.KeyType = slot.KeyType(keyType)
		if e.KeyType > slot.KeyTSymbol {
			return nil, fmt.Errorf("entry %d: unknown key type %d", i, keyType)
		}

		if e.Name, err = readString(br); err != nil {
			return nil, err
		}
		if err := binary.Read(br, binary.LittleEndian, &e.Index); err != nil {
			return nil, err
		}

		var attrs uint32
		if err := binary.Read(br, binary.LittleEndian, &attrs); err != nil {
			return nil, err
		}
		e.Attributes = slot.Attributes(attrs)

		if e.Value, err = readValue(br); err != nil {
			return nil, err
		}
		s.Entries = append(s.Entries, e)
	}

	return s, nil
}

func readString(br *bufio.Reader) (string, error) {
	var n uint32
	if err := binary.Read(br, binary.LittleEndian, &n); err != nil {
		return "", err
	}
	if n > maxNameLength {
		return "", fmt.Errorf("string length %d exceeds limit", n)
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(br, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}

func readValue(br *bufio.Reader) (Value, error) {
	t, err := br.ReadByte()
	if err != nil {
		return Value{}, err
	}
	v := Value{Type: ValueType(t)}
	switch v.Type {
	case VTNil:
	case VTBool:
		x, err := br.ReadByte()
		if err != nil {
			return Value{}, err
		}
		v.Bool = x != 0
	case VTInt, VTInt64:
		if err := binary.Read(br, binary.LittleEndian, &v.Int); err != nil {
			return Value{}, err
		}
	case VTFloat:
		var bits uint64
		if err := binary.Read(br, binary.LittleEndian, &bits); err != nil {
			return Value{}, err
		}
		v.Float = math.Float64frombits(bits)
	case VTString:
		if v.String, err = readString(br); err != nil {
			return Value{}, err
		}
	default:
		return Value{}, fmt.Errorf("unknown value type: %d", t)
	}
	return v, nil
}
