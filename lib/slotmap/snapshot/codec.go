package snapshot

import (
	"encoding/gob"
	"encoding/json"
	"fmt"
	"io"
)

// Codec writes and reads snapshots
type Codec interface {
	// Name returns the name used to select the codec
	Name() string
	// Encode writes s to w
	Encode(w io.Writer, s *Snapshot) error
	// Decode reads a snapshot from r
	Decode(r io.Reader) (*Snapshot, error)
}

// Codecs lists the codecs by name
var Codecs = map[string]func() Codec{
	"binary": NewBinaryCodec,
	"json":   NewJSONCodec,
	"gob":    NewGOBCodec,
}

// ByName returns the codec registered under name
func ByName(name string) (Codec, error) {
	factory, ok := Codecs[name]
	if !ok {
		return nil, fmt.Errorf("unknown codec: %s (use binary, json or gob)", name)
	}
	return factory(), nil
}

// checkVersion rejects snapshots written by a different model version
func checkVersion(s *Snapshot) error {
	if s.Version != Version {
		return fmt.Errorf("unsupported snapshot version: %d (expected %d)", s.Version, Version)
	}
	return nil
}

// --------------------------------------------------------------------------
// JSON
// --------------------------------------------------------------------------

// NewJSONCodec creates a codec writing indented json
func NewJSONCodec() Codec {
	return &jsonCodecImpl{}
}

type jsonCodecImpl struct{}

func (j jsonCodecImpl) Name() string { return "json" }

func (j jsonCodecImpl) Encode(w io.Writer, s *Snapshot) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(s)
}

func (j jsonCodecImpl) Decode(r io.Reader) (*Snapshot, error) {
	var s Snapshot
	if err := json.NewDecoder(r).Decode(&s); err != nil {
		return nil, err
	}
	if err := checkVersion(&s); err != nil {
		return nil, err
	}
	return &s, nil
}

// --------------------------------------------------------------------------
// GOB
// --------------------------------------------------------------------------

// NewGOBCodec creates a codec using Go's gob format
func NewGOBCodec() Codec {
	return &gobCodecImpl{}
}

type gobCodecImpl struct{}

func (g gobCodecImpl) Name() string { return "gob" }

func (g gobCodecImpl) Encode(w io.Writer, s *Snapshot) error {
	return gob.NewEncoder(w).Encode(s)
}

func (g gobCodecImpl) Decode(r io.Reader) (*Snapshot, error) {
	var s Snapshot
	if err := gob.NewDecoder(r).Decode(&s); err != nil {
		return nil, err
	}
	if err := checkVersion(&s); err != nil {
		return nil, err
	}
	return &s, nil
}
