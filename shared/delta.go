package shared

import (
	"bytes"
	"encoding/binary"
	"errors"
	"math"
)

// EntityOp tags how an entity record in a STATE_DELTA should be applied.
type EntityOp uint8

const (
	OpFull EntityOp = iota
	OpDelta
	OpRemove
)

// Player field bits, set by the caller only on OpDelta records; for OpFull
// the encoder writes every field with every bit set, whatever Fields holds.
const (
	FieldX EntityOp = 1 << iota
	FieldY
	FieldAngle
	FieldHealth
	FieldSeq
)

// PlayerRecord is one player's slice of a STATE_DELTA.
type PlayerRecord struct {
	SessionID string
	Op        EntityOp
	Fields    uint8
	X, Y      float32
	Angle     float32
	Health    int32
	LastSeq   uint32
}

// BulletRecord is one bullet's slice of a STATE_DELTA. Bullets are only
// ever sent OpFull (spawn) or OpRemove: their trajectory is immutable once
// spawned, so there is no per-field delta to send, per the spec's
// "trajectory descriptor" design.
type BulletRecord struct {
	BulletID uint32
	Op       EntityOp
	OwnerID  string
	X0, Y0   float32
	Angle    float32
	Speed    float32
}

// StateDelta is the per-client view-scoped snapshot the replicator emits
// once per tick.
type StateDelta struct {
	Tick    uint64
	Players []PlayerRecord
	Bullets []BulletRecord
}

func writeString(buf *bytes.Buffer, s string) {
	buf.WriteByte(byte(len(s)))
	buf.WriteString(s)
}

func readString(r *bytes.Reader) (string, error) {
	n, err := r.ReadByte()
	if err != nil {
		return "", err
	}
	b := make([]byte, n)
	if _, err := r.Read(b); err != nil {
		return "", err
	}
	return string(b), nil
}

func writeFloat32(buf *bytes.Buffer, f float32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], math.Float32bits(f))
	buf.Write(b[:])
}

func readFloat32(r *bytes.Reader) (float32, error) {
	var b [4]byte
	if _, err := r.Read(b[:]); err != nil {
		return 0, err
	}
	return math.Float32frombits(binary.LittleEndian.Uint32(b[:])), nil
}

// EncodeStateDelta writes a compact typed-field binary encoding of d.
// Session ids are assumed to fit in 255 bytes, which holds for the
// UUID string ids this core assigns (see Room.Join in server/room.go).
func EncodeStateDelta(d StateDelta) []byte {
	buf := &bytes.Buffer{}
	var hdr [8]byte
	binary.LittleEndian.PutUint64(hdr[:], d.Tick)
	buf.Write(hdr[:])

	var nPlayers [2]byte
	binary.LittleEndian.PutUint16(nPlayers[:], uint16(len(d.Players)))
	buf.Write(nPlayers[:])
	for _, p := range d.Players {
		writeString(buf, p.SessionID)
		buf.WriteByte(byte(p.Op))
		if p.Op == OpRemove {
			continue
		}
		fields := p.Fields
		if p.Op == OpFull {
			fields = uint8(FieldX | FieldY | FieldAngle | FieldHealth | FieldSeq)
		}
		buf.WriteByte(fields)
		if fields&uint8(FieldX) != 0 {
			writeFloat32(buf, p.X)
		}
		if fields&uint8(FieldY) != 0 {
			writeFloat32(buf, p.Y)
		}
		if fields&uint8(FieldAngle) != 0 {
			writeFloat32(buf, p.Angle)
		}
		if fields&uint8(FieldHealth) != 0 {
			var b [4]byte
			binary.LittleEndian.PutUint32(b[:], uint32(p.Health))
			buf.Write(b[:])
		}
		if fields&uint8(FieldSeq) != 0 {
			var b [4]byte
			binary.LittleEndian.PutUint32(b[:], p.LastSeq)
			buf.Write(b[:])
		}
	}

	var nBullets [2]byte
	binary.LittleEndian.PutUint16(nBullets[:], uint16(len(d.Bullets)))
	buf.Write(nBullets[:])
	for _, b := range d.Bullets {
		var idb [4]byte
		binary.LittleEndian.PutUint32(idb[:], b.BulletID)
		buf.Write(idb[:])
		buf.WriteByte(byte(b.Op))
		if b.Op == OpRemove {
			continue
		}
		writeString(buf, b.OwnerID)
		writeFloat32(buf, b.X0)
		writeFloat32(buf, b.Y0)
		writeFloat32(buf, b.Angle)
		writeFloat32(buf, b.Speed)
	}
	return buf.Bytes()
}

// DecodeStateDelta parses the binary encoding produced by EncodeStateDelta.
func DecodeStateDelta(data []byte) (StateDelta, error) {
	r := bytes.NewReader(data)
	var d StateDelta

	var hdr [8]byte
	if _, err := r.Read(hdr[:]); err != nil {
		return d, err
	}
	d.Tick = binary.LittleEndian.Uint64(hdr[:])

	var nPlayers [2]byte
	if _, err := r.Read(nPlayers[:]); err != nil {
		return d, err
	}
	np := binary.LittleEndian.Uint16(nPlayers[:])
	d.Players = make([]PlayerRecord, 0, np)
	for i := uint16(0); i < np; i++ {
		var p PlayerRecord
		sid, err := readString(r)
		if err != nil {
			return d, err
		}
		p.SessionID = sid
		opb, err := r.ReadByte()
		if err != nil {
			return d, err
		}
		p.Op = EntityOp(opb)
		if p.Op != OpRemove {
			fields, err := r.ReadByte()
			if err != nil {
				return d, err
			}
			p.Fields = fields
			if fields&uint8(FieldX) != 0 {
				if p.X, err = readFloat32(r); err != nil {
					return d, err
				}
			}
			if fields&uint8(FieldY) != 0 {
				if p.Y, err = readFloat32(r); err != nil {
					return d, err
				}
			}
			if fields&uint8(FieldAngle) != 0 {
				if p.Angle, err = readFloat32(r); err != nil {
					return d, err
				}
			}
			if fields&uint8(FieldHealth) != 0 {
				var b [4]byte
				if _, err := r.Read(b[:]); err != nil {
					return d, err
				}
				p.Health = int32(binary.LittleEndian.Uint32(b[:]))
			}
			if fields&uint8(FieldSeq) != 0 {
				var b [4]byte
				if _, err := r.Read(b[:]); err != nil {
					return d, err
				}
				p.LastSeq = binary.LittleEndian.Uint32(b[:])
			}
		}
		d.Players = append(d.Players, p)
	}

	var nBullets [2]byte
	if _, err := r.Read(nBullets[:]); err != nil {
		return d, err
	}
	nb := binary.LittleEndian.Uint16(nBullets[:])
	d.Bullets = make([]BulletRecord, 0, nb)
	for i := uint16(0); i < nb; i++ {
		var b BulletRecord
		var idb [4]byte
		if _, err := r.Read(idb[:]); err != nil {
			return d, err
		}
		b.BulletID = binary.LittleEndian.Uint32(idb[:])
		opb, err := r.ReadByte()
		if err != nil {
			return d, err
		}
		b.Op = EntityOp(opb)
		if b.Op != OpRemove {
			owner, err := readString(r)
			if err != nil {
				return d, err
			}
			b.OwnerID = owner
			if b.X0, err = readFloat32(r); err != nil {
				return d, err
			}
			if b.Y0, err = readFloat32(r); err != nil {
				return d, err
			}
			if b.Angle, err = readFloat32(r); err != nil {
				return d, err
			}
			if b.Speed, err = readFloat32(r); err != nil {
				return d, err
			}
		}
		d.Bullets = append(d.Bullets, b)
	}

	if r.Len() != 0 {
		return d, errors.New("trailing bytes after state delta")
	}
	return d, nil
}
