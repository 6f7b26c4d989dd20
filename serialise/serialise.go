package serialise

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"time"
)

// ErrUnsupportedType is returned when a value has no canonical representation.
var ErrUnsupportedType = errors.New("serialise: unsupported value type")

// LatLon is a geographic coordinate in degrees.
type LatLon struct {
	Lat float64
	Lon float64
}

// Value converts v into the canonical byte form stored in a value slot or
// used as term text.
//
// Encodings:
//   - string, []byte: unchanged
//   - bool: "t" or "f"
//   - signed/unsigned integers and floats: 8-byte sortable float (see Sortable)
//   - time.Time: sortable float of fractional Unix seconds (UTC)
//   - LatLon: two sortable floats, latitude first
func Value(v any) ([]byte, error) {
	switch x := v.(type) {
	case string:
		return []byte(x), nil
	case []byte:
		return x, nil
	case bool:
		if x {
			return []byte("t"), nil
		}
		return []byte("f"), nil
	case int:
		return Sortable(float64(x)), nil
	case int8:
		return Sortable(float64(x)), nil
	case int16:
		return Sortable(float64(x)), nil
	case int32:
		return Sortable(float64(x)), nil
	case int64:
		return Sortable(float64(x)), nil
	case uint:
		return Sortable(float64(x)), nil
	case uint8:
		return Sortable(float64(x)), nil
	case uint16:
		return Sortable(float64(x)), nil
	case uint32:
		return Sortable(float64(x)), nil
	case uint64:
		return Sortable(float64(x)), nil
	case float32:
		return Sortable(float64(x)), nil
	case float64:
		return Sortable(x), nil
	case time.Time:
		return Sortable(float64(x.UTC().UnixNano()) / float64(time.Second)), nil
	case LatLon:
		if x.Lat < -90 || x.Lat > 90 || x.Lon < -180 || x.Lon > 180 {
			return nil, fmt.Errorf("serialise: coordinate out of range: %v,%v", x.Lat, x.Lon)
		}
		out := make([]byte, 0, 16)
		out = append(out, Sortable(x.Lat)...)
		out = append(out, Sortable(x.Lon)...)
		return out, nil
	case nil:
		return nil, fmt.Errorf("%w: nil", ErrUnsupportedType)
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedType, v)
	}
}

// Sortable encodes f so that the byte-wise order of encodings matches the
// numeric order of the inputs. NaN sorts after +Inf.
func Sortable(f float64) []byte {
	if f == 0 {
		f = 0 // fold -0 into +0
	}
	bits := math.Float64bits(f)
	if bits&(1<<63) == 0 {
		bits |= 1 << 63
	} else {
		bits = ^bits
	}
	out := make([]byte, 8)
	binary.BigEndian.PutUint64(out, bits)
	return out
}

// Unsortable decodes a value produced by Sortable.
func Unsortable(b []byte) (float64, error) {
	if len(b) != 8 {
		return 0, fmt.Errorf("serialise: sortable value must be 8 bytes, got %d", len(b))
	}
	bits := binary.BigEndian.Uint64(b)
	if bits&(1<<63) != 0 {
		bits &^= 1 << 63
	} else {
		bits = ^bits
	}
	return math.Float64frombits(bits), nil
}
