package loader

import (
	"encoding/binary"
	"fmt"
	"math"
	"math/big"
	"os"

	"github.com/raillang/railway/internal/value"
)

// Kind selects the fixed-width element type a typed data file decodes as
// (spec.md §6 `-f32`/`-f64`/`-i32`/`-i64`).
type Kind int

const (
	KindF32 Kind = iota
	KindF64
	KindI32
	KindI64
)

func (k Kind) width() int {
	switch k {
	case KindF32, KindI32:
		return 4
	default:
		return 8
	}
}

// LoadTypedArray reads path as a flat little-endian array of Kind-width
// fixed values and converts each element to an exact rational (spec.md §1
// "typed file loaders convert to rationals at load time"). Floating-point
// kinds are converted via big.Rat.SetFloat64, which is exact for any
// finite IEEE-754 value (it captures the float's exact binary fraction, not
// a decimal approximation); a NaN or infinite element is an error.
func LoadTypedArray(path string, kind Kind) (*value.Array, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loader: reading %s: %w", path, err)
	}
	w := kind.width()
	if len(data)%w != 0 {
		return nil, fmt.Errorf("loader: %s length %d is not a multiple of %d bytes", path, len(data), w)
	}
	n := len(data) / w
	elems := make([]value.Value, n)
	for i := 0; i < n; i++ {
		chunk := data[i*w : (i+1)*w]
		var r *big.Rat
		switch kind {
		case KindF32:
			bits := binary.LittleEndian.Uint32(chunk)
			f := math.Float32frombits(bits)
			r = new(big.Rat).SetFloat64(float64(f))
		case KindF64:
			bits := binary.LittleEndian.Uint64(chunk)
			f := math.Float64frombits(bits)
			r = new(big.Rat).SetFloat64(f)
		case KindI32:
			v := int32(binary.LittleEndian.Uint32(chunk))
			r = big.NewRat(int64(v), 1)
		case KindI64:
			v := int64(binary.LittleEndian.Uint64(chunk))
			r = big.NewRat(v, 1)
		default:
			return nil, fmt.Errorf("loader: unknown typed-file kind %d", kind)
		}
		if r == nil {
			return nil, fmt.Errorf("loader: %s: element %d is not an exactly representable float (NaN/Inf)", path, i)
		}
		elems[i] = value.NewNumber(r)
	}
	return value.NewArray(elems), nil
}
