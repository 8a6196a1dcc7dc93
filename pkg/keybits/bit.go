package keybits

import (
	"errors"
	"strconv"

	"github.com/Sternrassler/restext/pkg/view"
)

// ErrSkip tells the constructor to omit the dimension from the key.
var ErrSkip = errors.New("skip key bit")

// Params selects which source keys a bit reads.
type Params struct {
	all  bool
	keys []string
}

// All selects every key present in the source at call time.
var All = Params{all: true}

// Keys selects the named source keys.
func Keys(keys ...string) Params {
	return Params{keys: append([]string(nil), keys...)}
}

// Indices selects positional arguments.
func Indices(indices ...int) Params {
	keys := make([]string, len(indices))
	for i, idx := range indices {
		keys[i] = strconv.Itoa(idx)
	}
	return Params{keys: keys}
}

// IsAll reports whether p is All.
func (p Params) IsAll() bool { return p.all }

// IsSet reports whether p selects anything.
func (p Params) IsSet() bool { return p.all || len(p.keys) > 0 }

// Keys returns the selected keys. It is empty for All.
func (p Params) Keys() []string { return p.keys }

// Input is everything a bit may look at.
type Input struct {
	Params Params
	*view.Call
}

// Bit computes one dimension of a key.
type Bit interface {
	Value(in Input) (any, error)
}

// Func adapts a function to Bit.
type Func func(in Input) (any, error)

// Value implements Bit.
func (f Func) Value(in Input) (any, error) {
	return f(in)
}

// pick reads the keys selected by p from a source. Keys the source lacks
// are omitted. rename maps a selected key to its output name.
func pick(p Params, keys func() []string, get func(string) (string, bool), rename func(string) string) map[string]string {
	selected := p.keys
	if p.all {
		selected = keys()
	}
	out := make(map[string]string, len(selected))
	for _, k := range selected {
		v, ok := get(k)
		if !ok {
			continue
		}
		if rename != nil {
			k = rename(k)
		}
		out[k] = v
	}
	return out
}
