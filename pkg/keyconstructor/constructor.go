// Package keyconstructor combines key bits into a single digest used as a
// response cache key or entity tag.
//
// A KeyConstructor holds an ordered list of named bits. For each call it
// builds {name: value}, encodes it as JSON with sorted keys and returns
// the MD5 hex digest. Declaration order therefore never changes the
// digest; only bit names and their values do.
//
//	kc := keyconstructor.New("books").
//		Bit("unique_method_id", keybits.UniqueMethodID{}, keybits.Params{}).
//		Bit("query_params", keybits.QueryParams{}, keybits.Keys("q"))
//
//	key, err := kc.Key(call)
package keyconstructor

import (
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Sternrassler/restext/pkg/keybits"
	"github.com/Sternrassler/restext/pkg/logging"
	"github.com/Sternrassler/restext/pkg/request"
	"github.com/Sternrassler/restext/pkg/view"
)

type entry struct {
	name   string
	bit    keybits.Bit
	params keybits.Params
}

// KeyConstructor is an ordered set of named key bits.
// It implements view.KeyFunc.
type KeyConstructor struct {
	name    string
	id      string
	entries []entry
	memoize bool
	logger  zerolog.Logger
}

// Option configures a KeyConstructor.
type Option func(*KeyConstructor)

// WithMemoizeForRequest caches the digest on the request so the bits run
// at most once per request and argument set.
func WithMemoizeForRequest(memoize bool) Option {
	return func(k *KeyConstructor) { k.memoize = memoize }
}

// WithParams overrides the params of an already declared bit.
func WithParams(name string, params keybits.Params) Option {
	return func(k *KeyConstructor) {
		if i := k.index(name); i >= 0 {
			k.entries[i].params = params
		}
	}
}

// WithLogger replaces the component logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(k *KeyConstructor) { k.logger = logger }
}

// New returns an empty constructor.
func New(name string, opts ...Option) *KeyConstructor {
	k := &KeyConstructor{
		name:   name,
		id:     uuid.NewString(),
		logger: logging.NewLogger("keyconstructor").With().Str("constructor", name).Logger(),
	}
	for _, opt := range opts {
		opt(k)
	}
	return k
}

// Bit declares a bit. Redeclaring a name replaces the bit in place.
func (k *KeyConstructor) Bit(name string, bit keybits.Bit, params keybits.Params) *KeyConstructor {
	if i := k.index(name); i >= 0 {
		k.entries[i] = entry{name: name, bit: bit, params: params}
		return k
	}
	k.entries = append(k.entries, entry{name: name, bit: bit, params: params})
	return k
}

// Extend returns a new constructor starting with k's bits. Bits declared
// on the result come after the inherited ones. The memoization setting is
// inherited unless overridden by opts.
func (k *KeyConstructor) Extend(name string, opts ...Option) *KeyConstructor {
	child := &KeyConstructor{
		name:    name,
		id:      uuid.NewString(),
		entries: append([]entry(nil), k.entries...),
		memoize: k.memoize,
		logger:  k.logger.With().Str("constructor", name).Logger(),
	}
	for _, opt := range opts {
		opt(child)
	}
	return child
}

// Name returns the constructor name.
func (k *KeyConstructor) Name() string { return k.name }

// BitNames returns the declared bit names in declaration order.
func (k *KeyConstructor) BitNames() []string {
	names := make([]string, len(k.entries))
	for i, e := range k.entries {
		names[i] = e.name
	}
	return names
}

// Key implements view.KeyFunc.
func (k *KeyConstructor) Key(call *view.Call) (string, error) {
	if !k.memoize {
		KeyConstructions.WithLabelValues("false").Inc()
		return k.compute(call)
	}

	state := stateOf(call)
	if state == nil {
		KeyConstructions.WithLabelValues("false").Inc()
		return k.compute(call)
	}

	slot, err := k.memoKey(call)
	if err != nil {
		return "", err
	}
	if key, ok := state.Memoized(slot); ok {
		KeyConstructions.WithLabelValues("true").Inc()
		k.logger.Debug().Str("key", key).Msg("memoized key reused")
		return key, nil
	}

	KeyConstructions.WithLabelValues("false").Inc()
	key, err := k.compute(call)
	if err != nil {
		return "", err
	}
	state.Memoize(slot, key)
	return key, nil
}

// Data evaluates every bit for call. Bits returning keybits.ErrSkip are
// left out.
func (k *KeyConstructor) Data(call *view.Call) (map[string]any, error) {
	data := make(map[string]any, len(k.entries))
	for _, e := range k.entries {
		v, err := e.bit.Value(keybits.Input{Params: e.params, Call: call})
		if errors.Is(err, keybits.ErrSkip) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("key bit %q: %w", e.name, err)
		}
		data[e.name] = v
	}
	return data, nil
}

func (k *KeyConstructor) compute(call *view.Call) (string, error) {
	data, err := k.Data(call)
	if err != nil {
		return "", err
	}
	key, err := Digest(data)
	if err != nil {
		return "", err
	}
	k.logger.Debug().Str("key", key).Msg("key constructed")
	return key, nil
}

// memoKey identifies the memo slot of one constructor, view method and
// argument set.
func (k *KeyConstructor) memoKey(call *view.Call) (string, error) {
	b, err := json.Marshal(struct {
		Method   string            `json:"unique_method_id"`
		Args     []string          `json:"args"`
		Kwargs   map[string]string `json:"kwargs"`
		Instance string            `json:"instance_id"`
	}{
		Method:   view.MethodID(call.View, call.Method),
		Args:     call.Args,
		Kwargs:   call.Kwargs,
		Instance: k.id,
	})
	if err != nil {
		return "", fmt.Errorf("encode memo key: %w", err)
	}
	return "keyconstructor:" + string(b), nil
}

func (k *KeyConstructor) index(name string) int {
	for i, e := range k.entries {
		if e.name == name {
			return i
		}
	}
	return -1
}

// Digest returns the MD5 hex digest of data encoded as JSON. Map keys are
// sorted by the encoder at every level.
func Digest(data map[string]any) (string, error) {
	b, err := json.Marshal(data)
	if err != nil {
		return "", fmt.Errorf("encode key data: %w", err)
	}
	sum := md5.Sum(b)
	return hex.EncodeToString(sum[:]), nil
}

func stateOf(call *view.Call) *request.State {
	if call == nil || call.Request == nil {
		return nil
	}
	return request.FromContext(call.Request.Context())
}
