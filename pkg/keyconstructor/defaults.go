package keyconstructor

import (
	"github.com/Sternrassler/restext/pkg/keybits"
	"github.com/Sternrassler/restext/pkg/settings"
)

// NewDefaultKeyConstructor varies on view method, format and language.
func NewDefaultKeyConstructor(opts ...Option) *KeyConstructor {
	return New("default", opts...).
		Bit("unique_method_id", keybits.UniqueMethodID{}, keybits.Params{}).
		Bit("format", keybits.Format{}, keybits.Params{}).
		Bit("language", keybits.Language{}, keybits.Params{})
}

// NewDefaultObjectKeyConstructor adds every URL keyword argument.
func NewDefaultObjectKeyConstructor(opts ...Option) *KeyConstructor {
	return NewDefaultKeyConstructor(opts...).
		Extend("default_object").
		Bit("kwargs", keybits.Kwargs{}, keybits.All)
}

// NewDefaultListKeyConstructor adds the pagination query parameters.
func NewDefaultListKeyConstructor(opts ...Option) *KeyConstructor {
	return NewDefaultKeyConstructor(opts...).
		Extend("default_list").
		Bit("pagination", keybits.Pagination{}, keybits.Params{})
}

// NewDefaultAPIModelInstanceKeyConstructor varies on the stored state of
// the looked-up object.
func NewDefaultAPIModelInstanceKeyConstructor(opts ...Option) *KeyConstructor {
	return New("default_api_model_instance", opts...).
		Bit("unique_view_id", keybits.UniqueViewID{}, keybits.Params{}).
		Bit("instance", keybits.RetrieveModel{}, keybits.Params{})
}

// NewDefaultAPIModelListKeyConstructor varies on the list query and page.
func NewDefaultAPIModelListKeyConstructor(opts ...Option) *KeyConstructor {
	return New("default_api_model_list", opts...).
		Bit("unique_view_id", keybits.UniqueViewID{}, keybits.Params{}).
		Bit("list_sql_query", keybits.ListSQLQuery{}, keybits.Params{}).
		Bit("pagination", keybits.Pagination{}, keybits.Params{})
}

// Defaults are the key and entity tag functions used when a decorator is
// given none. Each field is its own constructor instance.
type Defaults struct {
	CacheKeyFunc       *KeyConstructor
	ETagFunc           *KeyConstructor
	ObjectETagFunc     *KeyConstructor
	ListETagFunc       *KeyConstructor
	APIObjectETagFunc  *KeyConstructor
	APIListETagFunc    *KeyConstructor
	ObjectCacheKeyFunc *KeyConstructor
	ListCacheKeyFunc   *KeyConstructor
}

// NewDefaults builds the default functions, memoizing per request when s
// says so.
func NewDefaults(s settings.Settings) Defaults {
	memo := WithMemoizeForRequest(s.DefaultKeyConstructorMemoizeForRequest)
	return Defaults{
		CacheKeyFunc:       NewDefaultKeyConstructor(memo),
		ETagFunc:           NewDefaultKeyConstructor(memo),
		ObjectETagFunc:     NewDefaultObjectKeyConstructor(memo),
		ListETagFunc:       NewDefaultListKeyConstructor(memo),
		APIObjectETagFunc:  NewDefaultAPIModelInstanceKeyConstructor(memo),
		APIListETagFunc:    NewDefaultAPIModelListKeyConstructor(memo),
		ObjectCacheKeyFunc: NewDefaultObjectKeyConstructor(memo),
		ListCacheKeyFunc:   NewDefaultListKeyConstructor(memo),
	}
}
