package script

import (
	"github.com/dop251/goja"

	"github.com/getmockd/voodoo/pkg/cache"
)

// cacheObject exposes the shared cache to scripts. Property reads and
// writes go straight to the cache. Values are deep-copied both ways, so
// nested changes only land when the script assigns the value back.
type cacheObject struct {
	vm    *goja.Runtime
	cache *cache.Cache
}

func (o *cacheObject) Get(key string) goja.Value {
	v, ok := o.cache.Get(key)
	if !ok {
		return goja.Undefined()
	}
	return o.vm.ToValue(deepCopy(v))
}

func (o *cacheObject) Set(key string, val goja.Value) bool {
	if val == nil || goja.IsUndefined(val) {
		o.cache.Delete(key)
		return true
	}
	o.cache.Set(key, deepCopy(val.Export()))
	return true
}

func (o *cacheObject) Has(key string) bool {
	_, ok := o.cache.Get(key)
	return ok
}

func (o *cacheObject) Delete(key string) bool {
	o.cache.Delete(key)
	return true
}

func (o *cacheObject) Keys() []string {
	return o.cache.Keys()
}

func deepCopy(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = deepCopy(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = deepCopy(val)
		}
		return out
	}
	return v
}
