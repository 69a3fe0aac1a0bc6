// Package transform defines transform registry and builtin transforms.
//
// Transforms post-process values produced by matched expressions.
// A grammar refers to a transform by dotted name, e.g. $builtin.take(expr, field).
package transform

import (
	"sort"
	"strings"

	"go.uber.org/zap"

	err "github.com/ava12/barg/errors"
	"github.com/ava12/barg/value"
)

// Context gives transforms access to the matching environment.
type Context interface {
	Logger() *zap.Logger
	// Lookup resolves another registered transform.
	Lookup(name string) (Func, error)
}

// Func is a transform function.
// args contain string (identifier) and int arguments listed in the grammar after the pattern.
type Func func(ctx Context, v value.Value, args ...any) (value.Value, error)

// Error codes used by registry and builtins:
const (
	UnknownTransformError = err.TransformErrors + iota
	WrongNameError
	WrongFieldError
	WrongValueError
	WrongMarkError
	NotListError
	WrongArgumentError
)

// Internal error codes:
const (
	NotCallableError = err.InternalErrors + iota
	NotStructError
)

type namespace map[string]any

// Registry maps dotted names to transform functions.
// Registry is not safe for concurrent modification, Module uses a private clone.
type Registry struct {
	root namespace
}

func NewRegistry() *Registry {
	return &Registry{root: make(namespace)}
}

// Default returns a registry containing builtin transforms.
func Default() *Registry {
	r := NewRegistry()
	for name, fn := range builtins {
		r.mustRegister(BuiltinNamespace+"."+name, fn)
	}
	return r
}

func (r *Registry) mustRegister(path string, fn Func) {
	if e := r.Register(path, fn); e != nil {
		panic(e)
	}
}

func splitPath(path string) ([]string, error) {
	parts := strings.Split(path, ".")
	for _, p := range parts {
		if p == "" {
			return nil, err.Format(WrongNameError, "incorrect transform name %q", path)
		}
	}
	return parts, nil
}

// Register adds fn under dotted path, replacing a previously registered function.
// A path cannot name both a function and a namespace.
func (r *Registry) Register(path string, fn Func) error {
	parts, e := splitPath(path)
	if e != nil {
		return e
	}

	ns := r.root
	for _, p := range parts[:len(parts)-1] {
		switch x := ns[p].(type) {
		case nil:
			sub := make(namespace)
			ns[p] = sub
			ns = sub
		case namespace:
			ns = x
		default:
			return err.Format(WrongNameError, "%q is a transform, not a namespace", p)
		}
	}

	last := parts[len(parts)-1]
	if _, isNs := ns[last].(namespace); isNs {
		return err.Format(WrongNameError, "%q is a namespace", path)
	}
	ns[last] = fn
	return nil
}

// Merge registers every function of ext.
// Keys may be dotted paths, values may be Func, func literals of the same signature,
// or nested map[string]any treated as namespaces.
func (r *Registry) Merge(ext map[string]any) error {
	return r.merge("", ext)
}

func (r *Registry) merge(prefix string, ext map[string]any) error {
	keys := make([]string, 0, len(ext))
	for k := range ext {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		path := prefix + k
		var e error
		switch x := ext[k].(type) {
		case Func:
			e = r.Register(path, x)
		case func(Context, value.Value, ...any) (value.Value, error):
			e = r.Register(path, x)
		case map[string]any:
			e = r.merge(path+".", x)
		default:
			e = err.Format(WrongNameError, "%q: unsupported transform type %T", path, x)
		}
		if e != nil {
			return e
		}
	}
	return nil
}

// Lookup resolves dotted name.
// Unknown names produce bad grammar error, namespace names produce internal error.
func (r *Registry) Lookup(path string) (Func, error) {
	parts, e := splitPath(path)
	if e != nil {
		return nil, e
	}

	var item any = r.root
	for _, p := range parts {
		ns, isNs := item.(namespace)
		if !isNs {
			return nil, err.Format(UnknownTransformError, "unknown transform %q", path)
		}

		item = ns[p]
		if item == nil {
			return nil, err.Format(UnknownTransformError, "unknown transform %q", path)
		}
	}

	fn, isFunc := item.(Func)
	if !isFunc {
		return nil, err.Format(NotCallableError, "transform %q is not callable", path)
	}
	return fn, nil
}

// Names returns sorted dotted names of all registered functions.
func (r *Registry) Names() []string {
	var names []string
	collectNames(r.root, "", &names)
	sort.Strings(names)
	return names
}

func collectNames(ns namespace, prefix string, names *[]string) {
	for k, item := range ns {
		if sub, isNs := item.(namespace); isNs {
			collectNames(sub, prefix+k+".", names)
		} else {
			*names = append(*names, prefix+k)
		}
	}
}

// Clone returns a deep copy of namespaces, functions are shared.
func (r *Registry) Clone() *Registry {
	return &Registry{root: cloneNamespace(r.root)}
}

func cloneNamespace(ns namespace) namespace {
	res := make(namespace, len(ns))
	for k, item := range ns {
		if sub, isNs := item.(namespace); isNs {
			res[k] = cloneNamespace(sub)
		} else {
			res[k] = item
		}
	}
	return res
}
