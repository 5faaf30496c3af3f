package chain

import (
	"errors"
	"fmt"
	"reflect"
)

var (
	// ErrDuplicate is raised when a value's type is already present in the Context.
	ErrDuplicate = errors.New("value of this type already present")
	// ErrMissing is raised when no value matches the requested type.
	ErrMissing = errors.New("no value of this type")
	// ErrAmbiguous is raised when more than one value matches an interface type.
	ErrAmbiguous = errors.New("more than one value matches this type")
	// ErrNilValue is raised when a nil interface is added; it has no type to key on.
	ErrNilValue = errors.New("nil value has no type")
)

// MisuseError reports a bug in the calling handler: a duplicate insert or a
// lookup that cannot be satisfied. It is raised with panic, never returned.
type MisuseError struct {
	Type reflect.Type
	Err  error
}

func (e *MisuseError) Error() string {
	return fmt.Sprintf("chain: %v: %v", e.Err, e.Type)
}

func (e *MisuseError) Unwrap() error { return e.Err }

// Context is a short-lived bag holding at most one value per concrete type.
// It is append-only and must stay confined to a single chain.
type Context struct {
	values map[reflect.Type]any
	order  []reflect.Type
}

func newContext() *Context {
	return &Context{values: make(map[reflect.Type]any)}
}

// TryAdd stores v under its dynamic type. It returns false, leaving the
// existing value in place, when that type is already present.
func (c *Context) TryAdd(v any) bool {
	if v == nil {
		panic(&MisuseError{Err: ErrNilValue})
	}
	t := reflect.TypeOf(v)
	if _, exists := c.values[t]; exists {
		return false
	}
	c.values[t] = v
	c.order = append(c.order, t)
	return true
}

// Add stores v under its dynamic type and panics with a *MisuseError if a
// value of that type is already present.
func (c *Context) Add(v any) {
	if !c.TryAdd(v) {
		panic(&MisuseError{Type: reflect.TypeOf(v), Err: ErrDuplicate})
	}
}

// Len returns the number of stored values.
func (c *Context) Len() int { return len(c.values) }

// Types lists the stored types in insertion order.
func (c *Context) Types() []reflect.Type {
	out := make([]reflect.Type, len(c.order))
	copy(out, c.order)
	return out
}

// Get returns the unique value of type T.
// For an interface T, the value is the single stored value implementing it.
// It panics with a *MisuseError when there is no match or, for interfaces,
// more than one.
func Get[T any](c *Context) T {
	v, ok := Lookup[T](c)
	if !ok {
		panic(&MisuseError{Type: reflect.TypeFor[T](), Err: ErrMissing})
	}
	return v
}

// Lookup is Get without the panic on a missing value. Ambiguity still panics.
func Lookup[T any](c *Context) (T, bool) {
	var zero T
	t := reflect.TypeFor[T]()

	if v, ok := c.values[t]; ok {
		return v.(T), true
	}
	if t.Kind() != reflect.Interface {
		return zero, false
	}

	var (
		found T
		count int
	)
	for _, st := range c.order {
		if st.Implements(t) {
			found = c.values[st].(T)
			count++
		}
	}
	switch count {
	case 0:
		return zero, false
	case 1:
		return found, true
	default:
		panic(&MisuseError{Type: t, Err: ErrAmbiguous})
	}
}
