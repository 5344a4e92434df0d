// Package options is the generic functional-option plumbing shared by the
// block decoder, the snapshot encoder, the root decode entry points, and the
// batch runner. Each of those declares its own `type Option =
// options.Option[*X]` alias, so callers never see the generics.
package options

// Option configures a target of type T and may reject an invalid value.
type Option[T any] interface {
	apply(T) error
}

// Func adapts a plain function into an Option.
type Func[T any] struct {
	applyFunc func(T) error
}

func (f *Func[T]) apply(target T) error {
	return f.applyFunc(target)
}

// New wraps a validating configuration function. Use it for options that can
// receive an out-of-range value, such as a concurrency bound or an unknown
// compression type.
func New[T any](fn func(T) error) *Func[T] {
	return &Func[T]{applyFunc: fn}
}

// NoError wraps a configuration function that cannot fail, such as setting a
// logger or a progress sink.
func NoError[T any](fn func(T)) *Func[T] {
	return &Func[T]{
		applyFunc: func(target T) error {
			fn(target)
			return nil
		},
	}
}

// Apply runs the options against target in order, stopping at the first
// rejection so a constructor reports exactly one configuration error.
func Apply[T any](target T, opts ...Option[T]) error {
	for _, opt := range opts {
		if err := opt.apply(target); err != nil {
			return err
		}
	}

	return nil
}
