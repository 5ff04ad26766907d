package promisedrive

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"unicode"
	"unicode/utf8"

	"github.com/AntonStoeckl/hyperdrive-promise-go/drive"
)

var (
	// ErrUnknownMember is returned by Member for names the drive does not have.
	ErrUnknownMember = errors.New("unknown drive member")

	// ErrArgumentMismatch is returned by Func.Call when arguments cannot be passed to the member.
	ErrArgumentMismatch = errors.New("arguments do not match the member signature")

	// ErrArityMismatch is returned when a dual-mode member's callback does not match its declared result count.
	ErrArityMismatch = errors.New("completion callback does not match the declared result count")

	// ErrRawDriveExposed is returned by Func.Call when a member result holds a raw drive
	// that cannot be adapted in place.
	ErrRawDriveExposed = errors.New("member result would expose the raw drive")
)

var (
	errorType    = reflect.TypeFor[error]()
	rawDriveType = reflect.TypeFor[drive.Drive]()
	adapterType  = reflect.TypeFor[*Drive]()
)

// maxDriveSearchDepth bounds the search for raw drives inside fields and results.
const maxDriveSearchDepth = 8

// Func is a callable drive member resolved by name through Member.
// Resolving the same name twice on the same Drive yields the same *Func.
type Func struct {
	name    string
	kind    Kind
	target  reflect.Value
	results int
}

// Name returns the member name f was resolved for.
func (f *Func) Name() string {
	return f.name
}

// Kind returns the classification of f.
func (f *Func) Kind() Kind {
	return f.kind
}

// Member resolves name like a property access on the drive:
//   - properties yield their current value,
//   - dual-mode, companion, and forwarded members yield a memoized *Func,
//   - names outside the table resolve to a method (forwarded) or an exported field of the raw drive.
//
// The raw drive itself is never returned.
func (d *Drive) Member(name string) (any, error) {
	name = canonicalName(name)

	if m, ok := members[name]; ok {
		if m.kind == KindProperty {
			return d.property(m.method), nil
		}

		fn, err := d.function(name, m)
		if err != nil {
			return nil, err
		}

		return fn, nil
	}

	raw := reflect.ValueOf(d.h)
	goName := exportedName(name)

	if raw.MethodByName(goName).IsValid() {
		fn, err := d.function(name, member{kind: KindForward, method: goName})
		if err != nil {
			return nil, err
		}

		return fn, nil
	}

	if field, ok := exportedField(raw, goName); ok {
		return field.Interface(), nil
	}

	return nil, fmt.Errorf("%w: %s", ErrUnknownMember, name)
}

func (d *Drive) property(method string) any {
	return reflect.ValueOf(d.h).MethodByName(method).Call(nil)[0].Interface()
}

func (d *Drive) function(name string, m member) (*Func, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if fn, ok := d.funcs[name]; ok {
		return fn, nil
	}

	// Companions are bound to the adapter, everything else to the raw drive.
	receiver := reflect.ValueOf(d.h)
	if m.kind == KindCompanion {
		receiver = reflect.ValueOf(d)
	}

	target := receiver.MethodByName(m.method)
	if !target.IsValid() {
		return nil, fmt.Errorf("%w: %s", ErrUnknownMember, name)
	}

	if m.kind == KindDualMode {
		if err := checkCallback(target.Type(), m.results); err != nil {
			return nil, fmt.Errorf("%w: %s", err, name)
		}
	}

	fn := &Func{
		name:    name,
		kind:    m.kind,
		target:  target,
		results: m.results,
	}
	d.funcs[name] = fn

	return fn, nil
}

// Call invokes the member with args.
//
// For a dual-mode member called without a trailing callback, the result is a *Promise[any]
// that resolves to nil, the single value, or a []any of all values, depending on how many
// values the member completes with. With a trailing callback the result is nil.
// Other members return their own results; a trailing error result is returned as the error.
//
// Omitted trailing parameters are passed as zero values, a trailing callback always
// lands in the member's callback slot.
func (f *Func) Call(args ...any) (any, error) {
	args = dropNilCallback(args)

	if f.kind == KindDualMode && !endsWithCallback(args) {
		return f.callPromise(args)
	}

	in, err := convertArgs(f.target.Type(), args, endsWithCallback(args))
	if err != nil {
		return nil, fmt.Errorf("%w: %s", err, f.name)
	}

	// The drive would call a missing function argument.
	for i, v := range in {
		if v.Kind() == reflect.Func && v.IsNil() {
			return nil, fmt.Errorf("%w: %s needs a function as argument %d", ErrArgumentMismatch, f.name, i+1)
		}
	}

	out, err := adaptResults(f.target.Call(in))
	if err != nil {
		return nil, fmt.Errorf("%w: %s", err, f.name)
	}

	return splitResults(out)
}

// adaptResults wraps raw drives returned by a member into adapters.
// Results that merely contain a raw drive are refused.
func adaptResults(out []reflect.Value) ([]reflect.Value, error) {
	for i, v := range out {
		if !holdsDrive(v, 0) {
			continue
		}

		raw, ok := v.Interface().(drive.Drive)
		if !ok {
			return nil, ErrRawDriveExposed
		}

		adapted, err := Wrap(raw)
		if err != nil {
			return nil, err
		}
		out[i] = reflect.ValueOf(adapted)
	}

	return out, nil
}

// holdsDrive reports whether v is, or reaches through pointers, interfaces, containers
// and struct fields, a raw drive. Adapters are opaque.
func holdsDrive(v reflect.Value, depth int) bool {
	if !v.IsValid() || depth > maxDriveSearchDepth {
		return false
	}

	switch v.Kind() {
	case reflect.Interface, reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		if v.IsNil() {
			return false
		}
	}

	if v.Type() == adapterType {
		return false
	}

	if v.Kind() != reflect.Interface && v.Type().Implements(rawDriveType) {
		return true
	}

	switch v.Kind() {
	case reflect.Interface, reflect.Pointer:
		return holdsDrive(v.Elem(), depth+1)

	case reflect.Struct:
		if reflect.PointerTo(v.Type()).Implements(rawDriveType) {
			return true
		}
		for i := range v.NumField() {
			if holdsDrive(v.Field(i), depth+1) {
				return true
			}
		}

	case reflect.Slice, reflect.Array:
		if k := v.Type().Elem().Kind(); k <= reflect.Complex128 || k == reflect.String {
			return false
		}
		for i := range v.Len() {
			if holdsDrive(v.Index(i), depth+1) {
				return true
			}
		}

	case reflect.Map:
		iter := v.MapRange()
		for iter.Next() {
			if holdsDrive(iter.Key(), depth+1) || holdsDrive(iter.Value(), depth+1) {
				return true
			}
		}
	}

	return false
}

// Await calls the member and waits for its promise, if it returned one.
func (f *Func) Await(ctx context.Context, args ...any) (any, error) {
	result, err := f.Call(args...)
	if err != nil {
		return nil, err
	}

	if p, ok := result.(*Promise[any]); ok {
		return p.Await(ctx)
	}

	return result, nil
}

func (f *Func) callPromise(args []any) (any, error) {
	ft := f.target.Type()
	slot := ft.NumIn() - 1

	if len(args) > slot {
		return nil, fmt.Errorf("%w: %s takes %d arguments before its callback", ErrArgumentMismatch, f.name, slot)
	}

	leading := make([]any, slot+1)
	copy(leading, args)

	in, err := convertArgs(ft, leading, false)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", err, f.name)
	}

	p := newPromise[any]()
	results := f.results

	in[slot] = reflect.MakeFunc(ft.In(slot), func(out []reflect.Value) []reflect.Value {
		if errValue := out[0]; !errValue.IsNil() {
			p.reject(errValue.Interface().(error))
			return nil
		}

		values := make([]any, 0, len(out)-1)
		for _, v := range out[1:] {
			values = append(values, v.Interface())
		}

		p.resolve(resultValue(values, results))

		return nil
	})

	f.target.Call(in)

	return p, nil
}

// resultValue maps completion values to a single promise value: none, one, or all of them in order.
func resultValue(values []any, results int) any {
	switch results {
	case 0:
		return nil
	case 1:
		return values[0]
	default:
		return values
	}
}

func checkCallback(ft reflect.Type, results int) error {
	if ft.NumIn() == 0 {
		return ErrArityMismatch
	}

	cb := ft.In(ft.NumIn() - 1)
	if cb.Kind() != reflect.Func || cb.NumIn() != results+1 || cb.In(0) != errorType || cb.NumOut() != 0 {
		return ErrArityMismatch
	}

	return nil
}

func endsWithCallback(args []any) bool {
	if len(args) == 0 || args[len(args)-1] == nil {
		return false
	}

	return reflect.TypeOf(args[len(args)-1]).Kind() == reflect.Func
}

// dropNilCallback removes a trailing typed nil func, which selects the promise style.
func dropNilCallback(args []any) []any {
	if !endsWithCallback(args) {
		return args
	}

	if last := reflect.ValueOf(args[len(args)-1]); last.IsNil() {
		return args[:len(args)-1]
	}

	return args
}

func convertArgs(ft reflect.Type, args []any, callbackLast bool) ([]reflect.Value, error) {
	numIn := ft.NumIn()

	if ft.IsVariadic() {
		fixed := numIn - 1
		if len(args) < fixed {
			return nil, ErrArgumentMismatch
		}

		in := make([]reflect.Value, 0, len(args))
		for i, arg := range args {
			t := ft.In(min(i, fixed))
			if i >= fixed {
				t = t.Elem()
			}

			v, err := convertArg(arg, t)
			if err != nil {
				return nil, err
			}
			in = append(in, v)
		}

		return in, nil
	}

	if len(args) > numIn {
		return nil, ErrArgumentMismatch
	}

	padded := args
	if len(args) < numIn {
		padded = make([]any, numIn)
		if callbackLast {
			copy(padded, args[:len(args)-1])
			padded[numIn-1] = args[len(args)-1]
		} else {
			copy(padded, args)
		}
	}

	in := make([]reflect.Value, numIn)
	for i, arg := range padded {
		v, err := convertArg(arg, ft.In(i))
		if err != nil {
			return nil, err
		}
		in[i] = v
	}

	return in, nil
}

func convertArg(arg any, t reflect.Type) (reflect.Value, error) {
	if arg == nil {
		return reflect.Zero(t), nil
	}

	v := reflect.ValueOf(arg)

	switch {
	case v.Type().AssignableTo(t):
		return v, nil
	case isNumber(v.Kind()) && isNumber(t.Kind()):
		return v.Convert(t), nil
	case v.Kind() == reflect.Func && v.Type().ConvertibleTo(t):
		return v.Convert(t), nil
	default:
		return reflect.Value{}, fmt.Errorf("%w: cannot use %s as %s", ErrArgumentMismatch, v.Type(), t)
	}
}

func isNumber(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	default:
		return false
	}
}

func splitResults(out []reflect.Value) (any, error) {
	var err error

	if n := len(out); n > 0 && out[n-1].Type() == errorType {
		if !out[n-1].IsNil() {
			err = out[n-1].Interface().(error)
		}
		out = out[:n-1]
	}

	if err != nil {
		return nil, err
	}

	switch len(out) {
	case 0:
		return nil, nil
	case 1:
		return out[0].Interface(), nil
	default:
		values := make([]any, 0, len(out))
		for _, v := range out {
			values = append(values, v.Interface())
		}
		return values, nil
	}
}

func exportedName(name string) string {
	r, size := utf8.DecodeRuneInString(name)
	if r == utf8.RuneError {
		return name
	}

	return string(unicode.ToUpper(r)) + name[size:]
}

func exportedField(v reflect.Value, name string) (reflect.Value, bool) {
	for v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return reflect.Value{}, false
		}
		v = v.Elem()
	}

	if v.Kind() != reflect.Struct {
		return reflect.Value{}, false
	}

	// Embedded values and fields holding a drive would leak the raw drive.
	sf, ok := v.Type().FieldByName(name)
	if !ok || !sf.IsExported() || sf.Anonymous {
		return reflect.Value{}, false
	}

	field, err := v.FieldByIndexErr(sf.Index)
	if err != nil || holdsDrive(field, 0) {
		return reflect.Value{}, false
	}

	return field, true
}
