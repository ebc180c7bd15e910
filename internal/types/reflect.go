package types

import (
	"errors"
	"fmt"
	"reflect"
	"sync"
	"time"

	"github.com/cockroachdb/apd/v3"
	"github.com/google/uuid"
)

var (
	timeType     = reflect.TypeFor[time.Time]()
	durationType = reflect.TypeFor[time.Duration]()
	uuidType     = reflect.TypeFor[uuid.UUID]()
	decimalType  = reflect.TypeFor[apd.Decimal]()
	errorType    = reflect.TypeFor[error]()
)

// Registry maps Go types to compiler types.
//
// Exported struct fields become properties and exported methods become
// methods. Embedded structs become base types, pointers to value types
// become nullable types, slices and arrays become single-dimension arrays and
// map[string]V gets an indexer. Integer types that should be treated as
// enums must be registered with RegisterEnum before they are reached.
type Registry struct {
	mu     sync.Mutex
	types  map[reflect.Type]*Type
	ifaces []reflect.Type
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{types: map[reflect.Type]*Type{}}
}

var defaultRegistry = NewRegistry()

// Default returns the process-wide registry. Compile calls that do not
// name a registry use it, so a Go type maps to one *Type across calls.
func Default() *Registry { return defaultRegistry }

// TypeFor is TypeOf for a static Go type.
func TypeFor[T any](r *Registry) (*Type, error) {
	return r.TypeOf(reflect.TypeFor[T]())
}

// RegisterEnum declares rt, an integer type, as an enum with the given
// members.
func (r *Registry) RegisterEnum(rt reflect.Type, name string, members ...EnumMember) (*Type, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.types[rt]; ok {
		return nil, fmt.Errorf("type %s already registered", rt)
	}
	under, err := r.scalar(rt)
	if err != nil || !under.kind.IsIntegral() {
		return nil, fmt.Errorf("enum %s must have an integer underlying type", name)
	}
	t := NewEnum(name, under, members...).WithGoType(rt)
	r.types[rt] = t
	return t, nil
}

// TypeOf returns the compiler type describing rt, reflecting it on first
// use.
func (r *Registry) TypeOf(rt reflect.Type) (*Type, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.typeOf(rt)
}

func (r *Registry) typeOf(rt reflect.Type) (*Type, error) {
	if t, ok := r.types[rt]; ok {
		return t, nil
	}
	if t, err := r.scalar(rt); err == nil {
		return t, nil
	}
	switch rt.Kind() {
	case reflect.Pointer:
		if rt.Elem() == decimalType {
			return DecimalType, nil
		}
		elem, err := r.typeOf(rt.Elem())
		if err != nil {
			return nil, err
		}
		return NullableOf(elem), nil
	case reflect.Slice, reflect.Array:
		elem, err := r.typeOf(rt.Elem())
		if err != nil {
			return nil, err
		}
		return ArrayOf(elem, 1), nil
	case reflect.Interface:
		if rt.NumMethod() == 0 {
			return ObjectType, nil
		}
		return r.reflectInterface(rt)
	case reflect.Map:
		if rt.Key().Kind() != reflect.String {
			return nil, fmt.Errorf("map type %s: only string keys are supported", rt)
		}
		return r.reflectMap(rt)
	case reflect.Struct:
		return r.reflectStruct(rt)
	}
	return nil, fmt.Errorf("unsupported Go type %s", rt)
}

// scalar maps the Go types with a predefined counterpart.
func (r *Registry) scalar(rt reflect.Type) (*Type, error) {
	switch rt {
	case timeType:
		return DateTimeType, nil
	case durationType:
		return TimeSpanType, nil
	case uuidType:
		return GuidType, nil
	case decimalType:
		return DecimalType, nil
	}
	switch rt.Kind() {
	case reflect.Bool:
		return BoolType, nil
	case reflect.String:
		return StringType, nil
	case reflect.Int8:
		return Int8Type, nil
	case reflect.Int16:
		return Int16Type, nil
	case reflect.Int32:
		return Int32Type, nil
	case reflect.Int, reflect.Int64:
		return Int64Type, nil
	case reflect.Uint8:
		return Uint8Type, nil
	case reflect.Uint16:
		return Uint16Type, nil
	case reflect.Uint32:
		return Uint32Type, nil
	case reflect.Uint, reflect.Uint64:
		return Uint64Type, nil
	case reflect.Float32:
		return Float32Type, nil
	case reflect.Float64:
		return Float64Type, nil
	}
	return nil, fmt.Errorf("%s is not a scalar type", rt)
}

func typeName(rt reflect.Type) string {
	if rt.Name() != "" {
		return rt.Name()
	}
	return rt.String()
}

func (r *Registry) reflectStruct(rt reflect.Type) (*Type, error) {
	t := NewObject(typeName(rt)).WithGoType(rt)
	r.types[rt] = t

	var members []*Member
	var bases []*Type
	for i := 0; i < rt.NumField(); i++ {
		f := rt.Field(i)
		if !f.IsExported() {
			continue
		}
		if f.Anonymous && (f.Type.Kind() == reflect.Struct ||
			f.Type.Kind() == reflect.Pointer && f.Type.Elem().Kind() == reflect.Struct) {
			st := f.Type
			if st.Kind() == reflect.Pointer {
				st = st.Elem()
			}
			base, err := r.typeOf(st)
			if err != nil {
				return nil, fmt.Errorf("%s.%s: %w", rt, f.Name, err)
			}
			bases = append(bases, base)
			continue
		}
		ft, err := r.typeOf(f.Type)
		if err != nil {
			// Fields of unsupported types are not visible to expressions.
			continue
		}
		members = append(members, r.fieldMember(f.Name, ft))
	}
	members = append(members, r.methodMembers(reflect.PointerTo(rt), true)...)
	for _, it := range r.ifaces {
		if reflect.PointerTo(rt).Implements(it) {
			bases = append(bases, r.types[it])
		}
	}
	t.desc = NewMemberSet(t, members, bases...)
	return t, nil
}

func (r *Registry) reflectInterface(rt reflect.Type) (*Type, error) {
	t := NewInterface(typeName(rt)).WithGoType(rt)
	r.types[rt] = t
	r.ifaces = append(r.ifaces, rt)
	t.desc = NewMemberSet(t, r.methodMembers(rt, false))
	return t, nil
}

func (r *Registry) reflectMap(rt reflect.Type) (*Type, error) {
	t := NewObject(typeName(rt)).WithGoType(rt)
	r.types[rt] = t
	vt, err := r.typeOf(rt.Elem())
	if err != nil {
		return nil, err
	}
	item := &Member{
		Name: "Item", Kind: Indexer, Type: vt, Params: []Param{P("key", StringType)},
		Call: func(target any, args []any) (any, error) {
			m := reflect.ValueOf(target)
			if !m.IsValid() || m.IsNil() {
				return nil, ErrNilTarget
			}
			key, _ := args[0].(string)
			v := m.MapIndex(reflect.ValueOf(key).Convert(rt.Key()))
			if !v.IsValid() {
				return nil, fmt.Errorf("the given key %q was not present in the dictionary", key)
			}
			return r.normalize(v, vt)
		},
	}
	count := &Member{
		Name: "Count", Kind: Property, Type: Int32Type,
		Get: func(target any) (any, error) {
			m := reflect.ValueOf(target)
			if !m.IsValid() || m.IsNil() {
				return nil, ErrNilTarget
			}
			return int32(m.Len()), nil
		},
	}
	t.desc = NewMemberSet(t, []*Member{item, count})
	return t, nil
}

// deref follows pointers and interfaces to the underlying struct value.
func deref(target any) (reflect.Value, error) {
	v := reflect.ValueOf(target)
	for v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return reflect.Value{}, ErrNilTarget
		}
		v = v.Elem()
	}
	if !v.IsValid() {
		return reflect.Value{}, ErrNilTarget
	}
	return v, nil
}

func (r *Registry) fieldMember(name string, ft *Type) *Member {
	return &Member{
		Name: name, Kind: Field, Type: ft,
		Get: func(target any) (any, error) {
			v, err := deref(target)
			if err != nil {
				return nil, err
			}
			// FieldByName also resolves fields promoted from embedded
			// structs, so base members work on derived values.
			f := v.FieldByName(name)
			if !f.IsValid() {
				return nil, fmt.Errorf("%s has no field %s", v.Type(), name)
			}
			return r.normalize(f, ft)
		},
	}
}

func (r *Registry) methodMembers(rt reflect.Type, hasReceiver bool) []*Member {
	var out []*Member
	for i := 0; i < rt.NumMethod(); i++ {
		m := rt.Method(i)
		if !m.IsExported() {
			continue
		}
		mt := m.Type
		first := 0
		if hasReceiver {
			first = 1
		}
		if mt.IsVariadic() {
			continue
		}
		ret, wrapsErr, ok := r.methodResult(mt)
		if !ok {
			continue
		}
		var params []Param
		var goParams []reflect.Type
		for j := first; j < mt.NumIn(); j++ {
			pt, err := r.typeOf(mt.In(j))
			if err != nil {
				ok = false
				break
			}
			params = append(params, P(fmt.Sprintf("arg%d", j-first), pt))
			goParams = append(goParams, mt.In(j))
		}
		if !ok {
			continue
		}
		name := m.Name
		out = append(out, &Member{
			Name: name, Kind: Method, Type: ret, Params: params,
			Call: func(target any, args []any) (any, error) {
				recv := reflect.ValueOf(target)
				if !recv.IsValid() || (recv.Kind() == reflect.Pointer || recv.Kind() == reflect.Interface) && recv.IsNil() {
					return nil, ErrNilTarget
				}
				if recv.Kind() != reflect.Pointer && recv.Kind() != reflect.Interface {
					p := reflect.New(recv.Type())
					p.Elem().Set(recv)
					recv = p
				}
				fn := recv.MethodByName(name)
				if !fn.IsValid() {
					return nil, fmt.Errorf("%s has no method %s", recv.Type(), name)
				}
				in := make([]reflect.Value, len(args))
				for j, a := range args {
					v, err := toGo(a, goParams[j])
					if err != nil {
						return nil, fmt.Errorf("%s argument %d: %w", name, j, err)
					}
					in[j] = v
				}
				res := fn.Call(in)
				if wrapsErr {
					if e := res[len(res)-1]; !e.IsNil() {
						return nil, e.Interface().(error)
					}
				}
				if ret == VoidType {
					return nil, nil
				}
				return r.normalize(res[0], ret)
			},
		})
	}
	return out
}

// methodResult accepts methods returning nothing, a value, an error, or a
// value and an error.
func (r *Registry) methodResult(mt reflect.Type) (ret *Type, wrapsErr, ok bool) {
	n := mt.NumOut()
	if n > 0 && mt.Out(n-1) == errorType {
		wrapsErr = true
		n--
	}
	switch n {
	case 0:
		return VoidType, wrapsErr, true
	case 1:
		t, err := r.typeOf(mt.Out(0))
		if err != nil {
			return nil, false, false
		}
		return t, wrapsErr, true
	}
	return nil, false, false
}

// Value converts a Go value to the canonical representation of t.
func (r *Registry) Value(v any, t *Type) (any, error) {
	return r.normalize(reflect.ValueOf(v), t)
}

func (r *Registry) normalize(v reflect.Value, t *Type) (any, error) {
	for v.IsValid() && v.Kind() == reflect.Interface {
		if v.IsNil() {
			return nil, nil
		}
		v = v.Elem()
	}
	if !v.IsValid() {
		return nil, nil
	}
	if t.kind == Nullable {
		if v.Kind() == reflect.Pointer {
			if v.IsNil() {
				return nil, nil
			}
			v = v.Elem()
		}
		t = t.elem
	}
	switch t.kind {
	case Bool:
		return v.Bool(), nil
	case Char:
		return rune(v.Int()), nil
	case String:
		return v.String(), nil
	case Int8, Int16, Int32, Int64:
		return castSigned(v.Int(), t.kind), nil
	case Uint8, Uint16, Uint32, Uint64:
		return castUnsigned(v.Uint(), t.kind), nil
	case Float32:
		return float32(v.Float()), nil
	case Float64:
		return v.Float(), nil
	case Decimal:
		if v.Kind() == reflect.Pointer {
			if v.IsNil() {
				return nil, nil
			}
			return v.Interface(), nil
		}
		d := v.Interface().(apd.Decimal)
		return new(apd.Decimal).Set(&d), nil
	case DateTime:
		return v.Convert(timeType).Interface(), nil
	case TimeSpan:
		return time.Duration(v.Int()), nil
	case Guid:
		return v.Convert(uuidType).Interface(), nil
	case Enum:
		if v.CanInt() {
			return v.Int(), nil
		}
		return int64(v.Uint()), nil
	case Array:
		if (v.Kind() == reflect.Slice || v.Kind() == reflect.Pointer) && v.IsNil() {
			return nil, nil
		}
		out := make([]any, v.Len())
		for i := range out {
			e, err := r.normalize(v.Index(i), t.elem)
			if err != nil {
				return nil, err
			}
			out[i] = e
		}
		return out, nil
	case Object:
		if t == ObjectType {
			return r.normalizeDynamic(v)
		}
	}
	switch v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice:
		if v.IsNil() {
			return nil, nil
		}
	}
	return v.Interface(), nil
}

// normalizeDynamic converts a value statically typed as Object using its
// dynamic Go type.
func (r *Registry) normalizeDynamic(v reflect.Value) (any, error) {
	t, err := r.TypeOf(v.Type())
	if err != nil || t.kind == Object || t.kind == Interface {
		return v.Interface(), nil
	}
	return r.normalize(v, t)
}

var errNotConvertible = errors.New("value not convertible")

// toGo converts a canonical value to a Go value of type rt for a method
// call.
func toGo(v any, rt reflect.Type) (reflect.Value, error) {
	if v == nil {
		return reflect.Zero(rt), nil
	}
	rv := reflect.ValueOf(v)
	if rt.Kind() == reflect.Pointer && rt.Elem() != decimalType && rv.Kind() != reflect.Pointer {
		inner, err := toGo(v, rt.Elem())
		if err != nil {
			return reflect.Value{}, err
		}
		p := reflect.New(rt.Elem())
		p.Elem().Set(inner)
		return p, nil
	}
	if rv.Type().AssignableTo(rt) {
		return rv, nil
	}
	if d, ok := v.(*apd.Decimal); ok && rt == decimalType {
		return reflect.ValueOf(*d), nil
	}
	if items, ok := v.([]any); ok && (rt.Kind() == reflect.Slice || rt.Kind() == reflect.Array) {
		out := reflect.New(rt).Elem()
		if rt.Kind() == reflect.Slice {
			out = reflect.MakeSlice(rt, len(items), len(items))
		}
		for i, it := range items {
			if i >= out.Len() {
				break
			}
			e, err := toGo(it, rt.Elem())
			if err != nil {
				return reflect.Value{}, err
			}
			out.Index(i).Set(e)
		}
		return out, nil
	}
	if rv.Type().ConvertibleTo(rt) {
		return rv.Convert(rt), nil
	}
	return reflect.Value{}, fmt.Errorf("%w: %T to %s", errNotConvertible, v, rt)
}
