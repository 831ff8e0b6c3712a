package elab

import "fmt"

// Evaluate computes the value of e against the given scope. Evaluation is a
// pure function of (e, sc): no statement evaluated here mutates the scope,
// which is what makes structural caching of specializations sound.
func Evaluate(reg *Registry, sc *Scope, e Expr) (Value, error) {
	switch x := e.(type) {
	case IntLit:
		return IntVal(x.Val), nil

	case BoolLit:
		return BoolVal(x.Val), nil

	case StrLit:
		return StrVal(x.Val), nil

	case EnumLit:
		m, ok := LookupEnum(x.Type, x.Member)
		if !ok {
			return Value{}, fmt.Errorf("%s::%s: %w", x.Type, x.Member, ErrUnknownEnum)
		}
		return EnumVal(m), nil

	case Ref:
		v, ok := sc.Lookup(x.Name)
		if !ok {
			return Value{}, fmt.Errorf("%w: %s", ErrUndefinedReference, x.Name)
		}
		return v, nil

	case Member:
		base, err := Evaluate(reg, sc, x.Base)
		if err != nil {
			return Value{}, err
		}
		if base.Kind != KindStruct {
			return Value{}, fmt.Errorf("%w: member access on %s value", ErrTypeMismatch, base.Kind)
		}
		v, ok := base.Struct.Field(x.Field)
		if !ok {
			return Value{}, fmt.Errorf("%w: %s has no member %s", ErrUndefinedReference, base.Struct.Type.Name, x.Field)
		}
		return v, nil

	case Index:
		base, err := Evaluate(reg, sc, x.Base)
		if err != nil {
			return Value{}, err
		}
		if base.Kind != KindArray {
			return Value{}, fmt.Errorf("%w: index access on %s value", ErrTypeMismatch, base.Kind)
		}
		idx, err := Evaluate(reg, sc, x.Index)
		if err != nil {
			return Value{}, err
		}
		if idx.Kind != KindInt {
			return Value{}, fmt.Errorf("%w: array index must be an integer, got %s", ErrTypeMismatch, idx.Kind)
		}
		if idx.Int < 0 || idx.Int >= int64(len(base.Array.Elems)) {
			return Value{}, fmt.Errorf("%w: index %d, length %d", ErrIndexOutOfBounds, idx.Int, len(base.Array.Elems))
		}
		return base.Array.Elems[idx.Int], nil

	case StructLit:
		return evalStructLit(reg, sc, x)

	case ArrayLit:
		return evalArrayLit(reg, sc, x)

	case Binary:
		return evalBinary(reg, sc, x)

	case Unary:
		return evalUnary(reg, sc, x)

	case Ternary:
		cond, err := Evaluate(reg, sc, x.Cond)
		if err != nil {
			return Value{}, err
		}
		b, err := truthy(cond)
		if err != nil {
			return Value{}, err
		}
		if b {
			return Evaluate(reg, sc, x.Then)
		}
		return Evaluate(reg, sc, x.Else)
	}
	return Value{}, fmt.Errorf("%w: unsupported expression %T", ErrTypeMismatch, e)
}

// evalStructLit builds a struct instance from a literal. Fields may be given
// in any order; every declared member must be present exactly once, and each
// supplied value must be shape-compatible with its member type.
func evalStructLit(reg *Registry, sc *Scope, lit StructLit) (Value, error) {
	st, ok := reg.Struct(lit.Type)
	if !ok {
		return Value{}, fmt.Errorf("%w: %s", ErrUnknownStructType, lit.Type)
	}

	fields := make([]Value, len(st.Members))
	seen := make(map[string]bool, len(lit.Fields))

	for _, init := range lit.Fields {
		m, pos, declared := st.Member(init.Name)
		if !declared {
			return Value{}, fmt.Errorf("%w: struct %s has no member %s", ErrUndefinedReference, st.Name, init.Name)
		}
		if seen[init.Name] {
			return Value{}, fmt.Errorf("struct %s literal: member %s: %w", st.Name, init.Name, ErrAlreadyDefined)
		}
		seen[init.Name] = true

		v, err := Evaluate(reg, sc, init.Value)
		if err != nil {
			return Value{}, err
		}
		if !m.Type.Accepts(v) {
			return Value{}, fmt.Errorf("%w: struct %s member %s declared %s, got %s",
				ErrTypeMismatch, st.Name, m.Name, m.Type, v.Kind)
		}
		fields[pos] = v
	}

	for _, m := range st.Members {
		if !seen[m.Name] {
			return Value{}, fmt.Errorf("%w: struct %s literal is missing member %s", ErrTypeMismatch, st.Name, m.Name)
		}
	}

	return StructVal(&StructValue{Type: st, Fields: fields}), nil
}

// evalArrayLit builds an array value. The element type is inferred from the
// first element; every later element must agree. The empty literal produces
// an array with no inferred element type, accepted wherever a dynamically
// sized array is declared.
func evalArrayLit(reg *Registry, sc *Scope, lit ArrayLit) (Value, error) {
	arr := &ArrayValue{Elems: make([]Value, 0, len(lit.Elems))}
	for i, el := range lit.Elems {
		v, err := Evaluate(reg, sc, el)
		if err != nil {
			return Value{}, err
		}
		if i == 0 {
			arr.Elem = typeOfValue(v)
		} else if !arr.Elem.Accepts(v) {
			return Value{}, fmt.Errorf("%w: array element %d is %s, expected %s",
				ErrTypeMismatch, i, v.Kind, arr.Elem)
		}
		arr.Elems = append(arr.Elems, v)
	}
	return ArrayVal(arr), nil
}

// typeOfValue infers the declared-type shape of a concrete value.
func typeOfValue(v Value) TypeRef {
	switch v.Kind {
	case KindInt:
		return IntType()
	case KindBool:
		return BoolType()
	case KindString:
		return StringType()
	case KindEnum:
		return EnumType(v.Enum.Type)
	case KindStruct:
		return StructTypeRef(v.Struct.Type.Name)
	case KindArray:
		return TypeRef{Kind: TypeArray, Elem: &v.Array.Elem}
	case KindRef:
		return TypeRef{Kind: TypeCompRef}
	}
	return TypeRef{}
}

// ---------------------------------------------------------------------------
// Operators
//
// Integer expressions evaluate in a fixed 64-bit two's-complement context.
// Booleans participate in numeric contexts as 0/1.
// ---------------------------------------------------------------------------

func asInt(v Value) (int64, error) {
	switch v.Kind {
	case KindInt:
		return v.Int, nil
	case KindBool:
		if v.Bool {
			return 1, nil
		}
		return 0, nil
	}
	return 0, fmt.Errorf("%w: %s operand is not a compatible numeric type", ErrTypeMismatch, v.Kind)
}

func truthy(v Value) (bool, error) {
	if v.Kind == KindBool {
		return v.Bool, nil
	}
	n, err := asInt(v)
	if err != nil {
		return false, err
	}
	return n != 0, nil
}

func evalBinary(reg *Registry, sc *Scope, x Binary) (Value, error) {
	l, err := Evaluate(reg, sc, x.Left)
	if err != nil {
		return Value{}, err
	}

	// Logical operators short-circuit.
	switch x.Op {
	case "&&", "||":
		lb, err := truthy(l)
		if err != nil {
			return Value{}, err
		}
		if (x.Op == "&&" && !lb) || (x.Op == "||" && lb) {
			return BoolVal(lb), nil
		}
		r, err := Evaluate(reg, sc, x.Right)
		if err != nil {
			return Value{}, err
		}
		rb, err := truthy(r)
		if err != nil {
			return Value{}, err
		}
		return BoolVal(rb), nil
	}

	r, err := Evaluate(reg, sc, x.Right)
	if err != nil {
		return Value{}, err
	}

	// Equality extends beyond numeric operands to strings, booleans and
	// enum members of the same type.
	if x.Op == "==" || x.Op == "!=" {
		if eq, ok := nonNumericEq(l, r); ok {
			if x.Op == "!=" {
				eq = !eq
			}
			return BoolVal(eq), nil
		}
	}

	ln, err := asInt(l)
	if err != nil {
		return Value{}, err
	}
	rn, err := asInt(r)
	if err != nil {
		return Value{}, err
	}

	switch x.Op {
	case "+":
		return IntVal(ln + rn), nil
	case "-":
		return IntVal(ln - rn), nil
	case "*":
		return IntVal(ln * rn), nil
	case "/":
		if rn == 0 {
			return Value{}, ErrDivideByZero
		}
		return IntVal(ln / rn), nil
	case "%":
		if rn == 0 {
			return Value{}, ErrDivideByZero
		}
		return IntVal(ln % rn), nil
	case "&":
		return IntVal(ln & rn), nil
	case "|":
		return IntVal(ln | rn), nil
	case "^":
		return IntVal(ln ^ rn), nil
	case "<<":
		return IntVal(ln << uint64(rn&63)), nil
	case ">>":
		return IntVal(int64(uint64(ln) >> uint64(rn&63))), nil
	case "**":
		return IntVal(intPow(ln, rn)), nil
	case "==":
		return BoolVal(ln == rn), nil
	case "!=":
		return BoolVal(ln != rn), nil
	case "<":
		return BoolVal(ln < rn), nil
	case ">":
		return BoolVal(ln > rn), nil
	case "<=":
		return BoolVal(ln <= rn), nil
	case ">=":
		return BoolVal(ln >= rn), nil
	}
	return Value{}, fmt.Errorf("%w: unknown operator %q", ErrTypeMismatch, x.Op)
}

// nonNumericEq handles == on operand pairs outside the numeric domain.
// The second return value is false when numeric comparison should apply.
func nonNumericEq(l, r Value) (eq bool, handled bool) {
	if l.Kind == KindString && r.Kind == KindString {
		return l.Str == r.Str, true
	}
	if l.Kind == KindEnum && r.Kind == KindEnum {
		return l.Enum.Type == r.Enum.Type && l.Enum.Name == r.Enum.Name, true
	}
	if l.Kind == KindBool && r.Kind == KindBool {
		return l.Bool == r.Bool, true
	}
	return false, false
}

func evalUnary(reg *Registry, sc *Scope, x Unary) (Value, error) {
	v, err := Evaluate(reg, sc, x.Operand)
	if err != nil {
		return Value{}, err
	}
	if x.Op == "!" {
		b, err := truthy(v)
		if err != nil {
			return Value{}, err
		}
		return BoolVal(!b), nil
	}
	n, err := asInt(v)
	if err != nil {
		return Value{}, err
	}
	switch x.Op {
	case "+":
		return IntVal(n), nil
	case "-":
		return IntVal(-n), nil
	case "~":
		return IntVal(^n), nil
	}
	return Value{}, fmt.Errorf("%w: unknown operator %q", ErrTypeMismatch, x.Op)
}

// intPow computes base**exp in 64-bit wrap-around arithmetic.
// A negative exponent yields 0 (integer semantics), except exp 0 → 1.
func intPow(base, exp int64) int64 {
	if exp < 0 {
		if base == 1 {
			return 1
		}
		if base == -1 {
			if exp%2 == 0 {
				return 1
			}
			return -1
		}
		return 0
	}
	var result int64 = 1
	for exp > 0 {
		if exp&1 == 1 {
			result *= base
		}
		base *= base
		exp >>= 1
	}
	return result
}
