package elab

import "errors"

var (
	ErrUndefinedReference    = errors.New("undefined reference")
	ErrTypeMismatch          = errors.New("type mismatch")
	ErrParameterTypeMismatch = errors.New("parameter type mismatch")
	ErrPropertyTypeMismatch  = errors.New("property type mismatch")
	ErrIndexOutOfBounds      = errors.New("index out of bounds")
	ErrUnknownParameter      = errors.New("unknown parameter")
	ErrMissingParameter      = errors.New("missing required parameter")
	ErrUnknownProperty       = errors.New("unknown property")
	ErrForwardReference      = errors.New("forward reference")
	ErrInvalidExtent         = errors.New("invalid instance array extent")
	ErrInstantiationCycle    = errors.New("instantiation cycle")
	ErrUnknownComponent      = errors.New("unknown component")
	ErrUnknownStructType     = errors.New("unknown struct type")
	ErrUnknownEnum           = errors.New("unknown enum")
	ErrAlreadyDefined        = errors.New("already defined")
	ErrDivideByZero          = errors.New("divide by zero")
	ErrInvalidDefinition     = errors.New("invalid definition")
)
