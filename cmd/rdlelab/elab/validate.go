package elab

import "fmt"

// Pre-elaboration validation of registered definitions. Structural problems
// caught here (duplicate names, dangling references, malformed statements)
// would otherwise surface mid-specialization with less useful context.

// validateRegistry validates every registered definition.
func validateRegistry(reg *Registry) error {
	for _, st := range reg.structs {
		if err := validateStruct(reg, st); err != nil {
			return err
		}
	}
	for _, def := range reg.components {
		if err := validateComponent(reg, def); err != nil {
			return err
		}
	}
	return nil
}

func validateStruct(reg *Registry, st *StructType) error {
	if st.Name == "" {
		return fmt.Errorf("phase=raw path=<struct>: %w: struct is missing a name", ErrInvalidDefinition)
	}
	seen := map[string]struct{}{}
	for _, m := range st.Members {
		if m.Name == "" {
			return fmt.Errorf("phase=raw path=%s: %w: member is missing a name", st.Name, ErrInvalidDefinition)
		}
		if _, dup := seen[m.Name]; dup {
			return fmt.Errorf("phase=raw path=%s: member %s: %w", st.Name, m.Name, ErrAlreadyDefined)
		}
		seen[m.Name] = struct{}{}
		if err := validateTypeRef(reg, m.Type, st.Name+"."+m.Name); err != nil {
			return err
		}
	}
	return nil
}

func validateComponent(reg *Registry, def *ComponentDef) error {
	if def.Name == "" {
		return fmt.Errorf("phase=raw path=<component>: %w: component is missing a name", ErrInvalidDefinition)
	}

	formals := map[string]struct{}{}
	for _, f := range def.Formals {
		if f.Name == "" {
			return fmt.Errorf("phase=raw path=%s: %w: formal is missing a name", def.Name, ErrInvalidDefinition)
		}
		if _, dup := formals[f.Name]; dup {
			return fmt.Errorf("phase=raw path=%s: formal %s: %w", def.Name, f.Name, ErrAlreadyDefined)
		}
		formals[f.Name] = struct{}{}
		if err := validateTypeRef(reg, f.Type, def.Name+"#"+f.Name); err != nil {
			return err
		}
	}

	instNames := map[string]struct{}{}
	for _, stmt := range def.Body {
		switch st := stmt.(type) {
		case InstStmt:
			if st.Name == "" {
				return fmt.Errorf("phase=raw path=%s: %w: instance is missing a name", def.Name, ErrInvalidDefinition)
			}
			if _, dup := instNames[st.Name]; dup {
				return fmt.Errorf("phase=raw path=%s: instance %s: %w", def.Name, st.Name, ErrAlreadyDefined)
			}
			instNames[st.Name] = struct{}{}
			if _, ok := reg.Component(st.Def); !ok {
				return fmt.Errorf("phase=raw path=%s: instance %s: %w: %s", def.Name, st.Name, ErrUnknownComponent, st.Def)
			}
		case AssignStmt:
			if st.Prop == "" {
				return fmt.Errorf("phase=raw path=%s: %w: assignment is missing a property name", def.Name, ErrInvalidDefinition)
			}
		case LocalStmt:
			if st.Name == "" {
				return fmt.Errorf("phase=raw path=%s: %w: local is missing a name", def.Name, ErrInvalidDefinition)
			}
		}
	}
	return nil
}

// validateTypeRef checks that named types referenced by a declaration exist.
func validateTypeRef(reg *Registry, t TypeRef, path string) error {
	switch t.Kind {
	case TypeStruct:
		if _, ok := reg.Struct(t.Name); !ok {
			return fmt.Errorf("phase=raw path=%s: %w: %s", path, ErrUnknownStructType, t.Name)
		}
	case TypeEnum:
		if !IsBuiltinEnum(t.Name) {
			return fmt.Errorf("phase=raw path=%s: %w: %s", path, ErrUnknownEnum, t.Name)
		}
	case TypeArray:
		return validateTypeRef(reg, *t.Elem, path)
	}
	return nil
}
