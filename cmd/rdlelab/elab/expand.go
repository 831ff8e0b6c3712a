package elab

import "fmt"

// Expand replicates one specialized definition across a declared instance
// array extent. A nil extent produces exactly one instance with no ordinal.
// For extent k it produces k instances carrying ordinals 0..k-1, all
// sharing the same *SpecializedComponent — extent 0 is legal and produces
// none. A negative extent fails with ErrInvalidExtent.
func Expand(def *SpecializedComponent, name string, extent *int) ([]*Instance, error) {
	if extent == nil {
		return []*Instance{{Name: name, Ordinal: -1, Def: def}}, nil
	}
	k := *extent
	if k < 0 {
		return nil, fmt.Errorf("%w: %s[%d]", ErrInvalidExtent, name, k)
	}
	out := make([]*Instance, k)
	for i := 0; i < k; i++ {
		out[i] = &Instance{Name: name, Ordinal: i, Def: def}
	}
	return out, nil
}
