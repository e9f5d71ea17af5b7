package scene

import (
	"fmt"
	"slices"

	"github.com/chazu/collide/pkg/shape"
	"github.com/samber/lo"
)

// NamedCompound is a compound registered under a user-assigned name.
type NamedCompound struct {
	Name     string
	Compound *shape.Compound
}

// Scene is the data produced by evaluating a scene description. It is
// never mutated after evaluation returns; each evaluation produces a new
// scene.
type Scene struct {
	shapes    map[string]shape.Shape
	compounds []*NamedCompound
	nameIndex map[string]int
}

// New creates an empty Scene.
func New() *Scene {
	return &Scene{
		shapes:    make(map[string]shape.Shape),
		nameIndex: make(map[string]int),
	}
}

// DefineShape registers s under name. Names are shared with compounds and
// must be unique.
func (sc *Scene) DefineShape(name string, s shape.Shape) error {
	if err := sc.checkName(name); err != nil {
		return err
	}
	sc.shapes[name] = s
	return nil
}

// AddCompound registers c under name, after the compounds added before it.
func (sc *Scene) AddCompound(name string, c *shape.Compound) error {
	if err := sc.checkName(name); err != nil {
		return err
	}
	sc.nameIndex[name] = len(sc.compounds)
	sc.compounds = append(sc.compounds, &NamedCompound{Name: name, Compound: c})
	return nil
}

func (sc *Scene) checkName(name string) error {
	if name == "" {
		return fmt.Errorf("empty name")
	}
	if _, ok := sc.shapes[name]; ok {
		return fmt.Errorf("name %q is already defined", name)
	}
	if _, ok := sc.nameIndex[name]; ok {
		return fmt.Errorf("name %q is already defined", name)
	}
	return nil
}

// Shape returns the shape or compound with the given name.
func (sc *Scene) Shape(name string) (shape.Shape, bool) {
	if s, ok := sc.shapes[name]; ok {
		return s, true
	}
	if nc := sc.Lookup(name); nc != nil {
		return nc.Compound, true
	}
	return nil, false
}

// Lookup returns the compound with the given name, or nil.
func (sc *Scene) Lookup(name string) *NamedCompound {
	i, ok := sc.nameIndex[name]
	if !ok {
		return nil
	}
	return sc.compounds[i]
}

// MustLookup returns the compound with the given name, or panics.
func (sc *Scene) MustLookup(name string) *NamedCompound {
	nc := sc.Lookup(name)
	if nc == nil {
		panic(fmt.Sprintf("scene: no compound named %q", name))
	}
	return nc
}

// Compounds returns the compounds in definition order.
func (sc *Scene) Compounds() []*NamedCompound {
	return sc.compounds
}

// ShapeNames returns the names given with defshape, sorted.
func (sc *Scene) ShapeNames() []string {
	names := lo.Keys(sc.shapes)
	slices.Sort(names)
	return names
}

// CompoundCount returns the number of compounds.
func (sc *Scene) CompoundCount() int {
	return len(sc.compounds)
}
