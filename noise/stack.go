package noise

import (
	"gonum.org/v1/gonum/spatial/r3"
)

// Stack is the set of compiled samplers applied to one object.
type Stack []*Sampler

// Compile compiles the enabled layers whose group equals group, preserving
// their order.
func Compile(layers []Layer, group string) Stack {
	var st Stack
	for _, l := range layers {
		if !l.Enabled || l.Group != group {
			continue
		}
		st = append(st, NewSampler(l))
	}
	return st
}

// Displacement sums the displacement of every sampler at p.
func (st Stack) Displacement(p r3.Vec) r3.Vec {
	var d r3.Vec
	for _, s := range st {
		d = r3.Add(d, s.Displacement(p))
	}
	return d
}
