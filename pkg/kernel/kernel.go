// Package kernel defines the abstract geometry kernel interface used
// to realize proxy solids. Implementations (sdfx, manifold) provide
// solid modeling and boolean operations behind this interface, so the
// proxy binder does not care which backend produces the geometry.
package kernel

// Solid is an opaque handle to a geometry kernel solid.
// Implementations wrap their internal representation.
type Solid interface {
	// BoundingBox returns the axis-aligned bounding box.
	BoundingBox() (min, max [3]float64)
}

// Kernel is the abstract geometry kernel interface.
type Kernel interface {
	// Primitives
	Box(x, y, z float64) Solid
	Sphere(radius float64) Solid
	Cylinder(height, radius float64, segments int) Solid

	// Boolean operations
	Union(a, b Solid) Solid
	Difference(a, b Solid) Solid
	Intersection(a, b Solid) Solid

	// Transforms
	Translate(s Solid, x, y, z float64) Solid
	Rotate(s Solid, x, y, z float64) Solid // Euler degrees; X applied first, then Y, then Z

	// Mesh output
	ToMesh(s Solid) (*Mesh, error)
}
