package sdfx

import (
	"fmt"

	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chazu/marrow/pkg/kernel"
)

// SaveSTL writes the meshes to a single binary STL file. STL carries no
// object names, so the per-joint bindings are flattened away.
func SaveSTL(path string, meshes []*kernel.Mesh) error {
	var tris []*sdf.Triangle3
	for _, m := range meshes {
		if len(m.Indices)%3 != 0 {
			return fmt.Errorf("stl: mesh for %q has a partial triangle", m.JointName)
		}
		for i := 0; i+2 < len(m.Indices); i += 3 {
			var t sdf.Triangle3
			for j := 0; j < 3; j++ {
				v := int(m.Indices[i+j]) * 3
				if v+2 >= len(m.Vertices) {
					return fmt.Errorf("stl: mesh for %q indexes past its vertices", m.JointName)
				}
				t[j] = v3.Vec{
					X: float64(m.Vertices[v]),
					Y: float64(m.Vertices[v+1]),
					Z: float64(m.Vertices[v+2]),
				}
			}
			tri := t
			tris = append(tris, &tri)
		}
	}
	return render.SaveSTL(path, tris)
}
