// Package tessellate turns bound proxy solids into triangle meshes
// using a geometry kernel. One mesh is produced per solid, placed at
// the world transform of the joint the solid is bound to.
package tessellate

import (
	"fmt"

	"github.com/chazu/marrow/pkg/kernel"
	"github.com/chazu/marrow/pkg/proxy"
	"github.com/chazu/marrow/pkg/skeleton"
)

// Tessellate meshes every bound solid. Solids are built in their
// joint's local frame, so each one is rotated by the joint's world
// orientation and translated to the joint's world position before
// meshing. The tessellator is read-only: neither the skeleton nor the
// bindings change.
func Tessellate(s *skeleton.Skeleton, solids []proxy.BoundSolid, k kernel.Kernel) ([]*kernel.Mesh, error) {
	if s == nil || len(solids) == 0 {
		return nil, nil
	}

	var meshes []*kernel.Mesh
	for _, b := range solids {
		m, err := meshSolid(s, b, k)
		if err != nil {
			return nil, err
		}
		meshes = append(meshes, m)
	}
	return meshes, nil
}

// meshSolid places one bound solid at its joint and meshes it.
func meshSolid(s *skeleton.Skeleton, b proxy.BoundSolid, k kernel.Kernel) (*kernel.Mesh, error) {
	j := s.Joint(b.Joint)
	if j == nil {
		return nil, fmt.Errorf("tessellate: solid bound to unknown joint %q", b.Joint)
	}

	solid := b.Solid

	// Rotation first, then translation: the solid is authored about the
	// joint's local origin.
	rot := j.WorldOrientation.EulerXYZ()
	if rot.X != 0 || rot.Y != 0 || rot.Z != 0 {
		solid = k.Rotate(solid, rot.X, rot.Y, rot.Z)
	}

	pos := j.WorldPosition
	if pos.X != 0 || pos.Y != 0 || pos.Z != 0 {
		solid = k.Translate(solid, pos.X, pos.Y, pos.Z)
	}

	mesh, err := k.ToMesh(solid)
	if err != nil {
		return nil, fmt.Errorf("tessellate: ToMesh failed for joint %q (%s): %w", b.Joint, b.Kind, err)
	}
	mesh.JointName = b.Joint
	return mesh, nil
}
