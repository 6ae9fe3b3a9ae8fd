package skeleton

import (
	"rf-asset-tools/internal/mathutil"
	"rf-asset-tools/internal/mesh"
)

// BindMatrix returns the stored transform of a bone: model space to bone
// space.
func BindMatrix(b mesh.Bone) mathutil.Mat4 {
	q := mathutil.Quat{float64(b.Rot[0]), float64(b.Rot[1]), float64(b.Rot[2]), float64(b.Rot[3])}
	rot := mathutil.QuatToMat3(q.Normalize())
	return mathutil.FromMat3Translation(rot, mathutil.Vec3F32(b.Pos))
}

// BuildWorldMatrices computes the bone-to-model transform of each bone in
// the bind pose. Bones store model-to-bone transforms, so each world
// matrix is the inverse of the stored one.
// Returns a slice of 4×4 matrices indexed by bone index.
func BuildWorldMatrices(bones []mesh.Bone) []mathutil.Mat4 {
	worlds := make([]mathutil.Mat4, len(bones))
	for i, b := range bones {
		worlds[i] = BindMatrix(b).InverseRigid()
	}
	return worlds
}

// LocalMatrices returns each bone's transform relative to its parent, for
// building a node hierarchy. Roots and bones whose parent index is invalid
// keep their world transform.
func LocalMatrices(bones []mesh.Bone) []mathutil.Mat4 {
	worlds := BuildWorldMatrices(bones)
	locals := make([]mathutil.Mat4, len(bones))
	for i, b := range bones {
		p := int(b.Parent)
		if p >= 0 && p < len(bones) && p != i {
			locals[i] = mathutil.Mat4Mul(worlds[p].InverseRigid(), worlds[i])
		} else {
			locals[i] = worlds[i]
		}
	}
	return locals
}

// Roots returns the indices of bones without a valid parent.
func Roots(bones []mesh.Bone) []int {
	var out []int
	for i, b := range bones {
		if p := int(b.Parent); p < 0 || p >= len(bones) || p == i {
			out = append(out, i)
		}
	}
	return out
}

// SpherePositions returns the model-space centre of each collision sphere.
// Spheres attached to a bone are stored relative to it.
func SpherePositions(m *mesh.Mesh) []mathutil.Vec3 {
	spheres := mesh.SectionsOf[*mesh.ColSphere](m)
	if len(spheres) == 0 {
		return nil
	}
	worlds := BuildWorldMatrices(m.Bones())
	out := make([]mathutil.Vec3, len(spheres))
	for i, s := range spheres {
		p := mathutil.Vec3F32(s.Pos)
		if b := int(s.Bone); b >= 0 && b < len(worlds) {
			p = worlds[b].MulPoint(p)
		}
		out[i] = p
	}
	return out
}
