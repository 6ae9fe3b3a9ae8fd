// Package export writes decoded assets in interchange formats: GLB for
// meshes and levels, WebP for textures and lightmaps.
//
// Red Faction is left-handed and glTF right-handed. Every position,
// normal and transform is mirrored on X on the way out, and triangle
// winding is reversed to keep faces pointing outward.
package export

import (
	"bytes"
	"fmt"
	"image/png"
	"os"
	"path/filepath"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"rf-asset-tools/internal/mathutil"
	"rf-asset-tools/internal/mesh"
	"rf-asset-tools/internal/scene"
	"rf-asset-tools/internal/skeleton"
	"rf-asset-tools/internal/texture"
)

// Generator is written to the asset block of every document.
const Generator = "rf-asset-tools"

// LightmapLayerAttr is the custom vertex attribute holding the lightmap
// frame of lightmapped level surfaces. TEXCOORD_1 holds the coordinates.
const LightmapLayerAttr = "_LIGHTMAP_LAYER"

var mirror = mathutil.FromMat3Translation(mathutil.MirrorX, mathutil.Vec3{})

// nodeMatrix converts a left-handed transform to a glTF node matrix.
func nodeMatrix(m mathutil.Mat4) [16]float64 {
	return mathutil.Mat4Mul(mathutil.Mat4Mul(mirror, m), mirror).ColumnMajor()
}

// nodeTRS splits a rigid left-handed transform into glTF translation and
// rotation. Joints are written as TRS so they can be animated.
func nodeTRS(m mathutil.Mat4) (t [3]float64, r [4]float64) {
	rh := mathutil.Mat4Mul(mathutil.Mat4Mul(mirror, m), mirror)
	return [3]float64(rh.Translation()), [4]float64(mathutil.Mat3ToQuat(rh.Rotation()))
}

func mirrorPositions(in [][3]float32) [][3]float32 {
	out := make([][3]float32, len(in))
	for i, p := range in {
		out[i] = [3]float32{-p[0], p[1], p[2]}
	}
	return out
}

func reverseWinding(in []uint32) []uint32 {
	out := make([]uint32, len(in))
	for i := 0; i+2 < len(in); i += 3 {
		out[i], out[i+1], out[i+2] = in[i], in[i+2], in[i+1]
	}
	return out
}

type materialKey struct {
	texture  string
	twoSided bool
}

type docBuilder struct {
	doc       *gltf.Document
	textures  texture.Resolver
	materials map[materialKey]uint32
	images    map[string]imageRef
}

type imageRef struct {
	texture uint32
	alpha   bool
	ok      bool
}

func newDocBuilder(tex texture.Resolver) *docBuilder {
	doc := gltf.NewDocument()
	doc.Asset.Generator = Generator
	return &docBuilder{
		doc:       doc,
		textures:  tex,
		materials: make(map[materialKey]uint32),
		images:    make(map[string]imageRef),
	}
}

// image embeds the first frame of the top mip level of tex as PNG.
func (b *docBuilder) image(tex string) imageRef {
	if ref, ok := b.images[tex]; ok {
		return ref
	}
	var ref imageRef
	if b.textures != nil && tex != "" {
		if t := b.textures.Resolve(tex); t != nil && len(t.Levels) > 0 {
			var buf bytes.Buffer
			if err := png.Encode(&buf, t.Levels[0].Frame(0)); err == nil {
				img := modeler.WriteImage(b.doc, tex+".png", "image/png", &buf)
				b.doc.Textures = append(b.doc.Textures, &gltf.Texture{Source: gltf.Index(uint32(img))})
				ref = imageRef{texture: uint32(len(b.doc.Textures) - 1), alpha: t.UsesAlpha(), ok: true}
			}
		}
	}
	b.images[tex] = ref
	return ref
}

func (b *docBuilder) material(tex string, twoSided bool) uint32 {
	key := materialKey{tex, twoSided}
	if idx, ok := b.materials[key]; ok {
		return idx
	}
	pbr := &gltf.PBRMetallicRoughness{
		BaseColorFactor: &[4]float32{1, 1, 1, 1},
		MetallicFactor:  gltf.Float(0),
		RoughnessFactor: gltf.Float(1),
	}
	m := &gltf.Material{Name: tex, PBRMetallicRoughness: pbr, AlphaMode: gltf.AlphaOpaque, DoubleSided: twoSided}
	if ref := b.image(tex); ref.ok {
		pbr.BaseColorTexture = &gltf.TextureInfo{Index: ref.texture}
		if ref.alpha {
			m.AlphaMode = gltf.AlphaBlend
		}
	}
	b.doc.Materials = append(b.doc.Materials, m)
	idx := uint32(len(b.doc.Materials) - 1)
	b.materials[key] = idx
	return idx
}

func (b *docBuilder) primitive(s *scene.Surface, tex string) *gltf.Primitive {
	attrs := map[string]uint32{
		gltf.POSITION:   uint32(modeler.WritePosition(b.doc, mirrorPositions(s.Positions))),
		gltf.NORMAL:     uint32(modeler.WriteNormal(b.doc, mirrorPositions(s.Normals))),
		gltf.TEXCOORD_0: uint32(modeler.WriteTextureCoord(b.doc, s.UVs)),
	}
	if s.Lit() {
		layers := make([]float32, len(s.Layers))
		for i, l := range s.Layers {
			layers[i] = float32(l)
		}
		attrs[gltf.TEXCOORD_1] = uint32(modeler.WriteTextureCoord(b.doc, s.LightUVs))
		attrs[LightmapLayerAttr] = uint32(modeler.WriteAccessor(b.doc, gltf.TargetArrayBuffer, layers))
	}
	if len(s.Joints) > 0 {
		attrs[gltf.JOINTS_0] = uint32(modeler.WriteJoints(b.doc, s.Joints))
		attrs[gltf.WEIGHTS_0] = uint32(modeler.WriteWeights(b.doc, s.Weights))
	}
	return &gltf.Primitive{
		Attributes: attrs,
		Indices:    gltf.Index(uint32(modeler.WriteIndices(b.doc, reverseWinding(s.Indices)))),
		Material:   gltf.Index(b.material(tex, s.TwoSided)),
	}
}

// mesh adds a glTF mesh for the non-empty surfaces of g. texOf picks the
// texture of a surface and returns false to drop it. Returns false when
// nothing was drawn.
func (b *docBuilder) mesh(name string, g *scene.Geometry, texOf func(*scene.Surface) (string, bool)) (uint32, bool) {
	m := &gltf.Mesh{Name: name}
	for _, s := range g.Surfaces {
		if len(s.Indices) == 0 {
			continue
		}
		tex, ok := texOf(s)
		if !ok {
			continue
		}
		m.Primitives = append(m.Primitives, b.primitive(s, tex))
	}
	if len(m.Primitives) == 0 {
		return 0, false
	}
	b.doc.Meshes = append(b.doc.Meshes, m)
	return uint32(len(b.doc.Meshes) - 1), true
}

func (b *docBuilder) node(n *gltf.Node) uint32 {
	b.doc.Nodes = append(b.doc.Nodes, n)
	return uint32(len(b.doc.Nodes) - 1)
}

func ownTexture(s *scene.Surface) (string, bool) { return s.Texture, true }

// MeshGLB converts LOD 0 of m to a glTF document. Bones become a node
// hierarchy with a skin; collision spheres become empty nodes carrying
// their radius. tex may be nil, in which case materials carry only names.
func MeshGLB(m *mesh.Mesh, name string, tex texture.Resolver) *gltf.Document {
	b := newDocBuilder(tex)
	root := &gltf.Node{Name: name}
	rootIdx := b.node(root)
	b.doc.Scenes[0].Nodes = append(b.doc.Scenes[0].Nodes, rootIdx)

	meshIdx, drawn := b.mesh(name, scene.ModelGeometry(name, m), ownTexture)
	var meshNode *gltf.Node
	if drawn {
		meshNode = &gltf.Node{Name: name + "_mesh", Mesh: gltf.Index(meshIdx)}
		root.Children = append(root.Children, b.node(meshNode))
	}

	if bones := m.Bones(); len(bones) > 0 {
		joints := b.boneNodes(bones)
		for _, r := range skeleton.Roots(bones) {
			root.Children = append(root.Children, joints[r])
		}
		if meshNode != nil {
			ibm := make([][4][4]float32, len(bones))
			for i, bone := range bones {
				cm := nodeMatrix(skeleton.BindMatrix(bone))
				for c := 0; c < 4; c++ {
					for r := 0; r < 4; r++ {
						ibm[i][c][r] = float32(cm[c*4+r])
					}
				}
			}
			acc := modeler.WriteAccessor(b.doc, gltf.TargetNone, ibm)
			b.doc.Skins = append(b.doc.Skins, &gltf.Skin{
				Name:                name,
				Joints:              joints,
				InverseBindMatrices: gltf.Index(uint32(acc)),
			})
			meshNode.Skin = gltf.Index(uint32(len(b.doc.Skins) - 1))
		}
	}

	spheres := mesh.SectionsOf[*mesh.ColSphere](m)
	for i, p := range skeleton.SpherePositions(m) {
		s := spheres[i]
		root.Children = append(root.Children, b.node(&gltf.Node{
			Name:        "col_" + s.Name,
			Translation: [3]float64{-p[0], p[1], p[2]},
			Extras:      map[string]any{"radius": s.Radius},
		}))
	}
	return b.doc
}

// boneNodes adds one node per bone, parented as stored, and returns the
// node index of each bone.
func (b *docBuilder) boneNodes(bones []mesh.Bone) []uint32 {
	locals := skeleton.LocalMatrices(bones)
	nodes := make([]*gltf.Node, len(bones))
	joints := make([]uint32, len(bones))
	for i, bone := range bones {
		t, r := nodeTRS(locals[i])
		nodes[i] = &gltf.Node{Name: bone.Name, Translation: t, Rotation: r}
		joints[i] = b.node(nodes[i])
	}
	for i, bone := range bones {
		if p := int(bone.Parent); p >= 0 && p < len(bones) && p != i {
			nodes[p].Children = append(nodes[p].Children, joints[i])
		}
	}
	return joints
}

// LevelGLB converts a built scene to a glTF document with one node for
// the static geometry, one per mover and one per placed object. Objects
// sharing a model and skin share a glTF mesh.
func LevelGLB(sc *scene.Scene, tex texture.Resolver) *gltf.Document {
	b := newDocBuilder(tex)
	root := &gltf.Node{Name: sc.Name}
	if sc.Lightmaps != nil {
		root.Extras = map[string]any{"lightmaps": sc.Lightmaps.Frames}
	}
	rootIdx := b.node(root)
	b.doc.Scenes[0].Nodes = append(b.doc.Scenes[0].Nodes, rootIdx)

	place := func(name string, m uint32, transform mathutil.Mat4) {
		n := &gltf.Node{Name: name, Mesh: gltf.Index(m)}
		// identity is the glTF default and is left out
		if !transform.IsIdentity() {
			n.Matrix = nodeMatrix(transform)
		}
		root.Children = append(root.Children, b.node(n))
	}

	if idx, ok := b.mesh("static", sc.Static, ownTexture); ok {
		place("static", idx, sc.Static.Transform)
	}
	for _, g := range sc.Movers {
		if idx, ok := b.mesh(g.Name, g, ownTexture); ok {
			place(g.Name, idx, g.Transform)
		}
	}

	type meshKey struct{ file, skin string }
	type meshRef struct {
		idx   uint32
		drawn bool
	}
	meshes := make(map[meshKey]meshRef)
	for i := range sc.Instances {
		in := &sc.Instances[i]
		key := meshKey{in.Model.File, in.SkinName}
		ref, seen := meshes[key]
		if !seen {
			ref.idx, ref.drawn = b.mesh(in.Model.File, in.Model.Geometry, func(s *scene.Surface) (string, bool) {
				t := in.TextureFor(s)
				return t, sc.Visible(t)
			})
			meshes[key] = ref
		}
		if ref.drawn {
			place(fmt.Sprintf("%s_%s_%d", in.Kind, in.Class, in.UID), ref.idx, in.Transform)
		}
	}
	return b.doc
}

// SaveGLB writes doc as binary glTF, creating parent directories.
func SaveGLB(doc *gltf.Document, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	if err := gltf.SaveBinary(doc, path); err != nil {
		return fmt.Errorf("export: save %s: %w", path, err)
	}
	return nil
}
