package stream

// Vec2 is a pair of floats, usually a texture coordinate.
type Vec2 [2]float32

// Vec3 is a position, direction or extent.
type Vec3 [3]float32

// Vec4 is a quaternion or a sphere (center + radius).
type Vec4 [4]float32

// Color is an RGBA color stored as four bytes.
type Color [4]uint8

// Mat3 is a 3×3 rotation stored row-major: [r0c0, r0c1, r0c2, r1c0, ...].
type Mat3 [9]float32

// AABB is an axis-aligned box.
type AABB struct {
	Min Vec3
	Max Vec3
}

// Identity3 returns the identity rotation.
func Identity3() Mat3 {
	return Mat3{1, 0, 0, 0, 1, 0, 0, 0, 1}
}

func (c *Cursor) Vec2() Vec2 {
	return Vec2{c.F32(), c.F32()}
}

func (c *Cursor) Vec3() Vec3 {
	return Vec3{c.F32(), c.F32(), c.F32()}
}

func (c *Cursor) Vec4() Vec4 {
	return Vec4{c.F32(), c.F32(), c.F32(), c.F32()}
}

func (c *Cursor) Color() Color {
	return Color{c.U8(), c.U8(), c.U8(), c.U8()}
}

func (c *Cursor) AABB() AABB {
	return AABB{Min: c.Vec3(), Max: c.Vec3()}
}

// RotMat reads a rotation matrix. Rows are stored third, first, second.
func (c *Cursor) RotMat() Mat3 {
	var m Mat3
	for _, row := range [3]int{2, 0, 1} {
		m[row*3+0] = c.F32()
		m[row*3+1] = c.F32()
		m[row*3+2] = c.F32()
	}
	return m
}

func (c *Cursor) ReadVec3() (Vec3, error) {
	v := c.Vec3()
	return v, c.err
}

func (c *Cursor) ReadRotMat() (Mat3, error) {
	m := c.RotMat()
	return m, c.err
}
