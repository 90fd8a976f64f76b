package ssao

import "github.com/gogpu/ssao/internal/kernel"

// Vec2 is a 2D float32 vector, used for UV coordinates.
type Vec2 = kernel.Vec2

// Vec3 is a 3D float32 vector, used for view-space positions and normals.
type Vec3 = kernel.Vec3
