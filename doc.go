// Package ssao computes screen-space ambient occlusion from a linear depth
// buffer.
//
// # Overview
//
// The output image is split into 16×16 tiles. Each tile is one workgroup of
// 256 lanes that loads a padded 32×32 depth tile into a 1024-slot shared
// buffer, reconstructs view-space positions and normals, and samples an
// expanding ring of occluders. Lanes share ring samples inside 16-lane
// sub-groups, so every pixel gathers 52 samples for the cost of 22 fetches.
//
// # Quick Start
//
//	import "github.com/gogpu/ssao"
//
//	depth := ssao.NewDepthBuffer(1280, 720)
//	// fill depth.Data with linear eye depth, row-major
//
//	params, err := ssao.NewParams(1280, 720, ssao.WithStrength(0.8))
//	if err != nil {
//	    return err
//	}
//
//	r := ssao.NewRenderer()
//	defer r.Close()
//
//	ao, err := r.Compute(ctx, depth, params)
//
// The result holds one visibility factor per pixel in [0, 1]: 1 is fully
// lit, smaller values are occluded.
//
// # GPU Acceleration
//
// The same kernel exists as a WGSL compute shader. Opt in with a blank
// import; when no GPU is available, Compute runs on the CPU:
//
//	import _ "github.com/gogpu/ssao/gpu"
//
// # Coordinate System
//
//   - Origin (0,0) at the top-left pixel
//   - UV (0,0) is the top-left corner of the image, (1,1) the bottom-right
//   - View space: x right, y up, z into the screen (depth)
package ssao
