/*
Package core splits a scalar volume into a grid of blocks, classifies each
block against an intensity window, and draws the remaining blocks as stacks
of view-aligned slices.

A grid is built once per volume and filtered against a voxel buffer:

	grid, err := core.NewBlockGrid(core.Point3{8, 8, 8}, core.Point3{256, 256, 256})
	stats, err := core.Filter(grid, voxels, 0.1, 0.9)

Each frame, a FrameRenderer orders the live blocks, selects one of six
pre-built slice stacks from the view direction, and issues one draw per
block through a Device.
*/
package core
