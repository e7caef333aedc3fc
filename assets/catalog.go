// Package assets holds the precomputed render assets the game looks up by
// cuboid size. Meshes and materials are plain descriptions addressed by handle;
// turning them into GPU resources is the renderer's job.
package assets

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

const (
	// CuboidMeshSize is the cube edge length of a size-1 cuboid.
	CuboidMeshSize = 3.75

	MinCuboidSize = 1
	MaxCuboidSize = 9

	ShipSize = 8.0
)

// ErrSizeOutOfRange is returned for cuboid sizes without a precomputed asset.
var ErrSizeOutOfRange = errors.New("assets: cuboid size out of range")

var (
	CuboidAlbedo = mgl32.Vec3{0.65, 0.6, 0.6}
	ShipAlbedo   = mgl32.Vec3{0.25, 0.45, 0.85}
)

type MeshHandle uint32

type MaterialHandle uint32

// Mesh is an axis-aligned cube.
type Mesh struct {
	Edge float64
}

type Material struct {
	Albedo mgl32.Vec3
}

// CuboidAsset bundles what a cuboid of one size renders and collides with.
type CuboidAsset struct {
	Size     int
	Mesh     MeshHandle
	Material MaterialHandle
	Edge     float64
}

// HalfExtent is the collider half extent matching the mesh.
func (a CuboidAsset) HalfExtent() float64 {
	return 0.5 * a.Edge
}

// Catalog is the table of meshes and materials generated at startup.
type Catalog struct {
	meshes    []Mesh
	materials []Material
	cuboids   [MaxCuboidSize + 1]CuboidAsset
	ship      CuboidAsset
}

// NewCatalog generates one mesh and one material per cuboid size, plus the ship's.
func NewCatalog() *Catalog {
	c := &Catalog{}
	for size := MinCuboidSize; size <= MaxCuboidSize; size++ {
		edge := CuboidMeshSize * float64(size)
		c.cuboids[size] = CuboidAsset{
			Size:     size,
			Mesh:     c.addMesh(Mesh{Edge: edge}),
			Material: c.addMaterial(Material{Albedo: CuboidAlbedo}),
			Edge:     edge,
		}
	}
	c.ship = CuboidAsset{
		Mesh:     c.addMesh(Mesh{Edge: ShipSize}),
		Material: c.addMaterial(Material{Albedo: ShipAlbedo}),
		Edge:     ShipSize,
	}
	return c
}

// handles start at 1 so the zero handle means "none"
func (c *Catalog) addMesh(m Mesh) MeshHandle {
	c.meshes = append(c.meshes, m)
	return MeshHandle(len(c.meshes))
}

func (c *Catalog) addMaterial(m Material) MaterialHandle {
	c.materials = append(c.materials, m)
	return MaterialHandle(len(c.materials))
}

// Cuboid returns the assets for a cuboid size.
func (c *Catalog) Cuboid(size int) (CuboidAsset, error) {
	if size < MinCuboidSize || size > MaxCuboidSize {
		return CuboidAsset{}, fmt.Errorf("%w: %d (want %d..%d)", ErrSizeOutOfRange, size, MinCuboidSize, MaxCuboidSize)
	}
	return c.cuboids[size], nil
}

// CheckRange validates that every size in the half-open range [start, end) has assets.
func (c *Catalog) CheckRange(start, end int) error {
	if start >= end {
		return fmt.Errorf("%w: empty range [%d, %d)", ErrSizeOutOfRange, start, end)
	}
	if start < MinCuboidSize || end-1 > MaxCuboidSize {
		return fmt.Errorf("%w: [%d, %d) (want sizes %d..%d)", ErrSizeOutOfRange, start, end, MinCuboidSize, MaxCuboidSize)
	}
	return nil
}

func (c *Catalog) Ship() CuboidAsset {
	return c.ship
}

func (c *Catalog) Mesh(h MeshHandle) (Mesh, bool) {
	if h == 0 || int(h) > len(c.meshes) {
		return Mesh{}, false
	}
	return c.meshes[h-1], true
}

func (c *Catalog) Material(h MaterialHandle) (Material, bool) {
	if h == 0 || int(h) > len(c.materials) {
		return Material{}, false
	}
	return c.materials[h-1], true
}
