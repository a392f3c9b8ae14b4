package grid

// Material is a surface or structure block tag.
type Material string

// Terrain materials.
const (
	Air       Material = "air"
	Ground    Material = "ground"
	Grass     Material = "grass"
	Moss      Material = "moss"
	Sand      Material = "sand"
	Sandstone Material = "sandstone"
	Gravel    Material = "gravel"
	Mud       Material = "mud"
	Snow      Material = "snow"
	Stone     Material = "stone"
	Water     Material = "water"
)

// Infrastructure materials.
const (
	Concrete    Material = "gray_concrete"
	Cobblestone Material = "cobblestone"
	Rail        Material = "rail"
	Ballast     Material = "ballast"
	Deck        Material = "deck"
	Wall        Material = "stone_bricks"
	Curb        Material = "smooth_stone"
	Pillar      Material = "polished_andesite"
	Ceiling     Material = "deepslate_tiles"
	Foundation  Material = "building_foundation"
)

var groundMaterials = map[Material]bool{
	Ground:    true,
	Grass:     true,
	Moss:      true,
	Sand:      true,
	Sandstone: true,
	Gravel:    true,
	Mud:       true,
	Snow:      true,
	Stone:     true,
}

var infrastructureMaterials = map[Material]bool{
	Concrete:    true,
	Cobblestone: true,
	Rail:        true,
	Ballast:     true,
	Deck:        true,
	Wall:        true,
	Curb:        true,
	Pillar:      true,
	Ceiling:     true,
	Foundation:  true,
}

// IsGround reports whether m is natural terrain.
func (m Material) IsGround() bool { return groundMaterials[m] }

// IsInfrastructure reports whether m was placed by a road, rail or structure.
func (m Material) IsInfrastructure() bool { return infrastructureMaterials[m] }

// CanFound reports whether a support pillar may stand on m.
func (m Material) CanFound() bool { return m == Water || m.IsGround() }
