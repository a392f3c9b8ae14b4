package l3surface

import "github.com/banshee-data/geovoxel/internal/terrain/grid"

// landcoverMaterials maps GLC-FCS30 style class codes to materials.
var landcoverMaterials = map[int]grid.Material{
	// open water, permanent snow and ice
	0: grid.Water, 210: grid.Water, 250: grid.Water, 255: grid.Water,
	220: grid.Snow, 140: grid.Snow,

	// cropland
	10: grid.Grass, 11: grid.Grass, 12: grid.Grass, 20: grid.Grass,
	// forest
	51: grid.Moss, 52: grid.Moss, 61: grid.Moss, 62: grid.Moss, 71: grid.Moss, 72: grid.Moss,
	81: grid.Moss, 82: grid.Moss, 91: grid.Moss, 92: grid.Moss,
	// shrubland, grassland
	120: grid.Grass, 121: grid.Grass, 122: grid.Grass, 130: grid.Grass,
	// sparse vegetation
	150: grid.Gravel, 152: grid.Gravel, 153: grid.Gravel,
	// wetlands
	181: grid.Mud, 182: grid.Mud, 183: grid.Mud, 184: grid.Sandstone, 185: grid.Mud, 186: grid.Mud,
	187: grid.Sandstone,
	// impervious surface
	190: grid.Ground,
	// bare areas
	200: grid.Sandstone, 201: grid.Moss, 202: grid.Sandstone,
}

// LandcoverMaterial returns the material for a class code, or Ground for
// unknown codes.
func LandcoverMaterial(code int) grid.Material {
	if m, ok := landcoverMaterials[code]; ok {
		return m
	}
	return grid.Ground
}
