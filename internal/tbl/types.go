package tbl

// Clutter holds one entry parsed from clutter.tbl.
type Clutter struct {
	Class string
	Model string // base name, e.g. "crate01"
	// Skins maps a skin name to replacement textures, one per mesh
	// material slot, without extensions.
	Skins map[string][]string
}

// Item holds one entry parsed from items.tbl.
type Item struct {
	Class     string
	Model     string
	ModelType string // "static", "anim" or "character"
	Flags     []string
}

// Entity holds one entry parsed from entity.tbl. Model may name a .vcm.
type Entity struct {
	Class string
	Model string
	Flags []string // $flags followed by $flags2
}

// Tables bundles the three object tables of a game install.
type Tables struct {
	Clutter  map[string]*Clutter
	Items    map[string]*Item
	Entities map[string]*Entity
}
