package mathutil

// MirrorX converts the game's left-handed coordinates to right-handed
// ones: diag(-1, 1, 1). Triangle winding must be reversed with it.
var MirrorX = Mat3Diag(-1, 1, 1)

// Epsilon is the tolerance used by the approximate comparisons.
const Epsilon = 1e-8
