package hdrgainmap

// DefaultBoost is the gain applied at the gain map's maximum sample (255).
// The value is an empirical guess matching the scRGB headroom; Apple does
// not document the actual constant.
const DefaultBoost = 8.0

const (
	pqMaxNits = 10000.0

	// PNGSDRWhiteNits maps scene-linear 1.0 to 80 cd/m^2 in PQ PNG output,
	// consistent with the scRGB reference luminance.
	PNGSDRWhiteNits = 80.0

	// Y4MSDRWhiteNits maps scene-linear 1.0 to 100 cd/m^2 in Y4M output,
	// which keeps video renditions consistent with still images on displays
	// that pin SDR white at 100 cd/m^2.
	Y4MSDRWhiteNits = 100.0
)

const (
	// scRGB 16-bit integer encoding per IEC 61966-2-2:
	// code = 8192*linear + 4096, representable range [-0.5, 7.4999].
	scrgbScale  = 8192.0
	scrgbOffset = 4096.0
)

const y4mBitDepth = 12
