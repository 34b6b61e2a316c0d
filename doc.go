// Package hdrgainmap reconstructs an HDR rendition of photos taken in Apple's
// "HDR gain map" HEIF format.
//
// The SDR base image is combined with the auxiliary 8-bit gain map using an
// exponential boost (8^g by default) and re-encoded into one of three HDR
// color spaces: ACES2065-1 OpenEXR, scRGB 16-bit PNG, or BT.2100 PQ
// (16-bit PNG or YUV4MPEG2).
//
// The boost constant and the base-image transfer function are empirical
// approximations; Apple has not published the actual rendering algorithm, so
// fidelity to it is approximate by design.
package hdrgainmap
