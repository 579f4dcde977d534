// Package rawdecode turns camera RAW files and developed 16-bit sources into
// linear imaging.ColorBuffer values.
//
// RAW demosaicing is delegated to dcraw, run as an external process with
// camera white balance, linear 16-bit output and automatic brightening
// disabled, so that exposure and contrast in the render pipeline are the only
// source of tonal change. The TIFF it writes to stdout is decoded with
// golang.org/x/image/tiff and normalised by 65535.
//
// Already developed PNG, JPEG and TIFF files are decoded in-process through
// the standard image registry. Their samples are taken as linear.
//
// # Errors
//
// Every failure wraps ErrDecode (or ErrUnsupported for unknown extensions),
// and no partial buffer is ever returned.
package rawdecode
