package rawdecode

import (
	"path/filepath"
	"strings"
)

// RawExtensions lists the camera RAW file extensions accepted for import,
// lower-case and without the leading dot.
var RawExtensions = []string{
	"dng",               // Apple, DJI, Google, Leica, Pentax, Ricoh, Samsung, ...
	"tif",               // Canon, Mamiya, Phase One
	"crw", "cr2", "cr3", // Canon
	"raw",        // Contax, Kodak, Leica, Panasonic
	"erf",        // Epson
	"raf",        // Fujifilm
	"gpr",        // GoPro
	"3fr", "fff", // Hasselblad
	"arw",        // Hasselblad, Sony
	"dcr", "kdc", // Kodak
	"mrw",        // Konica Minolta
	"mos",        // Leaf, Mamiya
	"iiq",        // Leaf, Mamiya, Phase One
	"rwl",        // Leica
	"mef", "mfw", // Mamiya
	"nef", "nrw", "nefx", // Nikon
	"orf", // OM Digital Solutions, Olympus
	"rw2", // Panasonic
	"pef", // Pentax
	"srw", // Samsung
	"x3f", // Sigma
}

// standardExtensions are decoded in-process.
var standardExtensions = []string{"png", "jpg", "jpeg", "tif", "tiff"}

func extension(path string) string {
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
}

func contains(list []string, ext string) bool {
	for _, e := range list {
		if e == ext {
			return true
		}
	}
	return false
}

// IsRaw reports whether path has a camera RAW extension.
func IsRaw(path string) bool {
	return contains(RawExtensions, extension(path))
}

// IsSupported reports whether any decoder in this package accepts path.
func IsSupported(path string) bool {
	ext := extension(path)
	return contains(RawExtensions, ext) || contains(standardExtensions, ext)
}
