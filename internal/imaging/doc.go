// Package imaging implements the tone pipeline of the RAW developer.
//
// Source images are held as ColorBuffer values: linear-light RGB with one
// float32 per channel. Adjustment stages operate on these buffers and never
// clip; clipping and the sRGB transfer curve are applied only when a buffer
// is encoded for display or saved.
//
// # Pipeline
//
// Render applies a Parameter in a fixed order:
//
//  1. Exposure: multiply by 2^stops
//  2. Contrast: stretch around the pivot tone 0.416
//  3. Black levels: remap [0,1] onto [bl,1]
//  4. Shadows/highlights: locally weighted luma curves in an 8-bit space,
//     with optional saturation change in the corrected tones
//
// Each stage is also exported on its own (AdjustExposure, AdjustContrast,
// AdjustBlackLevels, ShadowHighlight) and returns a new buffer.
//
// # Coordinate System
//
// All pixel coordinates in this package are 0-based:
//   - X: horizontal position (0 = leftmost pixel)
//   - Y: vertical position (0 = topmost pixel)
//
// # Thread Safety
//
// The BufferCache type is safe for concurrent use. Render and the stage
// functions are stateless; identical inputs produce bit-identical output
// regardless of how rows are spread over CPUs.
//
// # Output
//
// ToImage, Encode and Save quantise by truncation to 8 or 16 bits. 16-bit
// output is kept only for PNG and TIFF. SampleColor reports what a pixel
// looks like after encoding along with its linear values.
//
// # Performance Considerations
//
// Decoded sources are large. Use BufferCache to avoid decoding the same RAW
// file twice, and Evict buffers of images that are no longer open.
package imaging
