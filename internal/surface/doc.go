// Package surface provides drawing surfaces for the animation driver.
//
//   - [Raster]: anti-aliased pixels through gogpu/gg, for PNG and GIF output
//   - [Braille]: a terminal canvas with 2x4 dots per character cell
//   - [SVG]: a vector document, one path element per stroke
//   - [Recorder]: keeps every command, for tests and tracing
//
// All of them implement anim.Surface with canvas semantics: the transform is
// applied when points are added to the path and line widths scale with it.
package surface
