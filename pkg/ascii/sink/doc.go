// Package sink provides [ascii.Target] implementations.
//
//   - [DOMTarget] writes cells and layout styles into an HTML document
//   - [TextTarget] keeps the grid as terminal lines
//   - [ImageTarget] draws the grid into a PNG
package sink
