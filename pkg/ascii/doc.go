// Package ascii renders raster images as grids of density glyphs.
//
// The pipeline for one render target is:
//
//  1. Load and decode the source image ([Loader]).
//  2. Derive the row count from the column count, the image aspect ratio and
//     the glyph aspect correction ([Rows]).
//  3. Resample the image to exactly cols×rows with one bilinear draw
//     ([Sample]).
//  4. Map each pixel's brightness to a glyph of the density ramp
//     ([SymbolIndex]), darkest pixels to the densest glyph.
//  5. Hand the cells to the [Target], measure its natural size and shrink it
//     uniformly to fit the viewport ([Fit]); grids are never upscaled.
//
// Every render starts from scratch. [Responsive] re-runs the pipeline on
// viewport changes after a debounce delay, and [Renderer] guarantees that a
// render superseded while waiting on decode never overwrites a newer one.
//
// Configuration is the immutable [Config] value passed into each call, so
// concurrent renders never share mutable settings.
package ascii
