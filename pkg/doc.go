// Package pkg provides the core libraries for asciifolio.
//
// # Overview
//
// asciifolio turns raster images into glyph grids fitted to a viewport and
// animates tag-filtered project grids. The two features are independent and
// share only infrastructure:
//
//  1. [ascii] - Image to glyph grid conversion, fitting and responsive re-render
//  2. [filter] - Tag filtering with FLIP-style enter, exit and reflow animation
//  3. [document] - Reading and rewriting the portfolio page
//  4. Infrastructure - [schedule], [cache], [config], [errors], [observability]
//
// # Architecture
//
// The render path:
//
//	image source (file or URL)
//	         ↓
//	    [ascii.Loader] (decode, raw bytes cached via [cache])
//	         ↓
//	    [ascii.BuildGrid] (sample, map brightness to ramp)
//	         ↓
//	    [ascii.Fit] (uniform scale into the viewport)
//	         ↓
//	    [ascii.Target] (DOM, text or PNG sink)
//
// The filter path:
//
//	control selected
//	         ↓
//	    [filter.Widget] (capture, exit, enter, reflow)
//	         ↓
//	    [filter.Surface] (FlowSurface in memory)
//
// Timing goes through a [schedule.Scheduler], stepped by terminal frame
// ticks or by tests.
//
// # Quick Start
//
// Render one image as text:
//
//	sched := schedule.NewManual()
//	r := ascii.NewRenderer(ascii.FileLoader{Root: "."}, sched, nil)
//	text := sink.NewTextTarget()
//	job := ascii.Job{ID: "tree", Image: "tree.png", Target: text}
//	if _, err := r.Render(ctx, ascii.DefaultConfig(), job, ascii.Viewport{Width: 1280, Height: 800}); err != nil {
//	    return err
//	}
//	sched.Settle(schedule.FrameInterval, 8)
//	fmt.Println(strings.Join(text.ScaledLines(), "\n"))
//
// Filter a page's projects:
//
//	page, _ := document.Parse(f)
//	visible := page.ApplyFilter("highlights")
//
// # Main Packages
//
// [ascii] - The render pipeline. [ascii.Renderer] keeps a generation counter
// per target so a superseded render never overwrites a newer one.
// [ascii.Responsive] debounces resizes into full re-renders.
//
// [ascii/sink] - Render targets: goquery DOM elements, in-memory text for
// terminals, and PNG rasters drawn with golang.org/x/image.
//
// [filter] - [filter.Widget] owns the active filter and the collapsible
// [filter.Bar]. [filter.FlowSurface] lays items out in a wrapping grid and
// tweens transforms and fades.
//
// [document] - Project items, filter controls and inline styles of the
// portfolio page.
//
// [schedule] - Frame and timer scheduling on virtual time, plus a debouncer.
//
// [cache] - File, Redis and null caches for fetched image sources.
//
// [config] - TOML and YAML configuration.
//
// [errors] - Coded errors and input validation.
//
// [observability] - Hooks for render, filter, cache and HTTP events.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...                    # All tests
//	go test ./pkg/ascii/...              # Specific package
//	go test -tags integration ./pkg/...  # Include Redis integration tests
//
// [ascii]: https://pkg.go.dev/github.com/matzehuels/asciifolio/pkg/ascii
// [ascii/sink]: https://pkg.go.dev/github.com/matzehuels/asciifolio/pkg/ascii/sink
// [filter]: https://pkg.go.dev/github.com/matzehuels/asciifolio/pkg/filter
// [document]: https://pkg.go.dev/github.com/matzehuels/asciifolio/pkg/document
// [schedule]: https://pkg.go.dev/github.com/matzehuels/asciifolio/pkg/schedule
// [cache]: https://pkg.go.dev/github.com/matzehuels/asciifolio/pkg/cache
// [config]: https://pkg.go.dev/github.com/matzehuels/asciifolio/pkg/config
// [errors]: https://pkg.go.dev/github.com/matzehuels/asciifolio/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/asciifolio/pkg/observability
package pkg
