// Package filter shows a tag-selected subset of portfolio items and
// choreographs the change between subsets.
//
// A filter change runs in three phases against a [Surface]:
//
//  1. Capture: the rect of every displayed item is recorded.
//  2. Exit: each displayed item that no longer matches is replaced by a ghost
//     anchored at its old rect, which fades out and is removed after the
//     animation, while the real item leaves the flow immediately.
//  3. Enter and reflow: newly matching items re-enter the flow marked
//     "entering"; every item that moved is offset back to its old position
//     with an instant transform, then released on the next frame with an
//     animated one (FLIP).
//
// [Bar] decides whether the filter controls wrap and how tall the collapsed
// bar is. [FlowSurface] is an in-memory Surface with tweened transforms.
package filter
