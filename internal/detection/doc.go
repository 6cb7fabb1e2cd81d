// Package detection locates the machine-readable zone in a binarized
// document scan.
//
// The input is the boolean mask produced by the imaging package, in which
// regions of dense machine print come out as filled blobs. Detection runs
// in two stages:
//
//  1. FindCandidateBoxes labels the connected components of the mask and
//     fits a rotated box around each one, keeping only the wide thin boxes
//     a single printed line would produce. Fragments of a broken line are
//     merged; stacked lines are kept apart.
//  2. SelectROI groups boxes into runs of two to four vertically stacked,
//     similarly shaped lines, scores each run, and extracts the winning
//     region from the original full-resolution image, leveling any tilt.
//
// # Coordinate System
//
// All coordinates use the standard image convention:
//   - Origin (0, 0) at top-left corner
//   - X increases rightward
//   - Y increases downward
//
// Box coordinates are in mask pixels; the selector maps them back to the
// original resolution using the downscale factor recorded by the caller.
//
// # Scores
//
// Zone scores range over [0, 1] and combine line count plausibility, the
// fill density of the member boxes, and the consistency of their widths.
// Scores are comparable between zones of one image but carry no absolute
// meaning across images.
package detection
