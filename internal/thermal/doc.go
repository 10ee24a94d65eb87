// Package thermal implements the detection and tracking core for a
// low-resolution thermal-array passage counter.
//
// Responsibilities: background model learning over a sliding frame window,
// active-cell detection, connected-component blob extraction, frame-to-frame
// blob tracking, and directional pass counting.
// Key types: Frame, BackgroundModel, Pixel, Blob, TrackedBlob, Pipeline.
//
// Dependency rule: thermal never imports transport, storage, or API
// packages. Frame sources hand it validated frames; it hands back tracks
// and counter snapshots.
package thermal
