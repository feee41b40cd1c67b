// Package utils provides common utility functions for the inventory counter.
// Its main job is lenient value coercion: counted quantities arrive as
// numbers, numeric strings, or blanks depending on whether they came from a
// scanner payload, a CSV snapshot, or a SQL source, and all of them must
// normalize to plain integers without failing mid-import.
package utils
