// Package export encodes the held record set into downloadable documents.
//
// Supported formats:
//
//	xlsx  one worksheet, bold header row, column widths from header length
//	pdf   landscape A4; a rasterized table image sliced across pages
//	      ("raster" layout) or a native text table ("table" layout)
//	html  standalone styled table, the source of the raster layout
//	csv   header row followed by one row per record
//	json  array of objects in field order
//
// Every exporter fails with records.ErrEmptyInput for an empty set and
// wraps encoder failures as records.ErrRenderFailure. The Runner serializes
// exports through the holder's export flag and buffers output, so a failed
// export never leaves a partial file or a half-written response.
//
// Files are named "<prefix>_<YYYY-MM-DD>.<ext>" using the UTC export date,
// so exporting the same data twice on one day yields the same name.
package export
