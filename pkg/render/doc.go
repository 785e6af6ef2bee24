// Package render projects a record set into display tables.
//
// Project is a pure function: headers come from the first record's field
// names, each row carries one cell per header, and empty or absent values
// become a visible placeholder. The record set is never modified.
//
// Two presentations are provided: WriteText draws an aligned grid for the
// terminal, and Page renders the HTML preview served at "/".
package render
