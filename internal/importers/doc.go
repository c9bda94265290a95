// Package importers turns appointment spreadsheets exported by the external
// scheduling system into candidate Appointment records.
//
// # Architecture
//
// The import pipeline follows a simple flow:
//
//	File → Load → Table → ValidateHeaders → FilterByRoomCode → RowMapper → ImportResult
//
// Load picks a reader from the file extension: delimited text (.csv, .txt)
// with charset and delimiter detection, OOXML workbooks (.xlsx) and legacy
// BIFF workbooks (.xls). The two workbook readers fall back to each other.
//
// Cells keep their loosely typed value (string, float64, time.Time or nil)
// until the RowMapper hands them to the extract package; nothing past the
// mapper sees an untyped cell.
//
// # Errors
//
// File-level problems (unsupported extension, empty file, missing required
// headers) abort the import before any row is mapped. Row-level problems
// become "Row N: message" entries in ImportResult.Errors, where N is the
// row's line in the file (the header is line 1), and the run continues.
//
// # Example Usage
//
//	pipeline := importers.NewPipeline(importers.NewRowMapper(loc), logger)
//	result, err := pipeline.Import(ctx, "agenda.xlsx", data, importers.Options{FilterRoomCode: true}, registrar)
package importers
