// Package io provides JSON and CSV import and export for task graphs.
//
// # Overview
//
// This package serializes the tasks of a [graph.Store] to two textual formats
// that carry the same information, and parses such documents back into a
// validated [graph.Snapshot]. Round trips are exact: decoding an encoded graph
// yields the same ids, texts, and dependency sets.
//
// # JSON Format
//
// A single object with a "tasks" array:
//
//	{
//	  "tasks": [
//	    {"id": "t1", "text": "Imported Task 1", "dependencies": []},
//	    {"id": "t2", "text": "Imported Task 2", "dependencies": ["t1"]}
//	  ]
//	}
//
// Every entry needs a string "id" and a non-blank string "text".
// "dependencies" may be omitted; when present it must be an array of strings.
// Unknown keys are ignored.
//
// # CSV Format
//
// A header row followed by one row per task:
//
//	id,text,dependencies
//	t1,Imported Task 1,
//	t2,Imported Task 2,t1
//
// Text follows standard CSV quoting: fields containing a comma, quote, or line
// break are quoted and inner quotes are doubled. The dependencies column holds
// zero or more ids joined by ";". Ids never need quoting because they cannot
// contain delimiters or quotes.
//
// # Import
//
// Use [ReadJSON], [ReadCSV], or [Decode] to parse a document. Parsing never
// touches a store: decoders validate everything into a snapshot first, and
// [Import] commits that snapshot with [graph.Store.Replace] only if it is valid.
//
//	snap, err := io.ReadCSV(f)
//	if err != nil {
//	    // MALFORMED_INPUT, DUPLICATE_ID, UNKNOWN_DEPENDENCY, CYCLE_DETECTED, ...
//	}
//	store.Replace(snap)
//
// [ImportFile] picks the format from the file extension.
//
// # Export
//
// Use [WriteJSON], [WriteCSV], or [Encode] to write tasks to any io.Writer, or
// [ExportFile] to write a file whose format follows its extension. Exported
// files conventionally use the names returned by [DefaultFilename].
//
// # Concurrency
//
// All functions are safe for concurrent use. Encoders read a consistent copy
// of the store's tasks; decoders build independent snapshots.
package io
