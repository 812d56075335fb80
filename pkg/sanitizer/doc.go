// Package sanitizer normalizes free-form input before validation and storage.
//
// All functions are idempotent: applying them twice gives the same result as
// applying them once. Invalid input degrades to an empty value, never an error.
//
// Normalization includes:
//   - Text: collapse whitespace runs, trim leading/trailing spaces
//   - Labels: text normalization plus lowercase ("Deep  Clean" becomes "deep clean")
//   - Identifiers: trimmed, empty values dropped
//   - Slices: remove duplicates and empty values after normalization
package sanitizer
