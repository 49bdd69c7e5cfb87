// Package category defines the extension-to-bucket table used to sort files.
//
// A Table is built once, either from Default or from a merged configuration,
// and never changes afterwards. Lookups are case-insensitive on the extension
// (leading dot included) and fall back to the Others bucket for anything the
// table does not claim, including the empty extension.
package category
