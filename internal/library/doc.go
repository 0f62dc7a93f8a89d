// Package library loads bibliographic entries and locale tables from
// YAML documents into the engine's read-only in-memory forms.
//
// Loading happens once per session, before any rendering. Variable
// values are typed by shape: scalars become text or numbers, name lists
// become structured names, maps with a year become structured dates, and
// other string maps become serial-number sets. Braces in text values
// mark verbatim spans exempt from case transforms.
package library
