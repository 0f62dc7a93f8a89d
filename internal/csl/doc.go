// Package csl provides the foundational data model for bibkit.
//
// This package contains type definitions only. All other internal packages
// import csl; csl imports nothing internal. This ensures the data model
// remains the foundational layer with no circular dependencies.
//
// Key design constraints:
//   - Entries, styles, and locales are immutable once constructed
//   - Variable values and style nodes are sealed tagged-variant interfaces,
//     walked by type switch (the element vocabulary is closed)
//   - NO float types anywhere - counts, years, and ordinals are int
//   - All JSON tags use snake_case
//   - Document ordering uses logical sequence numbers only, never
//     wall-clock timestamps
package csl
