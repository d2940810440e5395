// Package assets locates the font files the renderer embeds.
//
// # Loader Architecture
//
//	Loader (interface)
//	    │
//	    ├── FilesystemLoader  - loads {basePath}/{name}.ttf from one directory
//	    └── SearchLoader      - tries several FilesystemLoaders in order
//
// A SearchLoader is built from the configured font directory followed by
// the conventional locations relative to the working directory. Missing
// candidate directories are skipped; a font found nowhere yields
// ErrFontNotFound.
//
// # Security
//
// Font names are validated to prevent path traversal. FilesystemLoader
// resolves symlinks and verifies paths stay within basePath.
package assets
