package assets

// Loader defines the contract for loading font files.
type Loader interface {
	// LoadFont loads a TrueType font by name (without .ttf extension).
	// Returns ErrFontNotFound if the font doesn't exist.
	// Returns ErrInvalidAssetName if the name contains invalid characters.
	LoadFont(name string) ([]byte, error)
}

// FontExt is the extension appended to font names.
const FontExt = ".ttf"
