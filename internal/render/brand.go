package render

// Brand is the identity stamped on every page.
type Brand struct {
	Name   string
	Author string
	Site   string
}

// DefaultBrand returns the house brand.
func DefaultBrand() Brand {
	return Brand{
		Name:   "ABRAHAM OF LONDON",
		Author: "Abraham of London",
		Site:   "abrahamoflondon.org",
	}
}

func (b Brand) withDefaults() Brand {
	d := DefaultBrand()
	if b.Name == "" {
		b.Name = d.Name
	}
	if b.Author == "" {
		b.Author = d.Author
	}
	if b.Site == "" {
		b.Site = d.Site
	}
	return b
}
