package catalog

// Category maps a local category name to its remote taxonomy identifier.
type Category struct {
	Name string `yaml:"name"`
	ID   int    `yaml:"id"`
}

// Catalog is the ordered set of categories a harvest run iterates.
// Order is stable so repeated runs visit categories deterministically.
type Catalog struct {
	Categories []Category `yaml:"categories"`
}

func (c *Catalog) Len() int {
	return len(c.Categories)
}

// Lookup returns the category with the given name.
func (c *Catalog) Lookup(name string) (Category, bool) {
	for _, cat := range c.Categories {
		if cat.Name == name {
			return cat, true
		}
	}
	return Category{}, false
}
