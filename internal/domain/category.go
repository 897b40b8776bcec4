package domain

// Category groups tickets by problem area.
type Category struct {
	Name          string        `json:"name" yaml:"name"`
	SubCategories []SubCategory `json:"subCategories" yaml:"subCategories"`
}

// SubCategory is a finer classification inside a category.
type SubCategory struct {
	ID   string `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
}
