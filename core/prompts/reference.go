package prompts

// Tag is a tag the backend may resolve tag names against.
type Tag struct {
	ID    string `json:"id" yaml:"id"`
	Name  string `json:"name" yaml:"name"`
	Slug  string `json:"slug" yaml:"slug"`
	Color string `json:"color" yaml:"color"`
}

// Category is a category the backend may resolve category names against.
type Category struct {
	ID       string  `json:"id" yaml:"id"`
	Name     string  `json:"name" yaml:"name"`
	Slug     string  `json:"slug" yaml:"slug"`
	ParentID *string `json:"parentId" yaml:"parentId,omitempty"`
}

// ReferenceData is sent along every request so the backend can map names
// to identifiers.
type ReferenceData struct {
	Tags       []Tag      `json:"availableTags" yaml:"tags"`
	Categories []Category `json:"availableCategories" yaml:"categories"`
}

func (r ReferenceData) TagName(id string) (string, bool) {
	for _, tag := range r.Tags {
		if tag.ID == id {
			return tag.Name, true
		}
	}
	return "", false
}

func (r ReferenceData) CategoryName(id string) (string, bool) {
	for _, category := range r.Categories {
		if category.ID == id {
			return category.Name, true
		}
	}
	return "", false
}
