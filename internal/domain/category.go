package domain

// Category описывает категорию товара
type Category struct {
	ID               int64
	Name             string
	ParentCategoryID *int64
}

func NewCategory(name string) *Category {
	return &Category{
		Name: name,
	}
}
