package usecase

// demoOwner — чей магазин владеет демонстрационным товаром.
type demoOwner int

const (
	adminShop demoOwner = iota
	sellerShop
)

var demoCategories = []string{"Electronics", "Home Appliances", "Books", "Clothing", "Toys"}

type demoProduct struct {
	name        string
	description string
	price       int64
	quantity    int
	imagePath   string
	category    string
	owner       demoOwner
}

var demoProducts = []demoProduct{
	{"Notebook Alpha", "Легкий ноутбук для повседневных задач.", 14999, 10, "/images/products/notebook_alpha.jpg", "Electronics", adminShop},
	{"Wireless Mouse Mini", "Компактная эргономичная беспроводная мышь.", 2450, 50, "/images/products/mouse_mini.jpg", "Electronics", adminShop},
	{"Mechanical Keyboard X", "Механическая клавиатура с тактильными переключателями.", 8990, 20, "/images/products/keyboard_x.jpg", "Electronics", adminShop},
	{"Classic T-Shirt", "Удобная хлопковая футболка.", 1499, 200, "/images/products/classic_tshirt.jpg", "Clothing", adminShop},
	{"Denim Jeans", "Классические джинсы прямого кроя.", 4999, 80, "/images/products/denim_jeans.jpg", "Clothing", adminShop},
	{"C# in Depth", "Практическое руководство по C#.", 3999, 100, "/images/products/csharp_in_depth.jpg", "Books", adminShop},
	{"Air Purifier Pro", "Компактный очиститель воздуха для дома.", 12900, 25, "/images/products/air_purifier.jpg", "Home Appliances", sellerShop},
	{"Blender 500W", "Мощный блендер для смузи и супов.", 5999, 40, "/images/products/blender_500w.jpg", "Home Appliances", sellerShop},
	{"Building Blocks Set", "Детский набор-конструктор.", 2999, 150, "/images/products/blocks_set.jpg", "Toys", sellerShop},
	{"Remote Car Racer", "Машинка на радиоуправлении для детей.", 4999, 70, "/images/products/remote_car.jpg", "Toys", sellerShop},
	{"Cooking Basics", "Книга рецептов для начинающих.", 1950, 60, "/images/products/cooking_basics.jpg", "Books", sellerShop},
	{"Smartwatch Pro", "Смарт-часы для фитнеса и уведомлений.", 19999, 30, "/images/products/smartwatch_pro.jpg", "Electronics", sellerShop},
}

// DemoProductNames возвращает названия демонстрационных товаров, которые создаёт сидер.
func DemoProductNames() []string {
	names := make([]string, 0, len(demoProducts))
	for _, p := range demoProducts {
		names = append(names, p.name)
	}
	return names
}
