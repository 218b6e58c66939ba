package report

// Справочные таблицы разбивок. Выделенных агрегирующих эндпоинтов на
// бэкенде нет, а считать разбивки из живых данных панель не должна до
// прояснения продуктового решения, поэтому графики строятся по
// фиксированным данным.

// DailySales описывает выручку и число заказов за день.
type DailySales struct {
	Date    string  `json:"date"`
	Revenue float64 `json:"revenue"`
	Orders  int     `json:"orders"`
}

// TopProduct описывает товар в рейтинге продаж.
type TopProduct struct {
	Name    string  `json:"name"`
	Revenue float64 `json:"revenue"`
	Orders  int     `json:"orders"`
}

// HourlySales описывает число заказов за часовой интервал.
type HourlySales struct {
	Hour   string `json:"hour"`
	Orders int    `json:"orders"`
}

// DemographicGroup описывает одну размерность клиентской демографии.
type DemographicGroup struct {
	Type string             `json:"type"`
	Data []DemographicEntry `json:"data"`
}

// DemographicEntry — одна строка демографической разбивки.
type DemographicEntry struct {
	Label      string  `json:"label"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

func dailyBreakdown() []DailySales {
	return []DailySales{
		{Date: "2024-01-15", Revenue: 2350.00, Orders: 35},
		{Date: "2024-01-14", Revenue: 1890.00, Orders: 28},
		{Date: "2024-01-13", Revenue: 2675.00, Orders: 42},
		{Date: "2024-01-12", Revenue: 3200.00, Orders: 48},
		{Date: "2024-01-11", Revenue: 1950.00, Orders: 31},
		{Date: "2024-01-10", Revenue: 1355.50, Orders: 22},
		{Date: "2024-01-09", Revenue: 2100.00, Orders: 33},
	}
}

func topProducts() []TopProduct {
	return []TopProduct{
		{Name: "Cappuccino", Revenue: 1780.00, Orders: 89},
		{Name: "Latte", Revenue: 1520.00, Orders: 76},
		{Name: "Espresso", Revenue: 975.00, Orders: 65},
	}
}

func hourlyBreakdown() []HourlySales {
	return []HourlySales{
		{Hour: "8-9", Orders: 15},
		{Hour: "9-10", Orders: 28},
		{Hour: "10-11", Orders: 35},
		{Hour: "11-12", Orders: 42},
		{Hour: "12-13", Orders: 38},
		{Hour: "13-14", Orders: 25},
		{Hour: "14-15", Orders: 31},
		{Hour: "15-16", Orders: 20},
	}
}

func demographics() []DemographicGroup {
	return []DemographicGroup{
		{
			Type: "Age Group",
			Data: []DemographicEntry{
				{Label: "18-25", Count: 45, Percentage: 28.8},
				{Label: "26-35", Count: 67, Percentage: 42.9},
				{Label: "36-45", Count: 32, Percentage: 20.5},
				{Label: "46+", Count: 12, Percentage: 7.7},
			},
		},
		{
			Type: "Gender",
			Data: []DemographicEntry{
				{Label: "Male", Count: 78, Percentage: 50},
				{Label: "Female", Count: 72, Percentage: 46.2},
				{Label: "Other", Count: 6, Percentage: 3.8},
			},
		},
	}
}
