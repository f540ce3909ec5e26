package compliance

// Keywords maps lowercase tags to lowercase trigger substrings.
type Keywords struct {
	Allergens map[string][]string
	Diets     map[string][]string
}

// Diet tags recognized by CheckDietCompliance.
const (
	DietVegan      = "vegano"
	DietVegetarian = "vegetariano"
)

var (
	eggTriggers       = []string{"huevo", "yema", "clara", "tortilla", "revuelto", "omelette"}
	fishTriggers      = []string{"pescado", "atun", "salmon", "merluza", "tilapia", "bacalao", "sardina"}
	shellfishTriggers = []string{"camaron", "gamba", "langostino", "cangrejo", "langosta", "mejillon", "almeja", "calamar", "pulpo"}
	meatTriggers      = []string{"carne", "pollo", "res", "cerdo"}
	curedTriggers     = []string{"jamon", "tocino", "salchicha", "chorizo", "panceta"}
	dairyTriggers     = []string{"leche", "queso", "yogur", "crema", "manteca"}
)

// DefaultKeywords returns the built-in tables. NewDictionary copies them.
func DefaultKeywords() Keywords {
	return Keywords{
		Allergens: map[string][]string{
			"huevo":        eggTriggers,
			"pescado":      fishTriggers,
			"gluten":       {"trigo", "harina", "pan", "pasta", "fideo", "galleta", "avena", "cebada", "centeno", "gluten"},
			"lactosa":      concat(dairyTriggers, []string{"lactosa", "suero"}),
			"leche":        dairyTriggers,
			"frutos_secos": {"nuez", "almendra", "avellana", "pistacho", "cajou", "anacardo"},
			"mani":         {"mani", "cacahuate", "mantequilla de mani"},
			"sesamo":       {"sesamo", "ajonjoli", "tahini"},
			"marisco":      shellfishTriggers,
			"soja":         {"soja", "tofu", "tempeh", "edamame", "salsa de soja", "soya"},
		},
		Diets: map[string][]string{
			DietVegan: concat(
				meatTriggers,
				fishTriggers,
				[]string{"marisco"},
				shellfishTriggers,
				curedTriggers,
				eggTriggers[:4],
				dairyTriggers,
				[]string{"mantequilla", "suero", "caseina", "lactosa", "miel", "gelatina"},
			),
			DietVegetarian: concat(
				meatTriggers,
				fishTriggers,
				[]string{"marisco"},
				shellfishTriggers,
				curedTriggers,
				[]string{"steak", "bife", "asado"},
			),
		},
	}
}

func concat(lists ...[]string) []string {
	var n int
	for _, l := range lists {
		n += len(l)
	}
	out := make([]string, 0, n)
	for _, l := range lists {
		out = append(out, l...)
	}
	return out
}
