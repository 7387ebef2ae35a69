package funds

// Fund describes one entry of the static mutual-fund catalog offered for
// investment purchases. The catalog is fixed at build time.
type Fund struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Category    string `json:"category"`
	Returns     string `json:"returns"`
	Risk        string `json:"risk"`
	// MinInvestmentMinor is the smallest accepted purchase, in minor units.
	MinInvestmentMinor int64  `json:"min_investment_minor"`
	Description        string `json:"description"`
}

var catalog = []Fund{
	{
		ID:                 1,
		Name:               "FinFlow Equity Fund",
		Category:           "Equity - Large Cap",
		Returns:            "14.5%",
		Risk:               "Moderate",
		MinInvestmentMinor: 100_000,
		Description:        "A diversified large-cap equity fund aiming for long-term capital appreciation through investments in blue-chip companies.",
	},
	{
		ID:                 2,
		Name:               "FinFlow Tax Saver",
		Category:           "ELSS",
		Returns:            "12.8%",
		Risk:               "Moderate-High",
		MinInvestmentMinor: 50_000,
		Description:        "An Equity Linked Savings Scheme (ELSS) offering tax benefits under Section 80C with a 3-year lock-in period.",
	},
	{
		ID:                 3,
		Name:               "FinFlow Balanced Advantage",
		Category:           "Hybrid",
		Returns:            "10.2%",
		Risk:               "Moderate",
		MinInvestmentMinor: 100_000,
		Description:        "A balanced fund that dynamically manages equity and debt allocation based on market conditions.",
	},
	{
		ID:                 4,
		Name:               "FinFlow Liquid Fund",
		Category:           "Liquid",
		Returns:            "5.5%",
		Risk:               "Low",
		MinInvestmentMinor: 500_000,
		Description:        "A liquid fund investing in short-term money market instruments with high liquidity and low risk.",
	},
	{
		ID:                 5,
		Name:               "FinFlow Mid-Cap Opportunities",
		Category:           "Equity - Mid Cap",
		Returns:            "16.7%",
		Risk:               "High",
		MinInvestmentMinor: 100_000,
		Description:        "A fund focusing on mid-sized companies with high growth potential.",
	},
}

// All returns a copy of the catalog in listing order.
func All() []Fund {
	out := make([]Fund, len(catalog))
	copy(out, catalog)
	return out
}

// ByID looks up a fund by its identifier.
func ByID(id int) (Fund, bool) {
	for _, f := range catalog {
		if f.ID == id {
			return f, true
		}
	}
	return Fund{}, false
}
