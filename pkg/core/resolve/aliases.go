package resolve

// defaultAliases is the curated synonym table for canonical fact keys.
// Keys on the left are what strategies ask for; the lists are spellings
// observed in analyst spreadsheets and LLM-generated fact dumps.
func defaultAliases() map[string][]string {
	return map[string][]string{
		"average_price": {
			"unit_price", "arpu", "selling_price", "avg_price",
			"average_selling_price", "price_per_unit", "average_revenue_per_user",
		},
		"total_potential_customers": {
			"target_audience", "addressable_customers", "potential_buyers",
			"customer_count", "total_customers", "target_customers",
		},
		"tam_global_market": {
			"total_addressable_market", "tam", "global_market_size", "market_size",
		},
		"sam_percent": {
			"serviceable_market_percent", "sam_share", "sam", "serviceable_percent",
		},
		"som_share": {
			"obtainable_share", "som", "som_percent", "target_market_share",
		},
		"competitor_count": {
			"competitors", "number_of_competitors", "competitor_list", "rivals",
		},
		"competitor_avg_revenue": {
			"average_competitor_revenue", "competitor_revenue", "avg_competitor_revenue",
		},
		"purchase_frequency": {
			"buying_frequency", "purchases_per_year", "repeat_rate",
		},
		"sales_cycle_months": {
			"sales_cycle", "sales_cycle_length", "deal_cycle_months",
		},
		"market_maturity": {
			"maturity_score", "market_maturity_score", "adoption_stage",
		},
		"segment_count": {
			"number_of_segments", "segments",
		},
		"segment_avg_value": {
			"average_segment_value", "segment_value",
		},
	}
}
