package estimate

// =============================================================================
// STRATEGY CATALOG
// Ordered lists per category. Declaration order is the selection order:
// the solver keeps the first strategy that produces a value, so simpler
// strategies come first and are only displaced by a later high-confidence
// success (see solver.go).
// =============================================================================

// Catalog returns the declared strategies for a category, in priority order
func Catalog(cat Category) []Strategy {
	switch cat {
	case CategoryMacro:
		return macroStrategies
	case CategoryDemand:
		return demandStrategies
	case CategorySupply:
		return supplyStrategies
	default:
		return nil
	}
}

var macroStrategies = []Strategy{
	{
		ID:              "macro_tam_sam_som",
		Name:            "TAM / SAM / SOM Funnel",
		FormulaTemplate: "{tam} * {sam_percent} * {som_share}",
		RequiredInputs: map[string]string{
			"tam":         "tam_global_market",
			"sam_percent": "sam_percent",
			"som_share":   "som_share",
		},
		Description: "Classic top-down funnel from the total addressable market",
		Methodology: "Total market, narrowed to the serviceable share, narrowed again to the realistically obtainable slice.",
	},
	{
		ID:              "macro_sam_only",
		Name:            "Serviceable Market Share",
		FormulaTemplate: "{tam} * {sam_percent}",
		RequiredInputs: map[string]string{
			"tam":         "tam_global_market",
			"sam_percent": "sam_percent",
		},
		Description: "Serviceable market when no obtainable-share evidence exists",
		Methodology: "Upper-bound top-down estimate; use only when SOM data is unavailable.",
	},
}

var demandStrategies = []Strategy{
	{
		ID:              "demand_customers_price",
		Name:            "Customers x Price",
		FormulaTemplate: "{customers} * {price}",
		RequiredInputs: map[string]string{
			"customers": "total_potential_customers",
			"price":     "average_price",
		},
		Description:       "Bottom-up build from the addressable customer base and average pricing",
		Methodology:       "Every potential customer buying once a year at the average realized price.",
		RealityAdjustable: true,
	},
	{
		ID:              "demand_customers_price_frequency",
		Name:            "Customers x Price x Frequency",
		FormulaTemplate: "{customers} * {price} * {frequency}",
		RequiredInputs: map[string]string{
			"customers": "total_potential_customers",
			"price":     "average_price",
			"frequency": "purchase_frequency",
		},
		Description:       "Bottom-up build including repeat purchase behavior",
		Methodology:       "Extends the base demand build with the annual purchase frequency.",
		RealityAdjustable: true,
	},
	{
		ID:              "demand_segment_buildup",
		Name:            "Segment Build-Up",
		FormulaTemplate: "{segments} * {segment_value}",
		RequiredInputs: map[string]string{
			"segments":      "segment_count",
			"segment_value": "segment_avg_value",
		},
		Description:       "Sum of per-segment demand when customer-level data is missing",
		Methodology:       "Coarse demand build from segment counts and the average segment value.",
		RealityAdjustable: true,
	},
}

var supplyStrategies = []Strategy{
	{
		ID:              "supply_competitor_revenue",
		Name:            "Competitor Revenue Reconstruction",
		FormulaTemplate: "{competitors} * {avg_revenue}",
		RequiredInputs: map[string]string{
			"competitors": "competitor_count",
			"avg_revenue": "competitor_avg_revenue",
		},
		Description:       "Market rebuilt from the revenue of the players serving it today",
		Methodology:       "Assumes the visible competitor set captures the served market.",
		RealityAdjustable: true,
	},
	{
		ID:              "supply_capacity_price",
		Name:            "Capacity x Price",
		FormulaTemplate: "{capacity} * {price}",
		RequiredInputs: map[string]string{
			"capacity": "total_supply_capacity",
			"price":    "average_price",
		},
		Description:       "Market bounded by what suppliers can physically deliver",
		Methodology:       "Total deliverable units times the average realized price.",
		RealityAdjustable: true,
	},
}
