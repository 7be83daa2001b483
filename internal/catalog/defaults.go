package catalog

import "github.com/sustainly/esg-cli/internal/model"

// DefaultRetail returns the built-in question catalog for retail SMBs.
// Question weights across the catalog sum to 1.0.
func DefaultRetail() []model.QuestionSpec {
	return []model.QuestionSpec{
		{
			ID:              "energy_consumption",
			Category:        model.CategoryEnvironmental,
			Subcategory:     "energy",
			Question:        "What is your annual energy consumption?",
			ValueType:       model.ValueNumeric,
			Unit:            "kWh",
			Weight:          0.15,
			ValidRange:      model.Range{Min: 0, Max: 100000},
			IndustryDefault: 50000,
			LowerIsBetter:   true,
			HelpText:        "Include electricity, gas, and other energy sources used in your operations",
		},
		{
			ID:              "co2_emissions",
			Category:        model.CategoryEnvironmental,
			Subcategory:     "emissions",
			Question:        "What are your annual CO2 emissions?",
			ValueType:       model.ValueNumeric,
			Unit:            "tonnes CO2",
			Weight:          0.20,
			ValidRange:      model.Range{Min: 0, Max: 20},
			IndustryDefault: 10,
			LowerIsBetter:   true,
			HelpText:        "Include direct and indirect emissions from your business operations",
		},
		{
			ID:              "packaging_recyclability",
			Category:        model.CategoryEnvironmental,
			Subcategory:     "waste",
			Question:        "What percentage of your packaging is recyclable?",
			ValueType:       model.ValuePercentage,
			Unit:            "%",
			Weight:          0.15,
			ValidRange:      model.Range{Min: 0, Max: 100},
			IndustryDefault: 60,
			HelpText:        "Percentage of product packaging that can be recycled by consumers",
		},
		{
			ID:              "diversity_percentage",
			Category:        model.CategorySocial,
			Subcategory:     "diversity",
			Question:        "What is your workforce diversity percentage (DEI)?",
			ValueType:       model.ValuePercentage,
			Unit:            "%",
			Weight:          0.15,
			ValidRange:      model.Range{Min: 0, Max: 100},
			IndustryDefault: 35,
			HelpText:        "Percentage of employees from underrepresented groups",
		},
		{
			ID:              "female_leadership",
			Category:        model.CategorySocial,
			Subcategory:     "diversity",
			Question:        "What percentage of leadership positions are held by women?",
			ValueType:       model.ValuePercentage,
			Unit:            "%",
			Weight:          0.10,
			ValidRange:      model.Range{Min: 0, Max: 100},
			IndustryDefault: 30,
			HelpText:        "Percentage of management and executive roles held by women",
		},
		{
			ID:              "employee_satisfaction",
			Category:        model.CategorySocial,
			Subcategory:     "employee",
			Question:        "What is your employee satisfaction score?",
			ValueType:       model.ValueNumeric,
			Unit:            "1-10 scale",
			Weight:          0.10,
			ValidRange:      model.Range{Min: 1, Max: 10},
			IndustryDefault: 7.5,
			HelpText:        "Average employee satisfaction rating from surveys (1-10 scale)",
		},
		{
			ID:          "data_privacy_compliance",
			Category:    model.CategoryGovernance,
			Subcategory: "ethics",
			Question:    "Are you compliant with data privacy regulations (GDPR/CCPA)?",
			ValueType:   model.ValueBoolean,
			Weight:      0.05,
			ValidRange:  model.Range{Min: 0, Max: 1},
			HelpText:    "Do you have proper data privacy policies and procedures in place?",
		},
		{
			ID:              "ethics_training",
			Category:        model.CategoryGovernance,
			Subcategory:     "ethics",
			Question:        "What percentage of employees completed ethics training?",
			ValueType:       model.ValuePercentage,
			Unit:            "%",
			Weight:          0.05,
			ValidRange:      model.Range{Min: 0, Max: 100},
			IndustryDefault: 85,
			HelpText:        "Percentage of employees who completed ethics and compliance training",
		},
		{
			ID:          "supplier_code",
			Category:    model.CategoryGovernance,
			Subcategory: "ethics",
			Question:    "Do you have a supplier code of conduct?",
			ValueType:   model.ValueBoolean,
			Weight:      0.03,
			ValidRange:  model.Range{Min: 0, Max: 1},
			HelpText:    "Do you require suppliers to follow ethical and sustainable practices?",
		},
		{
			ID:          "transparency_reporting",
			Category:    model.CategoryGovernance,
			Subcategory: "transparency",
			Question:    "Do you publish ESG or sustainability reports?",
			ValueType:   model.ValueBoolean,
			Weight:      0.02,
			ValidRange:  model.Range{Min: 0, Max: 1},
			HelpText:    "Do you regularly publish reports on your ESG performance?",
		},
	}
}
