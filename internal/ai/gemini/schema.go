package gemini

import "google.golang.org/genai"

func str() *genai.Schema { return &genai.Schema{Type: genai.TypeString} }

func integer() *genai.Schema { return &genai.Schema{Type: genai.TypeInteger} }

func list(items *genai.Schema) *genai.Schema {
	return &genai.Schema{Type: genai.TypeArray, Items: items}
}

func object(props map[string]*genai.Schema) *genai.Schema {
	return &genai.Schema{Type: genai.TypeObject, Properties: props}
}

// profileSchema mirrors profile.Profile.
func profileSchema() *genai.Schema {
	return object(map[string]*genai.Schema{
		"names":     list(str()),
		"emails":    list(str()),
		"phones":    list(str()),
		"locations": list(str()),
		"skills":    list(str()),
		"education": list(object(map[string]*genai.Schema{
			"school":          str(),
			"department":      str(),
			"degree":          str(),
			"graduation_year": str(),
		})),
		"experience": list(object(map[string]*genai.Schema{
			"company":          str(),
			"position":         str(),
			"start_date":       str(),
			"end_date":         str(),
			"responsibilities": list(str()),
		})),
		"languages": list(object(map[string]*genai.Schema{
			"language": str(),
			"level":    str(),
		})),
		"certificates": list(object(map[string]*genai.Schema{
			"name":   str(),
			"issuer": str(),
			"date":   str(),
		})),
		"projects": list(object(map[string]*genai.Schema{
			"name":         str(),
			"description":  str(),
			"technologies": list(str()),
		})),
		"total_experience_years": str(),
		"summary":                str(),
	})
}

// scoringSchema has no composite field; the composite is computed locally.
func scoringSchema() *genai.Schema {
	return object(map[string]*genai.Schema{
		"technical_score":   integer(),
		"experience_score":  integer(),
		"education_score":   integer(),
		"language_score":    integer(),
		"certificate_score": integer(),
		"fit_reason":        str(),
		"matched_skills":    list(str()),
		"missing_skills":    list(str()),
		"experience_fit":    str(),
		"education_fit":     str(),
		"language_fit":      str(),
		"strengths":         list(str()),
		"improvements":      list(str()),
		"recommendations":   list(str()),
	})
}
