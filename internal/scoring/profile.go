// -----------------------------------------------------------------------
// Last Modified: Tuesday, 18th August 2026 9:12:44 am
// Modified By: Bob McAllan
// -----------------------------------------------------------------------

package scoring

import "fmt"

// Refinement upgrades the category when any of its keywords appears in
// the title. Refinements are applied in order, first hit wins.
type Refinement struct {
	Keywords []string
	Category string
}

// Profile is one role family's scoring tables. The algorithm is the
// same for every profile; only the enumerations change.
type Profile struct {
	Name string

	// Signals a title must contain at least one of. Order matters:
	// the first occurring signal determines the starting category.
	Signals []string

	// SignalCategories maps a matched signal to its category. Signals
	// with no entry fall back to DefaultCategory.
	SignalCategories map[string]string
	DefaultCategory  string

	// Exclusions reject a title outright, even when a signal is present.
	Exclusions []string

	// Refinements override the signal category from title keywords.
	Refinements []Refinement

	// DescriptionTerms each add 4 points of boost (capped at 20) when
	// present in the description.
	DescriptionTerms []string
}

// ProfileByName returns the built-in profile for a role family.
func ProfileByName(name string) (*Profile, error) {
	switch name {
	case "marketing":
		return MarketingProfile(), nil
	case "it":
		return ITProfile(), nil
	case "sales":
		return SalesProfile(), nil
	default:
		return nil, fmt.Errorf("unknown scoring profile: %s", name)
	}
}

// MarketingProfile scores marketing roles. Signals are explicit terms
// that unambiguously indicate a marketing role; fuzzy matching was
// dropped because it catches false positives like bare "lead" titles.
func MarketingProfile() *Profile {
	return &Profile{
		Name: "marketing",
		Signals: []string{
			// Primary signal - catches most legitimate marketing roles
			"marketing",
			// Specific marketing functions (unambiguous)
			"seo",
			"ppc",
			"copywriter",
			"copywriting",
			"social media",
			"social strategist",
			"brand manager",
			"brand director",
			"brand strategist",
			"demand gen",
			"content strategist",
			"content manager",
			"influencer",
			"paid media",
			"paid social",
			"paid acquisition",
			"growth marketing",
			"growth marketer",
			"cmo",
			"chief marketing",
			"public relations",
			"communications manager",
			"communications director",
			"pr manager",
			"pr director",
			"media buyer",
		},
		SignalCategories: map[string]string{
			"marketing":               "general_marketing",
			"seo":                     "seo",
			"ppc":                     "performance_marketing",
			"copywriter":              "content_marketing",
			"copywriting":             "content_marketing",
			"social media":            "social_media",
			"brand manager":           "brand_marketing",
			"brand director":          "brand_marketing",
			"brand strategist":        "brand_marketing",
			"demand gen":              "demand_generation",
			"content strategist":      "content_marketing",
			"influencer":              "influencer_marketing",
			"paid media":              "performance_marketing",
			"paid social":             "performance_marketing",
			"paid acquisition":        "performance_marketing",
			"growth marketing":        "growth_marketing",
			"growth marketer":         "growth_marketing",
			"cmo":                     "marketing_leadership",
			"chief marketing":         "marketing_leadership",
			"public relations":        "communications",
			"communications manager":  "communications",
			"communications director": "communications",
			"pr manager":              "communications",
			"pr director":             "communications",
			"media buyer":             "performance_marketing",
		},
		DefaultCategory: "general_marketing",
		Exclusions: []string{
			// Engineering/Tech
			"engineer",
			"developer",
			"software",
			"backend",
			"frontend",
			"full stack",
			"fullstack",
			"data scientist",
			"machine learning",
			"devops",
			"sre",
			"site reliability",
			"data engineer",
			"ml engineer",
			"ai engineer",
			"security engineer",
			"infrastructure",
			"platform engineer",
			"qa engineer",
			"quality assurance",
			"test engineer",
			// Sales (not marketing)
			"sales representative",
			"account executive",
			"sdr",
			"bdr",
			"sales development",
			"business development",
			"sales manager",
			"director of sales",
			"sales training",
			"sales enablement",
			"sales operations",
			"sales analyst",
			"sales associate",
			"sales coordinator",
			"account manager",
			"key account",
			// HR/Recruiting
			"recruiter",
			"people ops",
			"talent acquisition",
			"talent partner",
			"human resources",
			// Finance/Legal
			"finance",
			"accounting",
			"legal",
			"compliance",
			"general counsel",
			"accountant",
			"financial analyst",
			"financial planning",
			"investor relations",
			"capital markets",
			// Customer/Support
			"customer success",
			"customer support",
			"customer service",
			"support engineer",
			"technical support",
			"student success",
			// Operations/Admin
			"operations manager",
			"director of operations",
			"operations analyst",
			"operations associate",
			"operations coordinator",
			"operations executive",
			"office manager",
			"executive assistant",
			"administrative",
			"facilities",
			"supply chain",
			"implementation",
			"revenue operations",
			"business operations",
			"general manager",
			// Product (not product marketing)
			"product manager",
			"product designer",
			"product owner",
			"product operations",
			// Shipping/Logistics
			"shipping",
			"freight",
			"logistics",
			"marine",
			"surveyor",
			"move coordinator",
			"buyer",
			// Growth roles without marketing context
			"growth manager",
			"growth associate",
			"growth hacker",
			"head of growth",
			// Education/Childcare (false positives from "lead")
			"teacher",
			"childcare",
			"preschool",
			"early childhood",
			"learning specialist",
			"education manager",
			"academic",
			"instructor",
			"tutor",
			// Other non-marketing
			"research mentor",
			"enrollment manager",
			"head of partnerships",
			"partnerships manager",
			"video editor",
			"scriptwriter",
			"founder in residence",
			"online events",
			"vip manager",
			"avionics",
			"mission development",
			"project manager",
			"program manager",
		},
		Refinements: []Refinement{
			{Keywords: []string{"director", "vp", "head of"}, Category: "marketing_leadership"},
			{Keywords: []string{"product marketing"}, Category: "product_marketing"},
			{Keywords: []string{"content"}, Category: "content_marketing"},
			{Keywords: []string{"brand"}, Category: "brand_marketing"},
			{Keywords: []string{"demand"}, Category: "demand_generation"},
			{Keywords: []string{"growth"}, Category: "growth_marketing"},
			{Keywords: []string{"social"}, Category: "social_media"},
			{Keywords: []string{"seo"}, Category: "seo"},
			{Keywords: []string{"paid", "ppc", "performance"}, Category: "performance_marketing"},
			{Keywords: []string{"email", "lifecycle", "retention"}, Category: "lifecycle_crm"},
		},
		DescriptionTerms: []string{
			"marketing",
			"campaign",
			"brand",
			"content",
			"seo",
			"growth",
			"acquisition",
			"funnel",
			"conversion",
			"analytics",
			"strategy",
		},
	}
}

// ITProfile scores IT and infrastructure roles, the hiring signal used
// for MSP prospecting.
func ITProfile() *Profile {
	return &Profile{
		Name: "it",
		Signals: []string{
			"it support",
			"it manager",
			"it director",
			"it technician",
			"it administrator",
			"help desk",
			"helpdesk",
			"desktop support",
			"system administrator",
			"systems administrator",
			"sysadmin",
			"network administrator",
			"network engineer",
			"infrastructure engineer",
			"cloud engineer",
			"devops",
			"security analyst",
			"cybersecurity",
			"information security",
			"information technology",
			"cto",
			"ciso",
		},
		SignalCategories: map[string]string{
			"it support":             "it_support",
			"help desk":              "it_support",
			"helpdesk":               "it_support",
			"desktop support":        "it_support",
			"it technician":          "it_support",
			"it manager":             "it_leadership",
			"it director":            "it_leadership",
			"cto":                    "it_leadership",
			"ciso":                   "security",
			"system administrator":   "systems",
			"systems administrator":  "systems",
			"sysadmin":               "systems",
			"it administrator":       "systems",
			"network administrator":  "networking",
			"network engineer":       "networking",
			"infrastructure engineer": "cloud_infrastructure",
			"cloud engineer":         "cloud_infrastructure",
			"devops":                 "cloud_infrastructure",
			"security analyst":       "security",
			"cybersecurity":          "security",
			"information security":   "security",
		},
		DefaultCategory: "general_it",
		Exclusions: []string{
			"marketing",
			"sales",
			"account executive",
			"recruiter",
			"talent acquisition",
			"human resources",
			"finance",
			"accounting",
			"legal",
			"customer success",
			"software engineer",
			"software developer",
			"product manager",
			"product designer",
			"data scientist",
			"machine learning",
			"teacher",
			"instructor",
		},
		Refinements: []Refinement{
			{Keywords: []string{"director", "vp", "head of", "cto"}, Category: "it_leadership"},
			{Keywords: []string{"security", "ciso"}, Category: "security"},
			{Keywords: []string{"network"}, Category: "networking"},
			{Keywords: []string{"cloud", "devops", "infrastructure"}, Category: "cloud_infrastructure"},
		},
		DescriptionTerms: []string{
			"infrastructure",
			"servers",
			"network",
			"active directory",
			"microsoft 365",
			"azure",
			"aws",
			"backup",
			"security",
			"endpoint",
			"ticketing",
		},
	}
}

// SalesProfile scores sales roles.
func SalesProfile() *Profile {
	return &Profile{
		Name: "sales",
		Signals: []string{
			"sales",
			"account executive",
			"account manager",
			"sdr",
			"bdr",
			"business development",
			"revenue",
			"cro",
			"chief revenue",
			"partnerships",
		},
		SignalCategories: map[string]string{
			"sales":                "general_sales",
			"account executive":    "account_executive",
			"account manager":      "account_management",
			"sdr":                  "sales_development",
			"bdr":                  "sales_development",
			"business development": "sales_development",
			"revenue":              "sales_leadership",
			"cro":                  "sales_leadership",
			"chief revenue":        "sales_leadership",
			"partnerships":         "partnerships",
		},
		DefaultCategory: "general_sales",
		Exclusions: []string{
			"marketing",
			"engineer",
			"developer",
			"software",
			"recruiter",
			"talent acquisition",
			"human resources",
			"finance",
			"accounting",
			"legal",
			"customer support",
			"customer service",
			"point of sales",
			"sales tax",
			"teacher",
			"instructor",
		},
		Refinements: []Refinement{
			{Keywords: []string{"director", "vp", "head of", "cro"}, Category: "sales_leadership"},
			{Keywords: []string{"sdr", "bdr", "development"}, Category: "sales_development"},
			{Keywords: []string{"account manager"}, Category: "account_management"},
		},
		DescriptionTerms: []string{
			"quota",
			"pipeline",
			"prospecting",
			"closing",
			"crm",
			"territory",
			"outbound",
			"revenue",
			"negotiation",
			"forecast",
		},
	}
}
