package geo

// countryCodes is the full set of ISO 3166-1 alpha-2 country codes.
var countryCodes = []string{
	"AD", "AE", "AF", "AG", "AI", "AL", "AM", "AO", "AQ", "AR", "AS", "AT", "AU", "AW", "AX", "AZ",
	"BA", "BB", "BD", "BE", "BF", "BG", "BH", "BI", "BJ", "BL", "BM", "BN", "BO", "BQ", "BR", "BS",
	"BT", "BV", "BW", "BY", "BZ",
	"CA", "CC", "CD", "CF", "CG", "CH", "CI", "CK", "CL", "CM", "CN", "CO", "CR", "CU", "CV", "CW",
	"CX", "CY", "CZ",
	"DE", "DJ", "DK", "DM", "DO", "DZ",
	"EC", "EE", "EG", "EH", "ER", "ES", "ET",
	"FI", "FJ", "FK", "FM", "FO", "FR",
	"GA", "GB", "GD", "GE", "GF", "GG", "GH", "GI", "GL", "GM", "GN", "GP", "GQ", "GR", "GS", "GT",
	"GU", "GW", "GY",
	"HK", "HM", "HN", "HR", "HT", "HU",
	"ID", "IE", "IL", "IM", "IN", "IO", "IQ", "IR", "IS", "IT",
	"JE", "JM", "JO", "JP",
	"KE", "KG", "KH", "KI", "KM", "KN", "KP", "KR", "KW", "KY", "KZ",
	"LA", "LB", "LC", "LI", "LK", "LR", "LS", "LT", "LU", "LV", "LY",
	"MA", "MC", "MD", "ME", "MF", "MG", "MH", "MK", "ML", "MM", "MN", "MO", "MP", "MQ", "MR", "MS",
	"MT", "MU", "MV", "MW", "MX", "MY", "MZ",
	"NA", "NC", "NE", "NF", "NG", "NI", "NL", "NO", "NP", "NR", "NU", "NZ",
	"OM",
	"PA", "PE", "PF", "PG", "PH", "PK", "PL", "PM", "PN", "PR", "PS", "PT", "PW", "PY",
	"QA",
	"RE", "RO", "RS", "RU", "RW",
	"SA", "SB", "SC", "SD", "SE", "SG", "SH", "SI", "SJ", "SK", "SL", "SM", "SN", "SO", "SR", "SS",
	"ST", "SV", "SX", "SY", "SZ",
	"TC", "TD", "TF", "TG", "TH", "TJ", "TK", "TL", "TM", "TN", "TO", "TR", "TT", "TV", "TW", "TZ",
	"UA", "UG", "UM", "US", "UY", "UZ",
	"VA", "VC", "VE", "VG", "VI", "VN", "VU",
	"WF", "WS",
	"YE", "YT",
	"ZA", "ZM", "ZW",
}

// usStateCodes is the ISO 3166-2:US subdivision set, the only subdivision
// tier any registered source emits (location strings like "Remote -
// California"), so the closed vocabulary doesn't carry every country's
// subdivisions.
var usStateCodes = []string{
	"US-AL", "US-AK", "US-AZ", "US-AR", "US-CA", "US-CO", "US-CT", "US-DE", "US-FL", "US-GA",
	"US-HI", "US-ID", "US-IL", "US-IN", "US-IA", "US-KS", "US-KY", "US-LA", "US-ME", "US-MD",
	"US-MA", "US-MI", "US-MN", "US-MS", "US-MO", "US-MT", "US-NE", "US-NV", "US-NH", "US-NJ",
	"US-NM", "US-NY", "US-NC", "US-ND", "US-OH", "US-OK", "US-OR", "US-PA", "US-RI", "US-SC",
	"US-SD", "US-TN", "US-TX", "US-UT", "US-VT", "US-VA", "US-WA", "US-WV", "US-WI", "US-WY",
	"US-DC",
}

// countryNameToCode maps common lower-cased country/region names (as they
// appear in JSON-LD applicantLocationRequirements or a source's own
// free-text location field) to ISO codes. Not exhaustive; unmatched names
// are dropped rather than failing the listing.
var countryNameToCode = map[string]string{
	"united states":            "US",
	"united states of america": "US",
	"usa":                      "US",
	"u.s.":                     "US",
	"u.s.a.":                   "US",
	"united kingdom":           "GB",
	"uk":                       "GB",
	"great britain":            "GB",
	"canada":                   "CA",
	"germany":                  "DE",
	"france":                   "FR",
	"spain":                    "ES",
	"italy":                    "IT",
	"netherlands":              "NL",
	"the netherlands":          "NL",
	"ireland":                  "IE",
	"portugal":                 "PT",
	"poland":                   "PL",
	"sweden":                   "SE",
	"norway":                   "NO",
	"denmark":                  "DK",
	"finland":                  "FI",
	"switzerland":              "CH",
	"austria":                  "AT",
	"belgium":                  "BE",
	"india":                    "IN",
	"china":                    "CN",
	"japan":                    "JP",
	"south korea":              "KR",
	"korea, republic of":       "KR",
	"singapore":                "SG",
	"australia":                "AU",
	"new zealand":              "NZ",
	"brazil":                   "BR",
	"mexico":                   "MX",
	"argentina":                "AR",
	"south africa":             "ZA",
	"nigeria":                  "NG",
	"egypt":                    "EG",
	"israel":                   "IL",
	"united arab emirates":     "AE",
	"uae":                      "AE",
	"saudi arabia":             "SA",
	"turkey":                   "TR",
	"ukraine":                  "UA",
	"russia":                   "RU",
	"russian federation":       "RU",
	"romania":                  "RO",
	"czech republic":           "CZ",
	"czechia":                  "CZ",
	"greece":                   "GR",
	"philippines":              "PH",
	"indonesia":                "ID",
	"vietnam":                  "VN",
	"pakistan":                 "PK",
	"bangladesh":               "BD",
	"kosovo":                   "XK",
	"hong kong":                "HK",
	"taiwan":                   "TW",
	"colombia":                 "CO",
	"chile":                    "CL",
	"peru":                     "PE",
	"california":               "US-CA",
	"new york":                 "US-NY",
	"texas":                    "US-TX",
	"washington":               "US-WA",
	"florida":                  "US-FL",
}
