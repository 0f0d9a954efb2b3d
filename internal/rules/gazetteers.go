package rules

// Gazetteers and pattern tables for the deterministic rule gate. All entries
// are matched against normalized (upper-cased, diacritic-free) text.

// legalSuffixes covers multinational legal-entity designators. Matched as
// whole words anywhere in the name; the gate also rejoins runs of
// single-letter tokens so "L.L.C." (normalized to "L L C") still matches.
var legalSuffixes = []string{
	"LLC", "INC", "INCORPORATED", "CORP", "CORPORATION",
	"LTD", "LIMITED", "LP", "LLP", "PLLC", "PLC", "PC",
	"GMBH", "AG", "KG", "UG",
	"SA", "SARL", "SAS", "SRL", "SPA", "BV", "NV",
	"AB", "AS", "OY", "APS",
	"PTY", "PTE", "KK", "GK",
	"SC", "CV", "EIRL", "LTDA",
}

// businessKeywords is the generic commercial-term gazetteer. Deliberately
// excludes legal designators so a name like "Acme Corporation LLC" counts
// suffix and keyword hits as independent rules.
var businessKeywords = []string{
	"SERVICES", "SERVICE", "SOLUTIONS", "CONSULTING", "CONSULTANTS",
	"GROUP", "HOLDINGS", "ENTERPRISES", "ENTERPRISE", "INDUSTRIES",
	"SYSTEMS", "TECHNOLOGIES", "TECHNOLOGY", "PARTNERS", "ASSOCIATES",
	"COMPANY", "BANK", "INSURANCE", "REALTY", "PROPERTIES", "PROPERTY",
	"CONSTRUCTION", "BUILDERS", "CONTRACTORS", "PLUMBING", "ELECTRIC",
	"ELECTRICAL", "HVAC", "ROOFING", "LANDSCAPING", "TRUCKING",
	"LOGISTICS", "TRANSPORT", "FREIGHT", "RESTAURANT", "CAFE", "BAKERY",
	"CATERING", "STORE", "SHOP", "MARKET", "MARKETS", "FARMS", "FARM",
	"STUDIO", "SALON", "SPA", "CLINIC", "PHARMACY", "DENTAL", "MEDICAL",
	"HOSPITAL", "AUTO", "AUTOMOTIVE", "MOTORS", "RENTALS", "LEASING",
	"SUPPLY", "SUPPLIES", "DISTRIBUTORS", "DISTRIBUTION", "WHOLESALE",
	"MANUFACTURING", "FOUNDATION", "CHURCH", "MINISTRIES", "TEMPLE",
	"SCHOOL", "UNIVERSITY", "COLLEGE", "ACADEMY", "INSTITUTE",
	"ASSOCIATION", "SOCIETY", "CLUB", "AGENCY", "MANAGEMENT", "CAPITAL",
	"FINANCIAL", "ADVISORS", "LAW", "LEGAL", "TITLE", "ESCROW",
	"COMMUNICATIONS", "MEDIA", "PUBLISHING", "PRINTING", "CLEANING",
	"SECURITY", "STAFFING", "PAYROLL", "UTILITIES", "ENERGY", "PETROLEUM",
}

// governmentPhrases match public-sector payees. Leading phrases are checked
// as prefixes, the rest as whole words.
var governmentPrefixes = []string{
	"CITY OF", "COUNTY OF", "STATE OF", "TOWN OF", "VILLAGE OF",
	"DEPARTMENT OF", "DEPT OF", "OFFICE OF", "BUREAU OF", "BOARD OF",
	"MINISTRY OF", "UNITED STATES",
}

var governmentKeywords = []string{
	"IRS", "TREASURY", "TREASURER", "MUNICIPAL", "MUNICIPALITY",
	"COMMISSION", "AUTHORITY", "DISTRICT", "FEDERAL", "COMPTROLLER",
	"COUNTY",
}

// honorifics are personal titles recognized at the start of a name.
var honorifics = []string{
	"MR", "MRS", "MS", "MISS", "DR", "PROF", "REV", "FR",
	"HON", "SIR", "DAME", "CAPT", "COL", "SGT", "LT",
}

// generationalSuffixes are recognized at the end of a name.
var generationalSuffixes = []string{
	"JR", "SR", "II", "III", "IV", "V", "ESQ",
}

// firstNames is a multicultural sample of common given names. It is a
// gazetteer, not a census: membership raises an individual signal, absence
// proves nothing.
var firstNames = []string{
	// Anglophone
	"JAMES", "JOHN", "ROBERT", "MICHAEL", "WILLIAM", "DAVID", "RICHARD",
	"THOMAS", "CHARLES", "MARY", "PATRICIA", "JENNIFER", "LINDA",
	"ELIZABETH", "BARBARA", "SUSAN", "JESSICA", "SARAH", "KAREN", "EMILY",
	// Hispanic / Lusophone
	"JOSE", "JUAN", "CARLOS", "LUIS", "MIGUEL", "PEDRO", "MARIA", "ANA",
	"CARMEN", "ROSA", "GUADALUPE", "JOAO", "PAULO",
	// East Asian
	"WEI", "LI", "MING", "JUN", "CHEN", "HIROSHI", "TAKASHI", "YUKI",
	"KENJI", "JIHO", "MINJUN", "SOYEON",
	// South Asian
	"RAJ", "AMIT", "SANJAY", "PRIYA", "ANITA", "RAVI", "DEEPAK", "NEHA",
	// Middle Eastern / African
	"MOHAMMED", "AHMED", "ALI", "OMAR", "FATIMA", "AISHA", "YUSUF",
	"KWAME", "AMARA", "CHIOMA", "TUNDE",
	// European
	"PIERRE", "MARIE", "HANS", "KLAUS", "GRETA", "SVEN", "OLGA", "SERGEY",
	"IVAN", "NATASHA", "MARCO", "GIULIA", "ANDRZEJ", "KATARZYNA",
}

// lastNames is a multicultural sample of common family names.
var lastNames = []string{
	// Anglophone
	"SMITH", "JOHNSON", "WILLIAMS", "BROWN", "JONES", "MILLER", "DAVIS",
	"WILSON", "ANDERSON", "TAYLOR", "MOORE", "JACKSON", "WHITE", "HARRIS",
	// Hispanic / Lusophone
	"GARCIA", "RODRIGUEZ", "MARTINEZ", "HERNANDEZ", "LOPEZ", "GONZALEZ",
	"PEREZ", "SANCHEZ", "RAMIREZ", "TORRES", "SILVA", "SANTOS",
	// East Asian
	"WANG", "ZHANG", "LIU", "YANG", "HUANG", "NGUYEN", "TRAN", "KIM",
	"PARK", "CHOI", "SATO", "SUZUKI", "TANAKA", "WATANABE",
	// South Asian
	"PATEL", "SINGH", "KUMAR", "SHARMA", "GUPTA", "REDDY", "KHAN",
	// Middle Eastern / African
	"HASSAN", "HUSSEIN", "ABDULLAH", "OKAFOR", "MENSAH", "DIALLO",
	// European
	"MUELLER", "SCHMIDT", "FISCHER", "ROSSI", "RUSSO", "KOWALSKI",
	"NOWAK", "IVANOV", "PETROV", "ANDERSSON", "JOHANSSON", "DUBOIS",
}

func toSet(words []string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

var (
	legalSuffixSet  = toSet(legalSuffixes)
	businessWordSet = toSet(businessKeywords)
	govWordSet      = toSet(governmentKeywords)
	honorificSet    = toSet(honorifics)
	generationalSet = toSet(generationalSuffixes)
	firstNameSet    = toSet(firstNames)
	lastNameSet     = toSet(lastNames)
)
