package fallback

// Static content documents, shaped exactly like real backend responses.
// Everything here is deterministic: no clock, no randomness.

// fallbackLanguage is used when a screen has no variant for the requested
// language.
const fallbackLanguage = "en"

var screenContent = map[string]map[string]map[string]string{
	"home": {
		"en": {
			"portal.home.1.text.title":        "Personal banking made simple",
			"portal.home.2.dropdown.currency": `["USD","EUR","ILS"]`,
			"portal.home.3.link.terms":        "Terms of service",
			"portal.home.4.text.subtitle":     "Open an account in minutes",
		},
		"ru": {
			"portal.home.1.text.title":        "Личный банкинг — это просто",
			"portal.home.2.dropdown.currency": `["USD","EUR","ILS"]`,
			"portal.home.3.link.terms":        "Условия обслуживания",
			"portal.home.4.text.subtitle":     "Откройте счёт за несколько минут",
		},
		"he": {
			"portal.home.1.text.title":        "בנקאות אישית בפשטות",
			"portal.home.2.dropdown.currency": `["USD","EUR","ILS"]`,
			"portal.home.3.link.terms":        "תנאי שירות",
			"portal.home.4.text.subtitle":     "פתחו חשבון בתוך דקות",
		},
	},
	"loans": {
		"en": {
			"portal.loans.1.text.title":      "Loans for every goal",
			"portal.loans.2.dropdown.term":   `["12 months","24 months","36 months"]`,
			"portal.loans.3.link.calculator": "Payment calculator",
		},
		"ru": {
			"portal.loans.1.text.title":      "Кредиты на любые цели",
			"portal.loans.2.dropdown.term":   `["12 месяцев","24 месяца","36 месяцев"]`,
			"portal.loans.3.link.calculator": "Кредитный калькулятор",
		},
		"he": {
			"portal.loans.1.text.title":      "הלוואות לכל מטרה",
			"portal.loans.2.dropdown.term":   `["12 חודשים","24 חודשים","36 חודשים"]`,
			"portal.loans.3.link.calculator": "מחשבון החזרים",
		},
	},
	"deposits": {
		"en": {
			"portal.deposits.1.text.title":      "Grow your savings",
			"portal.deposits.2.dropdown.payout": `["Monthly","Quarterly","At maturity"]`,
		},
		"ru": {
			"portal.deposits.1.text.title":      "Приумножайте сбережения",
			"portal.deposits.2.dropdown.payout": `["Ежемесячно","Ежеквартально","В конце срока"]`,
		},
		"he": {
			"portal.deposits.1.text.title":      "הגדילו את החיסכון",
			"portal.deposits.2.dropdown.payout": `["חודשי","רבעוני","בתום התקופה"]`,
		},
	},
}

// ScreenContent returns the mock content document for a screen and
// language. Unknown screens yield an empty document; unknown languages
// fall back to the default locale variant.
func ScreenContent(screen, lang string) map[string]string {
	variants, ok := screenContent[screen]
	if !ok {
		return map[string]string{}
	}

	values, ok := variants[lang]
	if !ok {
		values = variants[fallbackLanguage]
	}

	// Copy so callers cannot mutate the static document
	out := make(map[string]string, len(values))
	for key, value := range values {
		out[key] = value
	}
	return out
}

// Screens lists the screens with mock content, for diagnostics and tests.
func Screens() []string {
	return []string{"deposits", "home", "loans"}
}
