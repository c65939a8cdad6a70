package advisor

import (
	"strings"
	"unicode"

	"github.com/krishisakhi/backend/internal/domain"
)

// Rule maps a keyword predicate to a canned answer in each language.
type Rule struct {
	Name  string
	Match func(text string) bool // text is lower-cased
	Text  map[domain.Language]string
}

// Reply picks the rule's answer in lang, falling back to English.
func (r Rule) Reply(lang domain.Language) string {
	if s, ok := r.Text[lang]; ok {
		return s
	}
	return r.Text[domain.LanguageEnglish]
}

// FallbackRule names answers that no rule matched.
const FallbackRule = "fallback"

// Rules are evaluated in order and the first match wins. A crop rule that
// needs a subtopic does not match without one, so later rules still apply.
var Rules = []Rule{
	{
		Name:  "rice_planting",
		Match: all(anyOf("rice", "paddy", "നെല്ല്"), anyOf("planting", "sowing", "വിതയ്ക്കൽ", "നടീൽ")),
		Text: map[domain.Language]string{
			domain.LanguageEnglish:   "For rice cultivation in Kerala: 1) Best planting time is June-July for Kharif season. 2) Use 25-30 kg seeds per hectare. 3) Maintain 2-3 cm water level initially. 4) Plant with 20x15 cm spacing for better yield.",
			domain.LanguageMalayalam: "കേരളത്തിലെ നെല്ല് കൃഷിക്ക്: 1) വിരിപ്പ് സീസണിൽ ജൂൺ-ജൂലൈ ആണ് നടാൻ ഏറ്റവും നല്ല സമയം. 2) ഹെക്ടറിന് 25-30 കിലോ വിത്ത് ഉപയോഗിക്കുക. 3) തുടക്കത്തിൽ 2-3 സെ.മീ വെള്ളം നിലനിർത്തുക. 4) മികച്ച വിളവിന് 20x15 സെ.മീ അകലത്തിൽ നടുക.",
		},
	},
	{
		Name:  "rice_fertilizer",
		Match: all(anyOf("rice", "paddy", "നെല്ല്"), anyOf("fertilizer", "nutrition", "വളം")),
		Text: map[domain.Language]string{
			domain.LanguageEnglish:   "Rice fertilizer schedule: 1) Apply 60 kg N, 30 kg P2O5, 30 kg K2O per hectare. 2) Split nitrogen application: 50% at transplanting, 25% at tillering, 25% at panicle initiation. 3) Use organic compost for better soil health.",
			domain.LanguageMalayalam: "നെല്ലിന്റെ വളപ്രയോഗം: 1) ഹെക്ടറിന് 60 കിലോ നൈട്രജൻ, 30 കിലോ ഫോസ്ഫറസ്, 30 കിലോ പൊട്ടാഷ് ചേർക്കുക. 2) നൈട്രജൻ മൂന്ന് തവണയായി നൽകുക: നടീൽ സമയത്ത് 50%, ചിനപ്പ് പൊട്ടുമ്പോൾ 25%, കതിരിടുമ്പോൾ 25%. 3) മണ്ണിന്റെ ആരോഗ്യത്തിന് ജൈവ കമ്പോസ്റ്റ് ഉപയോഗിക്കുക.",
		},
	},
	{
		Name:  "rice_disease",
		Match: all(anyOf("rice", "paddy", "നെല്ല്"), anyOf("disease", "blast", "രോഗം")),
		Text: map[domain.Language]string{
			domain.LanguageEnglish:   "Common rice diseases in Kerala: 1) Blast disease - Apply Tricyclazole fungicide. 2) Brown spot - Use Mancozeb spray. 3) Bacterial blight - Use copper-based fungicides. 4) Maintain proper field hygiene and drainage.",
			domain.LanguageMalayalam: "കേരളത്തിലെ പ്രധാന നെല്ല് രോഗങ്ങൾ: 1) ബ്ലാസ്റ്റ് രോഗം - ട്രൈസൈക്ലസോൾ കുമിൾനാശിനി പ്രയോഗിക്കുക. 2) തവിട്ട് പുള്ളി - മാങ്കോസെബ് തളിക്കുക. 3) ബാക്ടീരിയൽ ബ്ലൈറ്റ് - കോപ്പർ അടങ്ങിയ കുമിൾനാശിനി ഉപയോഗിക്കുക. 4) വയലിൽ ശുചിത്വവും നീർവാർച്ചയും പാലിക്കുക.",
		},
	},
	{
		Name:  "coconut_planting",
		Match: all(anyOf("coconut", "തെങ്ങ്", "നാളികേരം"), anyOf("planting", "growing", "നടീൽ")),
		Text: map[domain.Language]string{
			domain.LanguageEnglish:   "Coconut farming tips: 1) Plant during monsoon season (June-September). 2) Maintain 7-8 meter spacing between trees. 3) Apply 50 kg organic manure annually. 4) Ensure proper drainage and regular weeding.",
			domain.LanguageMalayalam: "തെങ്ങ് കൃഷിക്ക് മഴക്കാലമാണ് നല്ല സമയം (ജൂൺ-സെപ്റ്റംബർ). ഏഴ്-എട്ട് മീറ്റർ അകലത്തിൽ നടുക. വാർഷികം 50 കിലോ ജൈവവളം ചേർക്കുക. ശരിയായ നീർവാർച്ചയും കളനിയന്ത്രണവും ഉറപ്പാക്കുക.",
		},
	},
	{
		Name:  "coconut_fertilizer",
		Match: all(anyOf("coconut", "തെങ്ങ്", "നാളികേരം"), anyOf("fertilizer", "nutrition", "വളം")),
		Text: map[domain.Language]string{
			domain.LanguageEnglish:   "Coconut nutrition: 1) Apply 500g Urea, 320g Super phosphate, 1200g MOP per palm annually. 2) Add 50 kg organic manure. 3) Apply lime if soil is acidic. 4) Use micronutrient sprays during monsoon.",
			domain.LanguageMalayalam: "തെങ്ങിന്റെ പോഷണം: 1) ഒരു തെങ്ങിന് വർഷം 500 ഗ്രാം യൂറിയ, 320 ഗ്രാം സൂപ്പർ ഫോസ്ഫേറ്റ്, 1200 ഗ്രാം പൊട്ടാഷ് നൽകുക. 2) 50 കിലോ ജൈവവളം ചേർക്കുക. 3) മണ്ണിൽ അമ്ലത ഉണ്ടെങ്കിൽ കുമ്മായം ചേർക്കുക. 4) മഴക്കാലത്ത് സൂക്ഷ്മ മൂലക സ്പ്രേ ഉപയോഗിക്കുക.",
		},
	},
	{
		Name:  "pepper",
		Match: anyOf("pepper", "കുരുമുളക്"),
		Text: map[domain.Language]string{
			domain.LanguageEnglish:   "Black pepper cultivation: 1) Best season for planting is May-June. 2) Use live standards like silver oak or erythrina. 3) Apply 10 kg organic manure per vine annually. 4) Ensure good drainage and shade management (50-60%).",
			domain.LanguageMalayalam: "കുരുമുളക് കൃഷിക്ക് മേയ്-ജൂൺ മാസങ്ങളാണ് നല്ല സമയം. സിൽവർ ഓക്ക് പോലുള്ള ജീവനുള്ള താങ്ങുകൾ ഉപയോഗിക്കുക. ഒരു വള്ളിക്ക് വാർഷികം 10 കിലോ ജൈവവളം ചേർക്കുക. നല്ല നീർവാർച്ചയും തണൽ നിയന്ത്രണവും (50-60%) ഉറപ്പാക്കുക.",
		},
	},
	{
		Name:  "weather",
		Match: anyOf("weather", "rain", "monsoon", "കാലാവസ്ഥ", "മഴ"),
		Text: map[domain.Language]string{
			domain.LanguageEnglish:   "Weather advisory for Kerala farmers: 1) Monitor daily weather forecasts. 2) Plan activities based on rainfall predictions. 3) Use covered storage for inputs during monsoon. 4) Ensure proper field drainage during heavy rains.",
			domain.LanguageMalayalam: "കേരള കർഷകർക്കുള്ള കാലാവസ്ഥ ഉപദേശം: ദൈനംദിന കാലാവസ്ഥ പ്രവചനം നിരീക്ഷിക്കുക. മഴ പ്രവചനത്തെ അടിസ്ഥാനമാക്കി പ്രവർത്തനങ്ങൾ ആസൂത്രണം ചെയ്യുക. മഴക്കാലത്ത് ഇൻപുട്ടുകൾക്ക് മൂടിയ സംഭരണം ഉപയോഗിക്കുക.",
		},
	},
	{
		Name:  "disease",
		Match: anyOf("disease", "pest", "രോഗം", "കീടം"),
		Text: map[domain.Language]string{
			domain.LanguageEnglish:   "Common disease management: 1) Regular field monitoring is essential. 2) Use IPM (Integrated Pest Management) approaches. 3) Apply organic pesticides when possible. 4) Maintain field hygiene and remove infected plants.",
			domain.LanguageMalayalam: "രോഗങ്ങൾ തടയാൻ വയലിൽ വൃത്തിയും ശുചിത്വവും പാലിക്കുക. രോഗബാധിത ചെടികൾ നീക്കം ചെയ്യുക. സംയോജിത കീടനിയന്ത്രണം പാലിക്കുക. ആവശ്യമെങ്കിൽ കാർഷിക വിദഗ്ധനെ സമീപിക്കുക.",
		},
	},
	{
		Name:  "soil",
		Match: anyOf("soil", "മണ്ണ്"),
		Text: map[domain.Language]string{
			domain.LanguageEnglish:   "Soil management tips: 1) Test soil pH regularly (ideal 6.0-7.5). 2) Add organic matter to improve soil structure. 3) Practice crop rotation to maintain fertility. 4) Use green manures like cowpea or daincha.",
			domain.LanguageMalayalam: "മണ്ണ് പരിപാലനം: 1) മണ്ണിന്റെ pH പതിവായി പരിശോധിക്കുക (അനുയോജ്യം 6.0-7.5). 2) മണ്ണിന്റെ ഘടന മെച്ചപ്പെടുത്താൻ ജൈവവസ്തുക്കൾ ചേർക്കുക. 3) ഫലഭൂയിഷ്ഠത നിലനിർത്താൻ വിളപരിക്രമം പാലിക്കുക. 4) വൻപയർ, ഡെയിഞ്ച തുടങ്ങിയ പച്ചിലവളങ്ങൾ ഉപയോഗിക്കുക.",
		},
	},
	{
		Name: "schemes",
		Match: anyOf("scheme", "subsidy", "government", "pm-kisan", "pm kisan", "pmkisan",
			"pm-fasal", "pm fasal", "kisan credit", "കേന്ദ്ര", "സർക്കാർ", "സബ്സിഡി", "സ്കീം"),
		Text: map[domain.Language]string{
			domain.LanguageEnglish: "Key government schemes:\n" +
				"• PM-KISAN: ₹6,000 per year (DBT).\n" +
				"• PM Fasal Bima Yojana: Low premium crop insurance.\n" +
				"• Kisan Credit Card (KCC): Subsidized working capital.\n" +
				"• Kerala subsidies: Drip irrigation, polyhouse, machinery support.\n" +
				"Apply: Local Krishi office / https://pmkisan.gov.in/ / https://keralaagriculture.gov.in/",
			domain.LanguageMalayalam: "സർക്കാർ സ്കീമുകളുടെ ചുരുക്കം:\n" +
				"• PM-KISAN: വർഷത്തിൽ ₹6,000 നേരിട്ട് കർഷകരുടെ അക്കൗണ്ടിൽ.\n" +
				"• PM Fasal Bima Yojana: വിള ഇൻഷുറൻസ് കുറഞ്ഞ പ്രീമിയത്തിൽ.\n" +
				"• Kisan Credit Card (KCC): കുറഞ്ഞ പലിശയിൽ പ്രവർത്തന വായ്പ.\n" +
				"• കേരള സർക്കാരിന്റെ സബ്സിഡികൾ: ഡ്രിപ്പ്, പോളിഹൗസ്, യന്ത്രങ്ങൾ മുതലായവ.\n" +
				"അപേക്ഷ: Krishi Office / https://pmkisan.gov.in/ / https://keralaagriculture.gov.in/",
		},
	},
	{
		Name:  "greeting",
		Match: anyWord("hello", "hi", "hey", "help", "namaskaram", "നമസ്കാരം"),
		Text: map[domain.Language]string{
			domain.LanguageEnglish:   "Hello! I'm Krishi Sakhi. I'm here to answer your farming questions about crops, diseases, weather, soil and government schemes.",
			domain.LanguageMalayalam: "നമസ്കാരം! ഞാൻ കൃഷി സഖി ആണ്. കൃഷിയുമായി ബന്ധപ്പെട്ട നിങ്ങളുടെ ചോദ്യങ്ങൾക്ക് ഉത്തരം നൽകാൻ ഞാൻ ഇവിടെയുണ്ട്.",
		},
	},
}

var fallback = Rule{
	Name: FallbackRule,
	Text: map[domain.Language]string{
		domain.LanguageEnglish:   "I'm here to help with your farming questions! You can ask me about crop cultivation, disease management, weather advisory, soil health, or any other agricultural topics specific to Kerala farming conditions.",
		domain.LanguageMalayalam: "നിങ്ങളുടെ ചോദ്യം മനസ്സിലായി. കൃഷിയുമായി ബന്ധപ്പെട്ട കൂടുതൽ വിവരങ്ങൾക്ക് പ്രാദേശിക കാർഷിക ഓഫീസറെ സമീപിക്കുക. കൃഷി സഖി എപ്പോഴും നിങ്ങളുടെ സഹായത്തിന് ഉണ്ട്!",
	},
}

// Match returns the first rule matching text.
func Match(text string) (Rule, bool) {
	lower := strings.ToLower(text)
	for _, r := range Rules {
		if r.Match(lower) {
			return r, true
		}
	}
	return Rule{}, false
}

func anyOf(keywords ...string) func(string) bool {
	return func(text string) bool {
		for _, k := range keywords {
			if strings.Contains(text, k) {
				return true
			}
		}
		return false
	}
}

func all(preds ...func(string) bool) func(string) bool {
	return func(text string) bool {
		for _, p := range preds {
			if !p(text) {
				return false
			}
		}
		return true
	}
}

// anyWord matches whole words only, so "hi" does not fire on "chilli".
func anyWord(words ...string) func(string) bool {
	return func(text string) bool {
		fields := strings.FieldsFunc(text, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsMark(r) && r != '-'
		})
		for _, f := range fields {
			for _, w := range words {
				if f == w {
					return true
				}
			}
		}
		return false
	}
}
