package weather

import (
	"github.com/krishisakhi/backend/internal/domain"
)

type message map[domain.Language]string

func (m message) in(lang domain.Language) string {
	if s, ok := m[lang]; ok {
		return s
	}
	return m[domain.LanguageEnglish]
}

var (
	heavyRainAdvice = message{
		domain.LanguageEnglish:   "Heavy rainfall expected. Ensure proper drainage and postpone spray applications.",
		domain.LanguageMalayalam: "കനത്ത മഴ പ്രതീക്ഷിക്കുന്നു. നല്ല നീർവാർച്ച ഉറപ്പാക്കുകയും സ്പ്രേ പ്രയോഗം മാറ്റിവയ്ക്കുകയും ചെയ്യുക.",
	}
	droughtAdvice = message{
		domain.LanguageEnglish:   "Low rainfall expected. Plan for irrigation and water conservation.",
		domain.LanguageMalayalam: "കുറഞ്ഞ മഴ പ്രതീക്ഷിക്കുന്നു. ജലസേചനവും ജലസംരക്ഷണവും ആസൂത്രണം ചെയ്യുക.",
	}
	heatAdvice = message{
		domain.LanguageEnglish:   "High temperatures expected. Increase irrigation frequency and provide shade for sensitive crops.",
		domain.LanguageMalayalam: "ഉയർന്ന താപനില പ്രതീക്ഷിക്കുന്നു. ജലസേചന ആവൃത്തി വർധിപ്പിച്ച് സെൻസിറ്റീവ് വിളകൾക്ക് തണൽ നൽകുക.",
	}
	humidityAdvice = message{
		domain.LanguageEnglish:   "High humidity may increase disease risk. Monitor crops closely and ensure good air circulation.",
		domain.LanguageMalayalam: "ഉയർന്ന ആർദ്രത രോഗസാധ്യത വർധിപ്പിക്കും. വിളകൾ സൂക്ഷ്മമായി നിരീക്ഷിച്ച് നല്ല വായു സഞ്ചാരം ഉറപ്പാക്കുക.",
	}
	riceAdvice = message{
		domain.LanguageEnglish:   "Good conditions for rice transplanting. Ensure fields are properly leveled.",
		domain.LanguageMalayalam: "നെല്ല് നടീലിന് അനുകൂല സാഹചര്യം. വയലുകൾ ശരിയായി നിരപ്പാക്കിയിട്ടുണ്ടെന്ന് ഉറപ്പാക്കുക.",
	}
	coconutAdvice = message{
		domain.LanguageEnglish:   "Strong winds may damage coconut palms. Secure loose fronds and harvest mature nuts.",
		domain.LanguageMalayalam: "ശക്തമായ കാറ്റ് തെങ്ങുകൾക്ക് കേടുപാടുകൾ വരുത്തിയേക്കാം. അയഞ്ഞ ഓലകൾ ബന്ധിച്ച് പഴുത്ത തേങ്ങകൾ പറിക്കുക.",
	}
)

// Advise derives farming advisories from the first three days of a forecast.
func Advise(f *domain.Forecast, lang domain.Language) []domain.Advisory {
	next := firstN(f.Days, 3)
	advisories := []domain.Advisory{}
	if len(next) == 0 {
		return advisories
	}

	totalRain, maxTemp, humidity := 0.0, next[0].Temperature.Max, 0
	for _, d := range next {
		totalRain += d.Rainfall
		humidity += d.Humidity
		if d.Temperature.Max > maxTemp {
			maxTemp = d.Temperature.Max
		}
	}

	switch {
	case totalRain > 15:
		advisories = append(advisories, domain.Advisory{Type: "rainfall", Priority: "high", Message: heavyRainAdvice.in(lang)})
	case totalRain < 2:
		advisories = append(advisories, domain.Advisory{Type: "drought", Priority: "medium", Message: droughtAdvice.in(lang)})
	}
	if maxTemp > 35 {
		advisories = append(advisories, domain.Advisory{Type: "heat", Priority: "high", Message: heatAdvice.in(lang)})
	}
	if float64(humidity)/float64(len(next)) > 85 {
		advisories = append(advisories, domain.Advisory{Type: "humidity", Priority: "medium", Message: humidityAdvice.in(lang)})
	}

	current := f.Current
	if current.Rainfall > 10 {
		advisories = append(advisories, domain.Advisory{Type: "rice", Priority: "medium", Message: riceAdvice.in(lang)})
	}
	if current.WindSpeed > 20 {
		advisories = append(advisories, domain.Advisory{Type: "coconut", Priority: "high", Message: coconutAdvice.in(lang)})
	}
	return advisories
}

// Recommended lists field work suited to today's weather.
func Recommended(f *domain.Forecast) []string {
	c := f.Current
	out := []string{}
	if c.Rainfall < 2 && c.Temperature.Max < 32 {
		out = append(out, "Land preparation", "Fertilizer application", "Pesticide spraying", "Harvesting")
	}
	if c.Rainfall > 5 {
		out = append(out, "Transplanting rice", "Planting rain-fed crops", "Nursery management")
	}
	return out
}

// Avoid lists field work to postpone given today's weather.
func Avoid(f *domain.Forecast) []string {
	c := f.Current
	out := []string{}
	if c.Rainfall > 10 {
		out = append(out, "Pesticide/fertilizer spraying", "Harvesting", "Field operations with heavy machinery")
	}
	if c.WindSpeed > 20 {
		out = append(out, "Spraying operations", "Tree climbing", "Drone operations")
	}
	return out
}
