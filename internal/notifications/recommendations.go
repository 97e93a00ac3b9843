// Package notifications holds the user-facing notification content: the
// six-tier health recommendation texts and the alert message builder. The
// texts are fixed domain copy; the logic is a pure band lookup.
package notifications

// Tier labels the six AQI bands, ascending.
type Tier string

const (
	TierGood                Tier = "good"                 // 0-50
	TierModerate            Tier = "moderate"             // 51-100
	TierUnhealthySensitive  Tier = "unhealthy_sensitive"  // 101-150
	TierUnhealthy           Tier = "unhealthy"            // 151-200
	TierVeryUnhealthy       Tier = "very_unhealthy"       // 201-300
	TierHazardous           Tier = "hazardous"            // 301+
)

var tierAdvice = map[Tier][]string{
	TierGood: {
		"Qualidade do ar boa — atividades ao ar livre são seguras.",
		"Continue ventilando ambientes quando apropriado.",
		"Mantenha hábitos saudáveis.",
	},
	TierModerate: {
		"Qualidade do ar moderada — pessoas sensíveis podem notar sintomas leves.",
		"Se você tem problemas respiratórios, evite exercícios extenuantes ao ar livre.",
		"Considere monitorar sintomas e reduzir exposição prolongada.",
	},
	TierUnhealthySensitive: {
		"Ruim para grupos sensíveis — crianças, idosos e pessoas com doenças respiratórias devem ter cuidado.",
		"Evite exercícios vigorosos ao ar livre.",
		"Mantenha portas e janelas fechadas quando possível.",
		"Considere o uso de máscara PFF2 em saídas necessárias.",
	},
	TierUnhealthy: {
		"Ruim — sintomas mais prováveis em indivíduos sensíveis e também em pessoas saudáveis.",
		"Minimize atividades físicas ao ar livre.",
		"Use máscara PFF2 ou equivalente se precisar sair.",
		"Mantenha ambientes internos com ar mais puro (purificador, ar-condicionado com filtros).",
	},
	TierVeryUnhealthy: {
		"Muito ruim — risco elevado para toda a população.",
		"Evite sair de casa, especialmente crianças, idosos e pessoas com doenças respiratórias ou cardíacas.",
		"Se precisar sair, use proteção respiratória adequada e reduza o tempo de exposição.",
		"Considere procurar locais com ar filtrado e consulte um profissional de saúde se surgir piora.",
	},
	TierHazardous: {
		"Perigoso — condições ameaçam a saúde de todos.",
		"Permanecer em ambientes fechados com ar limpo é altamente recomendado.",
		"Se houver necessidade de sair, utilize equipamento de proteção respiratória certificado (máscara PFF2/N95).",
		"Procure atendimento médico se apresentar sintomas graves como falta de ar ou dor no peito.",
	},
}

// TierFor maps an index value to its band. Bands are inclusive at the upper
// bound: 50 is good, 51 is moderate, 200 is unhealthy, 301 is hazardous.
func TierFor(index int) Tier {
	switch {
	case index <= 50:
		return TierGood
	case index <= 100:
		return TierModerate
	case index <= 150:
		return TierUnhealthySensitive
	case index <= 200:
		return TierUnhealthy
	case index <= 300:
		return TierVeryUnhealthy
	default:
		return TierHazardous
	}
}

// Recommendations returns the ordered advisory list for an index value.
func Recommendations(index int) []string {
	advice := tierAdvice[TierFor(index)]
	out := make([]string, len(advice))
	copy(out, advice)
	return out
}

// CoerceIndex converts a raw provider value to an index for recommendation
// lookup. Non-numeric values coerce to 0 (the good tier). This is only for
// the read-only endpoints; the alert evaluator never reaches recommendation
// lookup with an unavailable reading.
func CoerceIndex(raw any) int {
	switch v := raw.(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	case *int:
		if v != nil {
			return *v
		}
	}
	return 0
}
