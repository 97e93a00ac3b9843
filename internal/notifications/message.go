package notifications

import (
	"strconv"
	"strings"
)

// AlertTitle is the fixed push title for threshold alerts.
const AlertTitle = "Alerta de qualidade do ar"

// BuildAlertBody renders the push body for a reading: the current index
// followed by the tier-appropriate recommendations joined with "; ".
func BuildAlertBody(index float64) string {
	advice := Recommendations(int(index))
	return "AQI atual: " + formatIndex(index) + ". Recomendações: " + strings.Join(advice, "; ")
}

// formatIndex renders the index without a trailing ".0" for whole values,
// so integer provider indexes read naturally.
func formatIndex(index float64) string {
	return strconv.FormatFloat(index, 'f', -1, 64)
}
