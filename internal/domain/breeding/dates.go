package breeding

import "time"

const dateLayout = "2006-01-02"

// DateOnly trunca a medianoche UTC. Todo el motor compara fechas como
// días calendario UTC; la hora del día no participa en ninguna regla.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysBetween cuenta días enteros entre dos fechas con división truncada
// (delta/24h hacia cero, sin redondeo). from posterior a to da negativo.
func DaysBetween(from, to time.Time) int {
	delta := DateOnly(to).Sub(DateOnly(from))
	return int(delta / (24 * time.Hour))
}

// AddDays suma n días calendario sobre la fecha truncada.
func AddDays(t time.Time, n int) time.Time {
	return DateOnly(t).AddDate(0, 0, n)
}

// AgeInDays es la edad en días completos a la fecha de hoy dada.
func AgeInDays(birthDate, today time.Time) int {
	return DaysBetween(birthDate, today)
}

// AgeInMonths usa la convención del dominio: meses de 30 días, truncando.
func AgeInMonths(birthDate, today time.Time) int {
	return AgeInDays(birthDate, today) / 30
}

// ParseDate parsea YYYY-MM-DD como día calendario UTC.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(dateLayout, s)
}

// FormatDate emite YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return DateOnly(t).Format(dateLayout)
}
